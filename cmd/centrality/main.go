// Command centrality computes network centrality tables for batches of
// GEXF graphs.
package main

import "github.com/papapumpkin/centrality/cmd"

func main() {
	cmd.Execute()
}
