// Package gexf reads GEXF network files into graph.Graph values.
//
// Files written by networkx use the 1.2draft namespace; older 1.1 files and
// files without a namespace are accepted too, since only the <graph> element
// and its node/edge attributes are consulted.
package gexf

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/graph/formats/gexf12"

	"github.com/papapumpkin/centrality/internal/graph"
)

// ErrMalformed marks any input that cannot be turned into a valid graph:
// broken XML, a missing <graph> element, duplicate nodes, or edges that
// reference unknown nodes. Callers match it with errors.Is to distinguish
// bad data from I/O failures.
var ErrMalformed = errors.New("gexf: malformed graph")

// ErrNoGraph is returned when the document has no <graph> element.
var ErrNoGraph = errors.New("gexf: no graph element")

// Edge and graph type attribute values.
const (
	typeDirected   = "directed"
	typeUndirected = "undirected"
	typeMutual     = "mutual"
)

// ReadFile opens path and decodes it with Read.
func ReadFile(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gexf: open %s: %w", path, err)
	}
	defer f.Close()

	g, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Read decodes a GEXF document. The graph is directed when its default edge
// type is "directed" or any edge declares type="directed"; undirected and
// mutual edges of a directed graph are added in both directions. A missing
// or zero weight attribute counts as weight 1.
func Read(r io.Reader) (*graph.Graph, error) {
	doc, err := decodeGraph(r)
	if err != nil {
		return nil, err
	}
	return build(doc)
}

// decodeGraph scans for the first <graph> element regardless of namespace
// and decodes it into the gexf12 model.
func decodeGraph(r io.Reader) (*gexf12.Graph, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, ErrNoGraph)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "graph" {
			continue
		}
		var doc gexf12.Graph
		if err := dec.DecodeElement(&doc, &start); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return &doc, nil
	}
}

func build(doc *gexf12.Graph) (*graph.Graph, error) {
	directed := doc.DefaultEdgeType == typeDirected
	for _, e := range doc.Edges.Edges {
		if e.Type == typeDirected {
			directed = true
			break
		}
	}

	g := graph.New(directed)
	for _, n := range doc.Nodes.Nodes {
		if err := g.AddNode(n.ID); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}

	for i, e := range doc.Edges.Edges {
		w := e.Weight
		if w == 0 {
			w = 1
		}
		if err := g.AddEdge(e.Source, e.Target, w); err != nil {
			return nil, fmt.Errorf("%w: edge %s: %w", ErrMalformed, edgeName(i, e), err)
		}
		if directed && bothWays(e.Type, doc.DefaultEdgeType) && e.Source != e.Target {
			if err := g.AddEdge(e.Target, e.Source, w); err != nil {
				return nil, fmt.Errorf("%w: edge %s: %w", ErrMalformed, edgeName(i, e), err)
			}
		}
	}
	return g, nil
}

// bothWays reports whether an edge in a directed graph stands for a pair of
// opposite arcs.
func bothWays(edgeType, defaultType string) bool {
	t := edgeType
	if t == "" {
		t = defaultType
	}
	if t == "" {
		t = typeUndirected
	}
	return t == typeUndirected || t == typeMutual
}

func edgeName(i int, e gexf12.Edge) string {
	if e.ID != "" {
		return e.ID
	}
	return fmt.Sprintf("#%d", i)
}
