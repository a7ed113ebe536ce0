package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writePathGEXF writes an undirected path graph with n nodes to dir/name.
func writePathGEXF(t *testing.T, dir, name string, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<gexf xmlns="http://www.gexf.net/1.2draft" version="1.2">` + "\n")
	b.WriteString(`<graph defaultedgetype="undirected" mode="static"><nodes>` + "\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<node id="%d" label="%d"/>`+"\n", i, i)
	}
	b.WriteString("</nodes><edges>\n")
	for i := 0; i+1 < n; i++ {
		fmt.Fprintf(&b, `<edge id="%d" source="%d" target="%d"/>`+"\n", i, i, i+1)
	}
	b.WriteString("</edges></graph></gexf>\n")
	return writeFile(t, dir, name, b.String())
}

// writeFile writes content to dir/name, creating dir.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

const danglingEdgeGEXF = `<gexf xmlns="http://www.gexf.net/1.2draft" version="1.2">
<graph defaultedgetype="undirected"><nodes><node id="1"/></nodes>
<edges><edge id="0" source="1" target="2"/></edges></graph></gexf>`
