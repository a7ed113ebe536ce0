// Package table holds per-graph centrality results and writes them out.
//
// A Table is indexed by node identifier. Columns are left-joined onto the
// node index: a node a measure was not computed for (for instance one outside
// the giant component) has no value in that column rather than a zero.
package table

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// ErrDuplicateColumn is returned when a column name is added twice.
var ErrDuplicateColumn = errors.New("table: duplicate column")

// ErrLengthMismatch is returned when a dense column does not match its node list.
var ErrLengthMismatch = errors.New("table: length mismatch")

// Column is one score column. Present[i] is false when Nodes[i] has no value.
type Column struct {
	Name    string
	Values  []float64
	Present []bool
}

// Table is the result for a single graph.
type Table struct {
	ID      string
	Nodes   []string
	Columns []Column

	index map[string]int
}

// New creates an empty table over nodes. The node list is copied and sorted.
func New(id string, nodes []string) *Table {
	sorted := slices.Clone(nodes)
	slices.Sort(sorted)
	index := make(map[string]int, len(sorted))
	for i, id := range sorted {
		index[id] = i
	}
	return &Table{ID: id, Nodes: sorted, index: index}
}

// AddColumn left-joins values onto the table's nodes. Keys that are not
// table nodes are ignored.
func (t *Table) AddColumn(name string, values map[string]float64) error {
	col, err := t.newColumn(name)
	if err != nil {
		return err
	}
	for id, v := range values {
		if i, ok := t.index[id]; ok {
			col.Values[i] = v
			col.Present[i] = true
		}
	}
	t.Columns = append(t.Columns, col)
	return nil
}

// AddDense left-joins values given positionally against nodes.
func (t *Table) AddDense(name string, nodes []string, values []float64) error {
	if len(nodes) != len(values) {
		return fmt.Errorf("%w: column %s has %d values for %d nodes", ErrLengthMismatch, name, len(values), len(nodes))
	}
	col, err := t.newColumn(name)
	if err != nil {
		return err
	}
	for k, id := range nodes {
		if i, ok := t.index[id]; ok {
			col.Values[i] = values[k]
			col.Present[i] = true
		}
	}
	t.Columns = append(t.Columns, col)
	return nil
}

// AddEmpty adds a column with no values. It keeps the column layout stable
// when a measure could not be computed.
func (t *Table) AddEmpty(name string) error {
	col, err := t.newColumn(name)
	if err != nil {
		return err
	}
	t.Columns = append(t.Columns, col)
	return nil
}

func (t *Table) newColumn(name string) (Column, error) {
	for _, c := range t.Columns {
		if c.Name == name {
			return Column{}, fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
		}
	}
	return Column{
		Name:    name,
		Values:  make([]float64, len(t.Nodes)),
		Present: make([]bool, len(t.Nodes)),
	}, nil
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Value returns the score of node in column name.
func (t *Table) Value(node, name string) (float64, bool) {
	i, ok := t.index[node]
	if !ok {
		return 0, false
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Values[i], c.Present[i]
		}
	}
	return 0, false
}

// FormatValue renders a score with the shortest representation that parses
// back to the same float64.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
