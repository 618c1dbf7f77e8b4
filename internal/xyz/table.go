package xyz

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// ColumnKind is the inferred type of a per-sounding column.
type ColumnKind int

const (
	Integer ColumnKind = iota
	Real
	Text
)

func (k ColumnKind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Real:
		return "float"
	default:
		return "text"
	}
}

// Column is one per-sounding attribute. Numeric kinds store values in Num
// with NaN as the missing marker; Text stores strings with "" as missing.
type Column struct {
	Name string
	Kind ColumnKind
	Num  []float64
	Text []string
}

// NewFloatColumn builds a float column over vals.
func NewFloatColumn(name string, vals []float64) *Column {
	return &Column{Name: name, Kind: Real, Num: vals}
}

// NewIntColumn builds an integer column over vals.
func NewIntColumn(name string, vals []float64) *Column {
	return &Column{Name: name, Kind: Integer, Num: vals}
}

// NewTextColumn builds a text column over vals.
func NewTextColumn(name string, vals []string) *Column {
	return &Column{Name: name, Kind: Text, Text: vals}
}

// FullColumn returns a float column of n copies of v.
func FullColumn(name string, n int, v float64) *Column {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = v
	}
	return NewFloatColumn(name, vals)
}

func (c *Column) Len() int {
	if c.Kind == Text {
		return len(c.Text)
	}
	return len(c.Num)
}

func (c *Column) IsNumeric() bool { return c.Kind != Text }

// IsMissing reports whether row i holds the missing marker.
func (c *Column) IsMissing(i int) bool {
	if c.Kind == Text {
		return c.Text[i] == ""
	}
	return math.IsNaN(c.Num[i])
}

// Float returns row i as a number; text cells are parsed when possible.
func (c *Column) Float(i int) float64 {
	if c.Kind != Text {
		return c.Num[i]
	}
	f, err := strconv.ParseFloat(c.Text[i], 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Format renders row i for text output; missing cells render as na.
func (c *Column) Format(i int, na string) string {
	if c.IsMissing(i) {
		return na
	}
	switch c.Kind {
	case Integer:
		return strconv.FormatFloat(c.Num[i], 'f', -1, 64)
	case Real:
		return FormatFloat(c.Num[i])
	}
	return c.Text[i]
}

// Key returns a comparable representation of row i, used for grouping.
func (c *Column) Key(i int) string {
	return c.Format(i, "")
}

// Floats returns the column as a fresh float slice.
func (c *Column) Floats() []float64 {
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.Float(i)
	}
	return out
}

func (c *Column) Clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Num != nil {
		out.Num = append([]float64(nil), c.Num...)
	}
	if c.Text != nil {
		out.Text = append([]string(nil), c.Text...)
	}
	return out
}

// Table is an ordered set of equally long per-sounding columns.
type Table struct {
	rows int
	cols []*Column
	idx  map[string]int
}

// NewTable returns an empty table of the given row count.
func NewTable(rows int) *Table {
	return &Table{rows: rows, idx: make(map[string]int)}
}

func (t *Table) Rows() int { return t.rows }

// Columns returns the columns in order. The slice must not be modified.
func (t *Table) Columns() []*Column { return t.cols }

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Column returns the named column or nil.
func (t *Table) Column(name string) *Column {
	i, ok := t.idx[name]
	if !ok {
		return nil
	}
	return t.cols[i]
}

func (t *Table) Has(name string) bool {
	_, ok := t.idx[name]
	return ok
}

// Put adds a column, replacing an existing column of the same name in place.
func (t *Table) Put(c *Column) error {
	if c.Len() != t.rows {
		return fmt.Errorf("column %q has %d rows, table has %d: %w", c.Name, c.Len(), t.rows, ErrRowMismatch)
	}
	if i, ok := t.idx[c.Name]; ok {
		t.cols[i] = c
		return nil
	}
	t.idx[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// Remove drops the named column if present.
func (t *Table) Remove(name string) {
	i, ok := t.idx[name]
	if !ok {
		return
	}
	t.cols = append(t.cols[:i], t.cols[i+1:]...)
	t.reindex()
}

// Rename changes a column name. Renaming onto an existing name replaces that column.
func (t *Table) Rename(old, name string) {
	i, ok := t.idx[old]
	if !ok || old == name {
		return
	}
	c := t.cols[i]
	if j, exists := t.idx[name]; exists {
		t.cols[j] = c
		t.cols = append(t.cols[:i], t.cols[i+1:]...)
	}
	c.Name = name
	t.reindex()
}

func (t *Table) reindex() {
	t.idx = make(map[string]int, len(t.cols))
	for i, c := range t.cols {
		t.idx[c.Name] = i
	}
}

func (t *Table) Clone() *Table {
	out := NewTable(t.rows)
	for _, c := range t.cols {
		_ = out.Put(c.Clone())
	}
	return out
}

// LayerTable is a rows × layers float matrix stored row-major. Layers holds
// the layer index of every matrix column, ascending; gaps are allowed.
type LayerTable struct {
	rows   int
	layers []int
	data   []float64
}

// NewLayerTable returns a NaN-filled table.
func NewLayerTable(rows int, layers []int) *LayerTable {
	l := &LayerTable{rows: rows, layers: append([]int(nil), layers...)}
	sort.Ints(l.layers)
	l.data = make([]float64, rows*len(layers))
	for i := range l.data {
		l.data[i] = math.NaN()
	}
	return l
}

func (l *LayerTable) Rows() int { return l.rows }

// Layers returns the layer indices in column order.
func (l *LayerTable) Layers() []int { return append([]int(nil), l.layers...) }

func (l *LayerTable) NumLayers() int { return len(l.layers) }

// MaxLayer returns the highest layer index, or -1 for an empty table.
func (l *LayerTable) MaxLayer() int {
	if len(l.layers) == 0 {
		return -1
	}
	return l.layers[len(l.layers)-1]
}

// Pos returns the matrix column holding the given layer index.
func (l *LayerTable) Pos(layer int) (int, bool) {
	i := sort.SearchInts(l.layers, layer)
	if i < len(l.layers) && l.layers[i] == layer {
		return i, true
	}
	return 0, false
}

func (l *LayerTable) At(row, pos int) float64 { return l.data[row*len(l.layers)+pos] }

func (l *LayerTable) Set(row, pos int, v float64) { l.data[row*len(l.layers)+pos] = v }

// Row returns a view of one sounding's values.
func (l *LayerTable) Row(row int) []float64 {
	n := len(l.layers)
	return l.data[row*n : (row+1)*n]
}

// Data returns the backing row-major buffer.
func (l *LayerTable) Data() []float64 { return l.data }

// Column returns a copy of the values at matrix column pos.
func (l *LayerTable) Column(pos int) []float64 {
	out := make([]float64, l.rows)
	for r := range out {
		out[r] = l.At(r, pos)
	}
	return out
}

// AppendLayer adds a NaN-filled layer after the current last layer.
func (l *LayerTable) AppendLayer(layer int) {
	n := len(l.layers)
	data := make([]float64, l.rows*(n+1))
	for r := 0; r < l.rows; r++ {
		copy(data[r*(n+1):], l.data[r*n:(r+1)*n])
		data[r*(n+1)+n] = math.NaN()
	}
	l.layers = append(l.layers, layer)
	l.data = data
}

// Like returns a NaN-filled table with the same shape.
func (l *LayerTable) Like() *LayerTable { return NewLayerTable(l.rows, l.layers) }

func (l *LayerTable) Clone() *LayerTable {
	return &LayerTable{rows: l.rows, layers: append([]int(nil), l.layers...), data: append([]float64(nil), l.data...)}
}

// LayerData maps parameter names to layer tables, keeping insertion order.
type LayerData struct {
	names  []string
	tables map[string]*LayerTable
}

func NewLayerData() *LayerData {
	return &LayerData{tables: make(map[string]*LayerTable)}
}

func (d *LayerData) Len() int { return len(d.names) }

// Names returns parameter names in insertion order.
func (d *LayerData) Names() []string { return append([]string(nil), d.names...) }

func (d *LayerData) Get(name string) *LayerTable { return d.tables[name] }

func (d *LayerData) Has(name string) bool {
	_, ok := d.tables[name]
	return ok
}

// Put stores a table; an existing name keeps its position.
func (d *LayerData) Put(name string, l *LayerTable) {
	if _, ok := d.tables[name]; !ok {
		d.names = append(d.names, name)
	}
	d.tables[name] = l
}

func (d *LayerData) Delete(name string) {
	if _, ok := d.tables[name]; !ok {
		return
	}
	delete(d.tables, name)
	for i, n := range d.names {
		if n == name {
			d.names = append(d.names[:i], d.names[i+1:]...)
			break
		}
	}
}

// MaxLayer returns the highest layer index across all tables, or -1.
func (d *LayerData) MaxLayer() int {
	max := -1
	for _, l := range d.tables {
		if m := l.MaxLayer(); m > max {
			max = m
		}
	}
	return max
}

func (d *LayerData) Clone() *LayerData {
	out := NewLayerData()
	for _, n := range d.names {
		out.Put(n, d.tables[n].Clone())
	}
	return out
}
