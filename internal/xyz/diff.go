package xyz

import (
	"fmt"
	"math"
)

// Diff is a sparse overlay that turns one model into another with the same
// soundings. Only changed or added columns, layer tables and header keys are
// kept. The Order slices are the full name lists of the target and decide
// both membership and order when the diff is applied; names of the base
// missing from them are listed in the Removed slices.
type Diff struct {
	Rows           int
	ColumnOrder    []string
	LayerOrder     []string
	HeaderOrder    []string
	Header         map[string]Value
	Flightlines    map[string]*ColumnDiff
	LayerData      map[string]*LayerDiff
	RemovedHeader  []string
	RemovedColumns []string
	RemovedLayers  []string
}

// ColumnDiff holds the changed cells of one per-sounding column, keyed by row.
// A column whose kind changed or that is new carries every row with Full set.
type ColumnDiff struct {
	Kind ColumnKind
	Full bool
	Num  map[int]float64
	Text map[int]string
}

// LayerDiff holds the changed cells of one layer table, keyed by row then layer index.
type LayerDiff struct {
	Layers []int
	Full   bool
	Cells  map[int]map[int]float64
}

// Empty reports whether the diff carries no change.
func (d *Diff) Empty() bool {
	return len(d.Header) == 0 && len(d.Flightlines) == 0 && len(d.LayerData) == 0 &&
		len(d.RemovedHeader) == 0 && len(d.RemovedColumns) == 0 && len(d.RemovedLayers) == 0
}

// absentNames returns the names of from that are absent in keep, in from order.
func absentNames(from, keep []string) []string {
	in := make(map[string]bool, len(keep))
	for _, k := range keep {
		in[k] = true
	}
	var out []string
	for _, k := range from {
		if !in[k] {
			out = append(out, k)
		}
	}
	return out
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ComputeDiff derives the overlay that reconstructs b from a.
func ComputeDiff(a, b *Model) (*Diff, error) {
	if a.Rows() != b.Rows() {
		return nil, fmt.Errorf("diff %d against %d soundings: %w", a.Rows(), b.Rows(), ErrRowMismatch)
	}
	d := &Diff{
		Rows:        b.Rows(),
		ColumnOrder: b.Flightlines.Names(),
		LayerOrder:  b.LayerData.Names(),
		HeaderOrder: b.ModelInfo.Keys(),
		Header:      map[string]Value{},
		Flightlines: map[string]*ColumnDiff{},
		LayerData:   map[string]*LayerDiff{},
	}
	d.RemovedHeader = absentNames(a.ModelInfo.Keys(), d.HeaderOrder)
	d.RemovedColumns = absentNames(a.Flightlines.Names(), d.ColumnOrder)
	d.RemovedLayers = absentNames(a.LayerData.Names(), d.LayerOrder)
	for _, k := range b.ModelInfo.Keys() {
		bv, _ := b.ModelInfo.Get(k)
		if av, ok := a.ModelInfo.Get(k); !ok || !av.Equal(bv) {
			d.Header[k] = bv.Clone()
		}
	}
	for _, bc := range b.Flightlines.Columns() {
		ac := a.Flightlines.Column(bc.Name)
		full := ac == nil || ac.Kind != bc.Kind
		cd := &ColumnDiff{Kind: bc.Kind, Full: full}
		for r := 0; r < b.Rows(); r++ {
			if bc.Kind == Text {
				if full || ac.Text[r] != bc.Text[r] {
					if cd.Text == nil {
						cd.Text = map[int]string{}
					}
					cd.Text[r] = bc.Text[r]
				}
				continue
			}
			if full || !sameFloat(ac.Num[r], bc.Num[r]) {
				if cd.Num == nil {
					cd.Num = map[int]float64{}
				}
				cd.Num[r] = bc.Num[r]
			}
		}
		if full || len(cd.Num) > 0 || len(cd.Text) > 0 {
			d.Flightlines[bc.Name] = cd
		}
	}
	for _, name := range b.LayerData.Names() {
		bl := b.LayerData.Get(name)
		al := a.LayerData.Get(name)
		full := al == nil || !sameInts(al.Layers(), bl.Layers())
		ld := &LayerDiff{Layers: bl.Layers(), Full: full, Cells: map[int]map[int]float64{}}
		for r := 0; r < bl.Rows(); r++ {
			for pos, layer := range ld.Layers {
				v := bl.At(r, pos)
				if !full && sameFloat(al.At(r, pos), v) {
					continue
				}
				if ld.Cells[r] == nil {
					ld.Cells[r] = map[int]float64{}
				}
				ld.Cells[r][layer] = v
			}
		}
		if full || len(ld.Cells) > 0 {
			d.LayerData[name] = ld
		}
	}
	return d, nil
}

// ApplyDiff returns a copy of a with the overlay applied. The header,
// columns and layer tables of the result are exactly those named by the
// diff's Order slices, in that order.
func ApplyDiff(a *Model, d *Diff) (*Model, error) {
	if a.Rows() != d.Rows {
		return nil, fmt.Errorf("apply diff of %d rows to %d soundings: %w", d.Rows, a.Rows(), ErrRowMismatch)
	}
	base := a.Clone()
	out := &Model{
		Flightlines: NewTable(d.Rows),
		LayerData:   NewLayerData(),
		ModelInfo:   NewHeader(),
		FileMeta:    base.FileMeta,
		ALCInfo:     base.ALCInfo,
	}
	for _, k := range d.HeaderOrder {
		v, ok := d.Header[k]
		if !ok {
			if v, ok = base.ModelInfo.Get(k); !ok {
				return nil, fmt.Errorf("apply diff: header key %q is neither in the diff nor in the base", k)
			}
		}
		out.ModelInfo.Set(k, v.Clone())
	}
	for _, name := range d.ColumnOrder {
		c := base.Flightlines.Column(name)
		cd, ok := d.Flightlines[name]
		if !ok {
			if c == nil {
				return nil, fmt.Errorf("apply diff: column %q is neither in the diff nor in the base", name)
			}
			if err := out.Flightlines.Put(c); err != nil {
				return nil, err
			}
			continue
		}
		if cd.Full || c == nil {
			c = &Column{Name: name, Kind: cd.Kind}
			if cd.Kind == Text {
				c.Text = make([]string, d.Rows)
			} else {
				c.Num = make([]float64, d.Rows)
				for i := range c.Num {
					c.Num[i] = math.NaN()
				}
			}
		}
		for r, v := range cd.Num {
			c.Num[r] = v
		}
		for r, v := range cd.Text {
			c.Text[r] = v
		}
		if err := out.Flightlines.Put(c); err != nil {
			return nil, err
		}
	}
	for _, name := range d.LayerOrder {
		l := base.LayerData.Get(name)
		ld, ok := d.LayerData[name]
		if !ok {
			if l == nil {
				return nil, fmt.Errorf("apply diff: layer table %q is neither in the diff nor in the base", name)
			}
			if err := out.PutLayer(name, l); err != nil {
				return nil, err
			}
			continue
		}
		if ld.Full || l == nil {
			l = NewLayerTable(d.Rows, ld.Layers)
		}
		for r, cells := range ld.Cells {
			for layer, v := range cells {
				if pos, ok := l.Pos(layer); ok {
					l.Set(r, pos, v)
				}
			}
		}
		if err := out.PutLayer(name, l); err != nil {
			return nil, err
		}
	}
	return out, nil
}
