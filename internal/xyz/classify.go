package xyz

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Layer column grammars:
//
//	rho_i[6]  rho_i(6)  rho_i_6   explicit separator
//	rho_i6                        no separator, ambiguous
var (
	reLayerCol    = regexp.MustCompile(`^(.*?)[(_\[]([0-9]+)[)\]]?$`)
	reNumberedCol = regexp.MustCompile(`^(.*?)[(_\[]?([0-9]+)[)\]]?$`)
)

// LayerGroup is a set of columns forming one per-layer parameter.
type LayerGroup struct {
	Name string
	// Layers maps zero-based layer index to the raw column name.
	Layers map[int]string
}

// Indices returns the layer indices in ascending order.
func (g LayerGroup) Indices() []int {
	out := make([]int, 0, len(g.Layers))
	for i := range g.Layers {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Classification is the result of splitting raw column names.
type Classification struct {
	PerSounding []string
	Groups      []LayerGroup
}

// ClassifyOptions selects grammar variants.
type ClassifyOptions struct {
	// Compact renumbers layer indices to 0..n-1 instead of subtracting the
	// group minimum, closing gaps such as 1,3 -> 0,1.
	Compact bool
}

type groupAcc struct {
	name      string
	rawName   string
	ambiguous bool
	cols      []string
	suffixes  []int
}

// Classify partitions columns into per-sounding columns and per-layer groups.
func Classify(columns []string, opt ClassifyOptions) (*Classification, error) {
	var order []*groupAcc
	groups := map[string]*groupAcc{}
	member := map[string]bool{}

	add := func(col string, m []string, ambiguous bool) {
		suffix, err := strconv.Atoi(m[2])
		if err != nil {
			return
		}
		key := strings.Trim(m[1], "_")
		if key == "" {
			return
		}
		g, ok := groups[key]
		if !ok {
			g = &groupAcc{name: key, rawName: m[1], ambiguous: ambiguous}
			groups[key] = g
			order = append(order, g)
		}
		g.cols = append(g.cols, col)
		g.suffixes = append(g.suffixes, suffix)
		member[col] = true
	}

	for _, col := range columns {
		if m := reLayerCol.FindStringSubmatch(col); m != nil {
			add(col, m, false)
		}
	}
	for _, col := range columns {
		if member[col] {
			continue
		}
		if m := reNumberedCol.FindStringSubmatch(col); m != nil {
			add(col, m, true)
		}
	}

	out := &Classification{}
	for _, g := range order {
		if demote(g) {
			for _, col := range g.cols {
				member[col] = false
			}
			continue
		}
		lg := LayerGroup{Name: g.name, Layers: make(map[int]string, len(g.cols))}
		for i, layer := range rebase(g.suffixes, opt.Compact) {
			if prev, dup := lg.Layers[layer]; dup {
				return nil, &AmbiguousLayerColumnError{Group: g.name, Layer: layer, Columns: []string{prev, g.cols[i]}}
			}
			lg.Layers[layer] = g.cols[i]
		}
		out.Groups = append(out.Groups, lg)
	}
	for _, col := range columns {
		if !member[col] {
			out.PerSounding = append(out.PerSounding, col)
		}
	}
	return out, nil
}

// demote reports whether a group should be read as per-sounding columns.
func demote(g *groupAcc) bool {
	if len(g.cols) < 2 {
		return true
	}
	if g.ambiguous {
		return len(g.cols) < 3 || strings.HasSuffix(strings.ToLower(g.rawName), "ch")
	}
	return false
}

func rebase(suffixes []int, compact bool) []int {
	out := make([]int, len(suffixes))
	if compact {
		uniq := append([]int(nil), suffixes...)
		sort.Ints(uniq)
		rank := map[int]int{}
		for _, s := range uniq {
			if _, ok := rank[s]; !ok {
				rank[s] = len(rank)
			}
		}
		for i, s := range suffixes {
			out[i] = rank[s]
		}
		return out
	}
	min := suffixes[0]
	for _, s := range suffixes[1:] {
		if s < min {
			min = s
		}
	}
	for i, s := range suffixes {
		out[i] = s - min
	}
	return out
}
