package normalize

import (
	"math"
	"sort"

	"github.com/KaramelBytes/aemxyz/internal/xyz"
	"go.uber.org/zap"
)

// ResampleLayerDepths returns a copy of m in which layer k spans the same
// depth interval in every sounding. The new boundaries are the union of all
// layer bottoms; each new layer copies the values of the source layer that
// contains it. Values are not interpolated.
func ResampleLayerDepths(m *xyz.Model) (*xyz.Model, error) {
	return resampleDepths(m, "dep_top", "dep_bot")
}

func resampleDepths(m *xyz.Model, topName, botName string) (*xyz.Model, error) {
	bot, top := m.LayerData.Get(botName), m.LayerData.Get(topName)
	if bot == nil {
		return nil, &MissingPrerequisiteColumn{Pass: "resample", Column: botName}
	}
	if top == nil {
		return nil, &MissingPrerequisiteColumn{Pass: "resample", Column: topName}
	}

	seen := map[float64]bool{}
	var bounds []float64
	for _, v := range bot.Data() {
		if math.IsNaN(v) {
			v = math.Inf(1)
		}
		if !seen[v] {
			seen[v] = true
			bounds = append(bounds, v)
		}
	}
	sort.Float64s(bounds)
	layers := make([]int, len(bounds))
	for i := range layers {
		layers[i] = i
	}

	out := m.Clone()
	rows := m.Rows()
	ld := xyz.NewLayerData()
	for _, name := range m.LayerData.Names() {
		ld.Put(name, xyz.NewLayerTable(rows, layers))
	}
	for r := 0; r < rows; r++ {
		for dest := range bounds {
			lo := 0.0
			if dest > 0 {
				lo = bounds[dest-1]
			}
			hi := bounds[dest]
			ld.Get(topName).Set(r, dest, lo)
			ld.Get(botName).Set(r, dest, hi)

			src, ok := sourceLayer(top, bot, r, lo, hi)
			if !ok {
				continue
			}
			for _, name := range m.LayerData.Names() {
				if name == topName || name == botName {
					continue
				}
				l := m.LayerData.Get(name)
				if pos, ok := l.Pos(src); ok {
					ld.Get(name).Set(r, dest, l.At(r, pos))
				}
			}
		}
	}
	out.LayerData = ld
	return out, nil
}

// sourceLayer finds the first layer of row r whose interval covers [lo, hi].
func sourceLayer(top, bot *xyz.LayerTable, r int, lo, hi float64) (int, bool) {
	for pos, layer := range bot.Layers() {
		b := bot.At(r, pos)
		if math.IsNaN(b) {
			b = math.Inf(1)
		}
		tp, ok := top.Pos(layer)
		if !ok {
			continue
		}
		t := top.At(r, tp)
		if math.IsNaN(t) {
			t = math.Inf(1)
		}
		if t <= lo && b >= hi {
			return layer, true
		}
	}
	return 0, false
}

// resample moves every layer table onto the shared depth boundaries. The
// source thickness no longer matches the new intervals, so height is dropped
// for the height pass to derive again.
func (e *engine) resample() {
	out, err := resampleDepths(e.m, e.col("dep_top"), e.col("dep_bot"))
	if err != nil {
		e.warn(err)
		return
	}
	out.LayerData.Delete(e.col("height"))
	e.m.LayerData = out.LayerData
	e.log.Debug("resampled layer depths", zap.Int("layers", e.m.LayerData.MaxLayer()+1))
}
