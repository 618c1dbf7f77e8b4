package normalize

import (
	"math"

	"github.com/KaramelBytes/aemxyz/internal/xyz"
	"gonum.org/v1/gonum/floats"
)

func fillNaN(vals []float64, v float64) {
	for i, x := range vals {
		if math.IsNaN(x) {
			vals[i] = v
		}
	}
}

func (e *engine) putLayer(canonical string, l *xyz.LayerTable) {
	if err := e.m.PutLayer(e.col(canonical), l); err != nil {
		e.warn(err)
	}
}

// depths makes missing bottoms infinite and derives tops from the bottom of
// the layer above when the file has none.
func (e *engine) depths() {
	bot := e.layer("dep_bot")
	if bot == nil {
		e.missing("dep_bot")
		return
	}
	fillNaN(bot.Data(), math.Inf(1))
	if top := e.layer("dep_top"); top != nil {
		fillNaN(top.Data(), math.Inf(1))
		return
	}
	top := bot.Like()
	if top.NumLayers() > 0 {
		for r := 0; r < top.Rows(); r++ {
			dst, src := top.Row(r), bot.Row(r)
			dst[0] = 0
			copy(dst[1:], src[:len(src)-1])
		}
	}
	e.putLayer("dep_top", top)
}

// below returns surface minus depth for every cell.
func below(depth *xyz.LayerTable, surface *xyz.Column) *xyz.LayerTable {
	out := depth.Like()
	for r := 0; r < out.Rows(); r++ {
		dst := out.Row(r)
		floats.ScaleTo(dst, -1, depth.Row(r))
		floats.AddConst(surface.Float(r), dst)
	}
	return out
}

func (e *engine) elevation() {
	bot := e.layer("dep_bot")
	if bot == nil {
		e.missing("dep_bot")
		return
	}
	surface := e.column("topo")
	if surface == nil {
		surface = e.m.Flightlines.Column(e.m.ZColumn())
	}
	if surface == nil {
		e.missing("topo")
		return
	}
	e.putLayer("z_bottom", below(bot, surface))
	if top := e.layer("dep_top"); top != nil {
		e.putLayer("z_top", below(top, surface))
	}
}

func (e *engine) height() {
	bot := e.layer("dep_bot")
	if bot == nil {
		e.missing("dep_bot")
		return
	}
	if e.layer("height") != nil {
		return
	}
	top := e.layer("dep_top")
	if top == nil {
		e.missing("dep_top")
		return
	}
	h := bot.Like()
	if sameLayers(bot, top) {
		floats.SubTo(h.Data(), bot.Data(), top.Data())
	} else {
		for pos, layer := range h.Layers() {
			tp, ok := top.Pos(layer)
			if !ok {
				continue
			}
			for r := 0; r < h.Rows(); r++ {
				h.Set(r, pos, bot.At(r, pos)-top.At(r, tp))
			}
		}
	}
	e.putLayer("height", h)
}

func sameLayers(a, b *xyz.LayerTable) bool {
	la, lb := a.Layers(), b.Layers()
	if len(la) != len(lb) {
		return false
	}
	for i := range la {
		if la[i] != lb[i] {
			return false
		}
	}
	return true
}

// DOIClass bands a layer bottom against the sounding's thresholds: 2 at or
// below doi_lower, 1 below doi_upper, else 0.
func DOIClass(depBot, upper, lower float64) float64 {
	switch {
	case depBot >= lower:
		return 2
	case depBot > upper:
		return 1
	}
	return 0
}

func (e *engine) doiLayer() {
	bot := e.layer("dep_bot")
	if bot == nil {
		e.missing("dep_bot")
		return
	}
	lower, upper := e.column("doi_lower"), e.column("doi_upper")
	if lower == nil {
		e.missing("doi_lower")
		return
	}
	if upper == nil {
		e.missing("doi_upper")
		return
	}
	out := bot.Like()
	for r := 0; r < out.Rows(); r++ {
		lo, up := lower.Float(r), upper.Float(r)
		for pos, v := range bot.Row(r) {
			out.Set(r, pos, DOIClass(v, up, lo))
		}
	}
	e.putLayer("doi_layer", out)
}
