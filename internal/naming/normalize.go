package naming

import (
	"strings"

	"github.com/KaramelBytes/aemxyz/internal/xyz"
	"go.uber.org/zap"
)

const nodeNamesKey = "node name(s)"

// renames remembers which source name produced each target so collisions
// can be reported.
type renames struct {
	kind string
	log  *zap.Logger
	from map[string]string
}

func (r *renames) add(source, target string) {
	if prev, ok := r.from[target]; ok {
		r.log.Debug("source names collide, keeping the later",
			zap.String("kind", r.kind),
			zap.String("target", target),
			zap.String("dropped", prev),
			zap.String("kept", source))
	}
	r.from[target] = source
}

// Normalize renames header keys, per-sounding columns and layer parameters of
// m into the mapper's standard. Two names that map onto the same target keep
// the later one and the collision is logged at debug level. The header gains
// inversion_type and naming_standard.
func Normalize(m *xyz.Model, mp *Mapper, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	newRenames := func(kind string) *renames {
		return &renames{kind: kind, log: log, from: map[string]string{}}
	}

	h := xyz.NewHeader()
	keys := newRenames("header")
	for _, k := range m.ModelInfo.Keys() {
		v, _ := m.ModelInfo.Get(k)
		target := mp.Map(k)
		keys.add(k, target)
		h.Set(target, v)
	}
	inv := xyz.NullValue()
	if v, ok := h.Get(nodeNamesKey); ok && !v.IsNull() {
		prefix, _, _ := strings.Cut(v.String(), "_")
		inv = xyz.StringValue(prefix)
	}
	h.Set("inversion_type", inv)
	h.Set("naming_standard", xyz.StringValue(mp.Standard()))
	m.ModelInfo = h

	t := xyz.NewTable(m.Rows())
	cols := newRenames("column")
	for _, c := range m.Flightlines.Columns() {
		source := c.Name
		c.Name = mp.Map(source)
		cols.add(source, c.Name)
		// Row counts already match.
		_ = t.Put(c)
	}
	m.Flightlines = t

	ld := xyz.NewLayerData()
	layers := newRenames("layer")
	for _, name := range m.LayerData.Names() {
		target := mp.Map(name)
		layers.add(name, target)
		ld.Put(target, m.LayerData.Get(name))
	}
	m.LayerData = ld
}
