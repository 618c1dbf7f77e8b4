package export

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/aemxyz/internal/gex"
	"github.com/KaramelBytes/aemxyz/internal/xyz"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

const bundleFormat = "aemxyz-model"

type packedValue struct {
	Key    string    `msgpack:"key"`
	Kind   string    `msgpack:"kind"`
	Str    string    `msgpack:"str,omitempty"`
	Int    int64     `msgpack:"int,omitempty"`
	Float  float64   `msgpack:"float,omitempty"`
	Ints   []int64   `msgpack:"ints,omitempty"`
	Floats []float64 `msgpack:"floats,omitempty"`
}

type packedColumn struct {
	Name string    `msgpack:"name"`
	Kind string    `msgpack:"kind"`
	Num  []float64 `msgpack:"num,omitempty"`
	Text []string  `msgpack:"text,omitempty"`
}

type packedLayer struct {
	Name   string    `msgpack:"name"`
	Layers []int     `msgpack:"layers"`
	Data   []float64 `msgpack:"data"`
}

type envelope struct {
	Format      string         `msgpack:"format"`
	ID          string         `msgpack:"id"`
	Rows        int            `msgpack:"rows"`
	Columns     []string       `msgpack:"columns"`
	ModelInfo   []packedValue  `msgpack:"model_info"`
	Flightlines []packedColumn `msgpack:"flightlines"`
	LayerData   []packedLayer  `msgpack:"layer_data"`
	System      map[string]any `msgpack:"system,omitempty"`
	GeoJSON     []byte         `msgpack:"geojson,omitempty"`
}

// Bundle is a model together with the optional system description and
// GeoJSON rendering stored beside it.
type Bundle struct {
	ID      string
	Model   *xyz.Model
	System  map[string]any
	GeoJSON []byte
}

// MsgpackOptions controls WriteMsgpack.
type MsgpackOptions struct {
	// ID identifies the dataset; empty generates a new UUID.
	ID     string
	System *gex.File
	// GeoJSON embeds the flight lines when the model has coordinates.
	GeoJSON bool
	GeoJSONOptions
}

var kindNames = map[xyz.Kind]string{
	xyz.Null: "null", xyz.String: "string", xyz.Int: "int",
	xyz.Float: "float", xyz.Ints: "ints", xyz.Floats: "floats",
}

var columnKinds = map[xyz.ColumnKind]string{xyz.Integer: "integer", xyz.Real: "float", xyz.Text: "text"}

func pack(m *xyz.Model) envelope {
	env := envelope{Format: bundleFormat, Rows: m.Rows(), Columns: m.FileMeta.Columns}
	for _, k := range m.ModelInfo.Keys() {
		v, _ := m.ModelInfo.Get(k)
		env.ModelInfo = append(env.ModelInfo, packedValue{
			Key: k, Kind: kindNames[v.Kind], Str: v.Str, Int: v.Int, Float: v.Float, Ints: v.Ints, Floats: v.Floats,
		})
	}
	for _, c := range m.Flightlines.Columns() {
		env.Flightlines = append(env.Flightlines, packedColumn{Name: c.Name, Kind: columnKinds[c.Kind], Num: c.Num, Text: c.Text})
	}
	for _, name := range m.LayerData.Names() {
		l := m.LayerData.Get(name)
		env.LayerData = append(env.LayerData, packedLayer{Name: name, Layers: l.Layers(), Data: l.Data()})
	}
	return env
}

func unpack(env envelope) (*xyz.Model, error) {
	m := xyz.New(env.Rows)
	m.FileMeta.Columns = env.Columns
	for _, pv := range env.ModelInfo {
		v := xyz.Value{Str: pv.Str, Int: pv.Int, Float: pv.Float, Ints: pv.Ints, Floats: pv.Floats}
		found := false
		for k, name := range kindNames {
			if name == pv.Kind {
				v.Kind, found = k, true
			}
		}
		if !found {
			return nil, fmt.Errorf("header %q: unknown kind %q", pv.Key, pv.Kind)
		}
		m.ModelInfo.Set(pv.Key, v)
	}
	for _, pc := range env.Flightlines {
		var c *xyz.Column
		switch pc.Kind {
		case "integer":
			c = xyz.NewIntColumn(pc.Name, nonNil(pc.Num))
		case "float":
			c = xyz.NewFloatColumn(pc.Name, nonNil(pc.Num))
		case "text":
			c = xyz.NewTextColumn(pc.Name, pc.Text)
			if c.Text == nil {
				c.Text = []string{}
			}
		default:
			return nil, fmt.Errorf("column %q: unknown kind %q", pc.Name, pc.Kind)
		}
		if err := m.Flightlines.Put(c); err != nil {
			return nil, err
		}
	}
	for _, pl := range env.LayerData {
		l := xyz.NewLayerTable(env.Rows, pl.Layers)
		if len(pl.Data) != len(l.Data()) {
			return nil, fmt.Errorf("layer table %q: %d values for %d cells: %w", pl.Name, len(pl.Data), len(l.Data()), xyz.ErrRowMismatch)
		}
		copy(l.Data(), pl.Data)
		if err := m.PutLayer(pl.Name, l); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

// WriteMsgpack encodes m, and optionally its system and GeoJSON, to w. It
// returns the dataset ID written.
func WriteMsgpack(w io.Writer, m *xyz.Model, opt MsgpackOptions) (string, error) {
	env := pack(m)
	env.ID = opt.ID
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	if opt.System != nil {
		env.System = opt.System.Map()
	}
	if opt.GeoJSON {
		b, err := GeoJSONBytes(m, opt.GeoJSONOptions)
		if err != nil && err != ErrNoCoordinates {
			return "", err
		}
		env.GeoJSON = b
	}
	if err := msgpack.NewEncoder(w).Encode(&env); err != nil {
		return "", fmt.Errorf("encode msgpack: %w", err)
	}
	return env.ID, nil
}

// ReadMsgpack decodes a bundle written by WriteMsgpack.
func ReadMsgpack(r io.Reader) (*Bundle, error) {
	var env envelope
	if err := msgpack.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode msgpack: %w", err)
	}
	if env.Format != bundleFormat {
		return nil, fmt.Errorf("decode msgpack: unexpected format %q", env.Format)
	}
	m, err := unpack(env)
	if err != nil {
		return nil, fmt.Errorf("decode msgpack: %w", err)
	}
	return &Bundle{ID: env.ID, Model: m, System: env.System, GeoJSON: env.GeoJSON}, nil
}
