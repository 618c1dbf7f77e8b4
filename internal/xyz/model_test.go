package xyz

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layeredSample = `/title
/Survey A
/ line_no x y xdist rho_1 rho_2 rho_3 dep_bot_1 dep_bot_2 dep_bot_3
1 0 0 0 10 20 30 5 15 *
1 10 0 10 11 21 31 5 15 *
2 20 0 0 12 22 32 5 15 *
2 30 0 10 13 23 33 5 15 *
2 40 0 25 14 24 34 5 15 *
`

func TestModel_Accessors(t *testing.T) {
	m := parseString(t, layeredSample)

	assert.Equal(t, "Survey A", m.Title())
	assert.Equal(t, "line_no", m.LineIDColumn())
	assert.Equal(t, "x", m.XColumn())
	assert.Equal(t, "y", m.YColumn())
	assert.Equal(t, "", m.ZColumn())

	lines := m.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[0].ID)
	assert.Equal(t, []int{2, 3, 4}, lines[1].Rows)
	assert.Equal(t, 10.0, lines[0].XDist())
	assert.Equal(t, 25.0, lines[1].XDist())
}

func TestModel_LayerParams(t *testing.T) {
	m := parseString(t, layeredSample)
	p := m.LayerParams()

	assert.Equal(t, []string{"dep_bot"}, p.Names)
	assert.Equal(t, []int{0, 1, 2}, p.Layers)
	vals := p.Values["dep_bot"]
	assert.Equal(t, 5.0, vals[0])
	assert.Equal(t, 15.0, vals[1])
	assert.True(t, math.IsNaN(vals[2]))
}

func TestModel_GetFieldPriority(t *testing.T) {
	m := parseString(t, layeredSample)
	m.ModelInfo.Set("x", StringValue("shadowed"))
	m.ModelInfo.Set("dep_bot", StringValue("header wins over layer constants"))

	f, ok := m.GetField("x")
	require.True(t, ok)
	assert.Equal(t, FromFlightlines, f.Source)

	f, ok = m.GetField("title")
	require.True(t, ok)
	assert.Equal(t, FromHeader, f.Source)

	f, ok = m.GetField("dep_bot")
	require.True(t, ok)
	assert.Equal(t, FromHeader, f.Source)

	m.ModelInfo.Delete("dep_bot")
	f, ok = m.GetField("dep_bot")
	require.True(t, ok)
	assert.Equal(t, FromLayerParams, f.Source)
	assert.Equal(t, 15.0, f.Layers[1])

	_, ok = m.GetField("rho")
	assert.False(t, ok, "varying layer tables are not layer constants")
}

func TestModel_PutLayerRowCheck(t *testing.T) {
	m := New(3)
	err := m.PutLayer("rho", NewLayerTable(2, []int{0, 1}))
	if !errors.Is(err, ErrRowMismatch) {
		t.Fatalf("expected ErrRowMismatch, got %v", err)
	}
	if err := m.Flightlines.Put(FullColumn("x", 4, 0)); !errors.Is(err, ErrRowMismatch) {
		t.Fatalf("expected ErrRowMismatch, got %v", err)
	}
}

func TestLayerTable_AppendLayer(t *testing.T) {
	l := NewLayerTable(2, []int{0, 1})
	l.Set(0, 0, 1)
	l.Set(1, 1, 4)
	l.AppendLayer(2)
	assert.Equal(t, []int{0, 1, 2}, l.Layers())
	assert.Equal(t, 1.0, l.At(0, 0))
	assert.Equal(t, 4.0, l.At(1, 1))
	assert.True(t, math.IsNaN(l.At(1, 2)))
}

func TestDiff_RoundTrip(t *testing.T) {
	a := parseString(t, layeredSample)
	b := a.Clone()
	b.Flightlines.Column("x").Num[3] = 99
	_ = b.Flightlines.Put(FullColumn("xdist2", b.Rows(), 7))
	b.LayerData.Get("rho").Set(1, 2, -1)
	b.ModelInfo.Set("projection", IntValue(32632))

	d, err := ComputeDiff(a, b)
	require.NoError(t, err)
	assert.Len(t, d.Flightlines["x"].Num, 1)
	assert.True(t, d.Flightlines["xdist2"].Full)
	assert.Len(t, d.LayerData["rho"].Cells, 1)
	assert.NotContains(t, d.LayerData, "dep_bot")

	got, err := ApplyDiff(a, d)
	require.NoError(t, err)
	assertModelsEqual(t, b, got)

	same, err := ComputeDiff(a, a.Clone())
	require.NoError(t, err)
	assert.True(t, same.Empty())
}

func TestDiff_DroppedAndRenamedNames(t *testing.T) {
	a := parseString(t, layeredSample)
	b := a.Clone()
	b.Flightlines.Rename("x", "utmx")
	b.Flightlines.Remove("xdist")
	b.LayerData.Delete("dep_bot")
	b.ModelInfo.Delete("title")

	d, err := ComputeDiff(a, b)
	require.NoError(t, err)
	assert.False(t, d.Empty())
	assert.Equal(t, []string{"title"}, d.RemovedHeader)
	assert.Equal(t, []string{"x", "xdist"}, d.RemovedColumns)
	assert.Equal(t, []string{"dep_bot"}, d.RemovedLayers)

	got, err := ApplyDiff(a, d)
	require.NoError(t, err)
	assert.Equal(t, []string{"line_no", "utmx", "y"}, got.Flightlines.Names())
	assert.Equal(t, b.Flightlines.Names(), got.Flightlines.Names())
	assert.Equal(t, b.LayerData.Names(), got.LayerData.Names())
	assert.Equal(t, b.ModelInfo.Keys(), got.ModelInfo.Keys())
	assert.False(t, got.ModelInfo.Has("title"))
	assertModelsEqual(t, b, got)
}

func TestDiff_ReorderedColumns(t *testing.T) {
	a := parseString(t, "/ x y z\n1 2 3\n4 5 6\n")
	b := New(a.Rows())
	for _, name := range []string{"z", "x", "y"} {
		require.NoError(t, b.Flightlines.Put(a.Flightlines.Column(name).Clone()))
	}
	b.ModelInfo = a.ModelInfo.Clone()

	d, err := ComputeDiff(a, b)
	require.NoError(t, err)
	got, err := ApplyDiff(a, d)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "x", "y"}, got.Flightlines.Names())
}

func TestApplyDiff_UnknownBaseName(t *testing.T) {
	a := parseString(t, layeredSample)
	d, err := ComputeDiff(a, a.Clone())
	require.NoError(t, err)
	d.ColumnOrder = append(d.ColumnOrder, "ghost")
	_, err = ApplyDiff(a, d)
	assert.ErrorContains(t, err, `"ghost"`)
}
