package export

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/KaramelBytes/aemxyz/internal/xyz"
	_ "modernc.org/sqlite"
)

func sqlType(k xyz.ColumnKind) string {
	switch k {
	case xyz.Integer:
		return "INTEGER"
	case xyz.Real:
		return "REAL"
	}
	return "TEXT"
}

// sqlValue maps missing cells to NULL.
func sqlValue(c *xyz.Column, r int) any {
	if c.IsMissing(r) {
		return nil
	}
	switch c.Kind {
	case xyz.Integer:
		return int64(c.Num[r])
	case xyz.Real:
		return c.Num[r]
	}
	return c.Text[r]
}

func sqlFloat(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func quoted(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(q, ",")
}

func placeholders(n int) string {
	return strings.TrimRight(strings.Repeat("?,", n), ",")
}

// SQLite writes m to a fresh database at path with three tables:
// model_info (key, kind, value), flightlines (row plus one column per
// attribute) and layer_data in long form (row, layer, one column per layer
// parameter).
func SQLite(ctx context.Context, path string, m *xyz.Model) error {
	_ = os.Remove(path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := writeTables(ctx, tx, m); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func writeTables(ctx context.Context, tx *sql.Tx, m *xyz.Model) error {
	if _, err := tx.ExecContext(ctx, `CREATE TABLE "model_info" ("key" TEXT PRIMARY KEY, "kind" TEXT, "value" TEXT)`); err != nil {
		return fmt.Errorf("create model_info: %w", err)
	}
	for _, k := range m.ModelInfo.Keys() {
		v, _ := m.ModelInfo.Get(k)
		var val any
		if !v.IsNull() {
			val = v.String()
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO "model_info" VALUES (?,?,?)`, k, v.Kind.String(), val); err != nil {
			return fmt.Errorf("insert model_info %q: %w", k, err)
		}
	}

	cols := m.Flightlines.Columns()
	defs := []string{`"row" INTEGER PRIMARY KEY`}
	names := []string{"row"}
	for _, c := range cols {
		defs = append(defs, fmt.Sprintf("%q %s", c.Name, sqlType(c.Kind)))
		names = append(names, c.Name)
	}
	if _, err := tx.ExecContext(ctx, `CREATE TABLE "flightlines" (`+strings.Join(defs, ",")+`)`); err != nil {
		return fmt.Errorf("create flightlines: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO "flightlines" (`+quoted(names)+`) VALUES (`+placeholders(len(names))+`)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for r := 0; r < m.Rows(); r++ {
		args := make([]any, 0, len(names))
		args = append(args, r)
		for _, c := range cols {
			args = append(args, sqlValue(c, r))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert flightlines row %d: %w", r, err)
		}
	}

	params := m.LayerData.Names()
	if len(params) == 0 {
		return nil
	}
	defs = []string{`"row" INTEGER`, `"layer" INTEGER`}
	names = []string{"row", "layer"}
	layerSet := map[int]bool{}
	for _, p := range params {
		defs = append(defs, fmt.Sprintf("%q REAL", p))
		names = append(names, p)
		for _, l := range m.LayerData.Get(p).Layers() {
			layerSet[l] = true
		}
	}
	defs = append(defs, `PRIMARY KEY ("row","layer")`)
	if _, err := tx.ExecContext(ctx, `CREATE TABLE "layer_data" (`+strings.Join(defs, ",")+`)`); err != nil {
		return fmt.Errorf("create layer_data: %w", err)
	}
	lstmt, err := tx.PrepareContext(ctx, `INSERT INTO "layer_data" (`+quoted(names)+`) VALUES (`+placeholders(len(names))+`)`)
	if err != nil {
		return err
	}
	defer lstmt.Close()
	maxLayer := m.LayerData.MaxLayer()
	for r := 0; r < m.Rows(); r++ {
		for layer := 0; layer <= maxLayer; layer++ {
			if !layerSet[layer] {
				continue
			}
			args := []any{r, layer}
			for _, p := range params {
				t := m.LayerData.Get(p)
				v := math.NaN()
				if pos, ok := t.Pos(layer); ok {
					v = t.At(r, pos)
				}
				args = append(args, sqlFloat(v))
			}
			if _, err := lstmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("insert layer_data row %d layer %d: %w", r, layer, err)
			}
		}
	}
	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_layer_data_layer ON layer_data(layer)`); err != nil {
		return err
	}
	return nil
}
