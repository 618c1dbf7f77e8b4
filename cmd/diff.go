package cmd

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/aemxyz/internal/xyz"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <a.xyz> <b.xyz>",
	Short: "Report the columns, layer tables and header keys that differ",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := parseXYZ(args[0], "")
		if err != nil {
			return err
		}
		b, err := parseXYZ(args[1], "")
		if err != nil {
			return err
		}
		d, err := xyz.ComputeDiff(a, b)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if d.Empty() {
			fmt.Fprintln(w, "✓ No differences")
			return nil
		}
		for _, k := range d.RemovedHeader {
			fmt.Fprintf(w, "header %s: removed\n", k)
		}
		for _, name := range d.RemovedColumns {
			fmt.Fprintf(w, "column %s: removed\n", name)
		}
		for _, name := range d.RemovedLayers {
			fmt.Fprintf(w, "layers %s: removed\n", name)
		}
		for _, k := range d.HeaderOrder {
			if v, ok := d.Header[k]; ok {
				fmt.Fprintf(w, "header %s: %s\n", k, v.String())
			}
		}
		for _, name := range d.ColumnOrder {
			c, ok := d.Flightlines[name]
			if !ok {
				continue
			}
			if c.Full {
				fmt.Fprintf(w, "column %s: replaced (%s)\n", name, c.Kind)
				continue
			}
			fmt.Fprintf(w, "column %s: %d rows changed%s\n", name, len(c.Num)+len(c.Text), firstRows(c.Num, c.Text))
		}
		for _, name := range d.LayerOrder {
			l, ok := d.LayerData[name]
			if !ok {
				continue
			}
			if l.Full {
				fmt.Fprintf(w, "layers %s: replaced (%d layers)\n", name, len(l.Layers))
				continue
			}
			cells := 0
			for _, row := range l.Cells {
				cells += len(row)
			}
			fmt.Fprintf(w, "layers %s: %d cells changed in %d rows\n", name, cells, len(l.Cells))
		}
		return nil
	},
}

// firstRows lists up to five changed row indices.
func firstRows(num map[int]float64, text map[int]string) string {
	var rows []int
	for r := range num {
		rows = append(rows, r)
	}
	for r := range text {
		rows = append(rows, r)
	}
	sort.Ints(rows)
	if len(rows) > 5 {
		rows = rows[:5]
	}
	return fmt.Sprintf(" (rows %v)", rows)
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
