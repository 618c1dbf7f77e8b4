package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/KaramelBytes/aemxyz/internal/analysis"
	"github.com/KaramelBytes/aemxyz/internal/parser"
	"github.com/KaramelBytes/aemxyz/internal/utils"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarize an xyz, alc, gex, sr2 or msgpack file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := parseOptions("")
		if err != nil {
			return err
		}
		doc, err := parser.ParseFile(args[0], opt)
		if err != nil {
			return err
		}
		return printDocument(cmd.OutOrStdout(), doc)
	},
}

func printDocument(w io.Writer, doc *parser.Document) error {
	switch {
	case doc.Model != nil:
		if doc.Bundle != nil {
			fmt.Fprintf(w, "Dataset: %s\n", doc.Bundle.ID)
		}
		fmt.Fprint(w, analysis.Describe(doc.Model).Markdown())
		return nil
	case doc.ALC != nil:
		for _, k := range doc.ALC.MetaKeys() {
			fmt.Fprintf(w, "%s: %s\n", k, doc.ALC.Meta[k])
		}
		for _, f := range doc.ALC.Fields {
			if f.Position == 0 {
				fmt.Fprintf(w, "- %s: unset\n", f.Name)
				continue
			}
			fmt.Fprintf(w, "- %s: column %d\n", f.Name, f.Position)
		}
		return nil
	case doc.GEX != nil:
		return printJSON(w, doc.GEX.Map())
	case doc.SR2 != nil:
		return printJSON(w, doc.SR2)
	}
	return fmt.Errorf("%s: empty document", doc.Path)
}

func printJSON(w io.Writer, v any) error {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printWarning(err error) {
	fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
