package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/aemxyz/internal/xyz"
	"github.com/spf13/cobra"
)

var (
	convOutput      string
	convALC         string
	convLayerNaming string
)

var convertCmd = &cobra.Command{
	Use:   "convert <in.xyz>",
	Short: "Rewrite an XYZ file without normalization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if convOutput == "" {
			return errors.New("--output is required")
		}
		m, err := parseXYZ(args[0], convALC)
		if err != nil {
			return err
		}
		opt, err := dumpOptions(convLayerNaming)
		if err != nil {
			return err
		}
		if err := xyz.DumpFile(convOutput, m, opt, ""); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d soundings to %s\n", m.Rows(), convOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convOutput, "output", "o", "", "output XYZ path")
	convertCmd.Flags().StringVar(&convALC, "alc", "", "ALC column mapping applied while parsing")
	convertCmd.Flags().StringVar(&convLayerNaming, "layer-naming", "", "underscore|bracket (overrides config)")
}
