package cmd

import (
	"github.com/KaramelBytes/aemxyz/internal/gex"
	"github.com/KaramelBytes/aemxyz/internal/sr2"
	"github.com/spf13/cobra"
)

var gexCmd = &cobra.Command{
	Use:   "gex <file>",
	Short: "Print the sections of a GEX system file as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := gex.ParseFile(args[0], settings().Encoding)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), f.Map())
	},
}

var sr2Cmd = &cobra.Command{
	Use:   "sr2 <file>",
	Short: "Print an SR2 system response as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := sr2.ParseFile(args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), r)
	},
}

func init() {
	rootCmd.AddCommand(gexCmd)
	rootCmd.AddCommand(sr2Cmd)
}
