package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/aemxyz/internal/xyz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	normOutput      string
	normSurveyDir   string
	normGEX         string
	normALC         string
	normCRS         int
	normStandard    string
	normDumpALC     string
	normLayerNaming string
	normResample    bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <in.xyz|survey-dir>",
	Short: "Normalize naming and derive geometry, writing a new XYZ file or survey directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if normOutput == "" && normSurveyDir == "" {
			return errors.New("--output or --survey-dir is required")
		}
		s, err := loadSurvey(args[0], normGEX, normALC)
		if err != nil {
			return err
		}
		if err := runNormalize(s.Model, normStandard, normCRS, normResample); err != nil {
			return err
		}
		opt, err := dumpOptions(normLayerNaming)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if normOutput != "" {
			if err := xyz.DumpFile(normOutput, s.Model, opt, normDumpALC); err != nil {
				return err
			}
			fmt.Fprintf(w, "✓ Wrote %d soundings to %s\n", s.Model.Rows(), normOutput)
			if normDumpALC != "" {
				fmt.Fprintf(w, "✓ Wrote column mapping to %s\n", normDumpALC)
			}
		}
		if normSurveyDir != "" {
			name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			if err := s.Dump(normSurveyDir, name, opt, true); err != nil {
				return err
			}
			log.Debug("survey written", zap.String("id", s.Manifest.ID), zap.String("dir", normSurveyDir))
			fmt.Fprintf(w, "✓ Wrote survey %s to %s\n", s.Manifest.ID, normSurveyDir)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().StringVarP(&normOutput, "output", "o", "", "output XYZ path")
	normalizeCmd.Flags().StringVar(&normSurveyDir, "survey-dir", "", "write the survey with its ALC, GEX and survey.json into this directory")
	normalizeCmd.Flags().StringVar(&normGEX, "gex", "", "GEX system file stored alongside the survey")
	normalizeCmd.Flags().StringVar(&normALC, "alc", "", "ALC column mapping applied while parsing")
	normalizeCmd.Flags().IntVar(&normCRS, "crs", 0, "EPSG code to reproject to (overrides config)")
	normalizeCmd.Flags().StringVar(&normStandard, "naming", "", "target naming standard (overrides config)")
	normalizeCmd.Flags().StringVar(&normDumpALC, "dump-alc", "", "also write an ALC file describing the output columns")
	normalizeCmd.Flags().StringVar(&normLayerNaming, "layer-naming", "", "underscore|bracket (overrides config)")
	normalizeCmd.Flags().BoolVar(&normResample, "resample-depths", false, "put every sounding on the same layer boundaries")
}
