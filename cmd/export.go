package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/aemxyz/internal/export"
	"github.com/KaramelBytes/aemxyz/internal/survey"
	"github.com/KaramelBytes/aemxyz/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	expFormat    string
	expOutput    string
	expGEX       string
	expALC       string
	expTolerance float64
	expCRS       int
	expAttrs     []string
	expResample  bool
)

var exportCmd = &cobra.Command{
	Use:   "export <in.xyz|survey-dir>",
	Short: "Normalize a survey and export it as geojson, msgpack, vtk or sqlite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if expOutput == "" {
			return errors.New("--output is required")
		}
		s, err := loadSurvey(args[0], expGEX, expALC)
		if err != nil {
			return err
		}
		if err := runNormalize(s.Model, "", expCRS, expResample); err != nil {
			return err
		}
		tol := settings().GeoJSONTolerance
		if cmd.Flags().Changed("tolerance") {
			tol = expTolerance
		}
		if err := writeExport(cmd, s, strings.ToLower(expFormat), tol); err != nil {
			return err
		}
		log.Debug("exported", zap.String("format", expFormat), zap.String("path", expOutput))
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %s to %s\n", expFormat, expOutput)
		return nil
	},
}

func writeExport(cmd *cobra.Command, s *survey.Survey, format string, tol float64) error {
	m := s.Model
	var buf bytes.Buffer
	switch format {
	case "geojson":
		if err := export.GeoJSON(&buf, m, export.GeoJSONOptions{Tolerance: tol}); err != nil {
			return err
		}
	case "msgpack":
		opt := export.MsgpackOptions{
			ID:             s.Manifest.ID,
			System:         s.System,
			GeoJSON:        true,
			GeoJSONOptions: export.GeoJSONOptions{Tolerance: tol},
		}
		id, err := export.WriteMsgpack(&buf, m, opt)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dataset: %s\n", id)
	case "vtk":
		if err := export.VTK(&buf, m, export.VTKOptions{Attributes: expAttrs}); err != nil {
			return err
		}
	case "sqlite":
		return export.SQLite(cmd.Context(), expOutput, m)
	default:
		return fmt.Errorf("unsupported --format: %s (use geojson|msgpack|vtk|sqlite)", format)
	}
	return utils.SafeWriteFile(expOutput, buf.Bytes())
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&expFormat, "format", "f", "geojson", "geojson|msgpack|vtk|sqlite")
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", "", "output path")
	exportCmd.Flags().StringVar(&expGEX, "gex", "", "GEX system file embedded in msgpack output")
	exportCmd.Flags().StringVar(&expALC, "alc", "", "ALC column mapping applied while parsing")
	exportCmd.Flags().Float64Var(&expTolerance, "tolerance", 0, "GeoJSON simplification tolerance in meters (overrides config)")
	exportCmd.Flags().IntVar(&expCRS, "crs", 0, "EPSG code to reproject to before export")
	exportCmd.Flags().StringSliceVar(&expAttrs, "attr", nil, "VTK cell attributes (default: built-in list)")
	exportCmd.Flags().BoolVar(&expResample, "resample-depths", false, "put every sounding on the same layer boundaries")
}
