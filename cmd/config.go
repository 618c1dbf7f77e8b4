package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/aemxyz/internal/config"
	"github.com/KaramelBytes/aemxyz/internal/naming"
	"github.com/KaramelBytes/aemxyz/internal/projection"
	"github.com/KaramelBytes/aemxyz/internal/xyz"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set aemxyz configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "naming_standard: %s\n", c.NamingStandard)
		fmt.Fprintf(w, "project_crs: %d\n", c.ProjectCRS)
		fmt.Fprintf(w, "required_columns: %s\n", strings.Join(c.RequiredColumns, ", "))
		fmt.Fprintf(w, "layer_naming: %s\n", c.LayerNaming)
		fmt.Fprintf(w, "compact_layers: %t\n", c.CompactLayers)
		fmt.Fprintf(w, "encoding: %s\n", c.Encoding)
		if c.NamingTable != "" {
			fmt.Fprintf(w, "naming_table: %s\n", c.NamingTable)
		}
		fmt.Fprintf(w, "geojson_tolerance: %g\n", c.GeoJSONTolerance)
		fmt.Fprintf(w, "doi_upper: %g\n", c.DOIUpper)
		fmt.Fprintf(w, "doi_lower: %g\n", c.DOILower)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "naming_standard":
			t, err := naming.Default()
			if err != nil {
				return err
			}
			if !t.HasStandard(val) {
				return fmt.Errorf("invalid naming_standard: %s (known: %s)", val, strings.Join(t.Standards, ", "))
			}
			cfg.NamingStandard = val
		case "project_crs":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for project_crs: %v", val)
			}
			if i != 0 && !projection.Supported(i) {
				return fmt.Errorf("project_crs %d: %w", i, projection.ErrUnsupportedCRS)
			}
			cfg.ProjectCRS = i
		case "required_columns":
			var cols []string
			for _, c := range strings.Split(val, ",") {
				if c = strings.TrimSpace(c); c != "" {
					cols = append(cols, c)
				}
			}
			cfg.RequiredColumns = cols
		case "layer_naming":
			if _, err := xyz.ParseLayerNaming(val); err != nil {
				return err
			}
			cfg.LayerNaming = strings.ToLower(val)
		case "compact_layers":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for compact_layers: %w", err)
			}
			cfg.CompactLayers = b
		case "encoding":
			cfg.Encoding = val
		case "naming_table":
			if val != "" {
				if _, err := naming.LoadFile(val); err != nil {
					return err
				}
			}
			cfg.NamingTable = val
		case "geojson_tolerance", "doi_upper", "doi_lower":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for %s: %v", key, val)
			}
			switch key {
			case "geojson_tolerance":
				cfg.GeoJSONTolerance = f
			case "doi_upper":
				cfg.DOIUpper = f
			default:
				cfg.DOILower = f
			}
			if cfg.DOILower < cfg.DOIUpper {
				return fmt.Errorf("doi_lower (%g) must not be shallower than doi_upper (%g)", cfg.DOILower, cfg.DOIUpper)
			}
		default:
			return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(cfgpkg.Keys, ", "))
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
