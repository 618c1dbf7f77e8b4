package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/aemxyz/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "aemxyz",
	Short: "aemxyz: read, normalize and export Aarhus Workbench XYZ surveys",
	Long: `aemxyz parses airborne electromagnetic survey data in the Aarhus Workbench XYZ format
together with its ALC, GEX and SR2 companions, normalizes it onto one canonical schema and
writes it back as XYZ or exports it to GeoJSON, msgpack, VTK and SQLite.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.aemxyz/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadConfig() {
	if l, err := newLogger(debug); err == nil {
		log = l
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	log.Debug("config loaded",
		zap.String("naming_standard", cfg.NamingStandard),
		zap.Int("project_crs", cfg.ProjectCRS))
}
