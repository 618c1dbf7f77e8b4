package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	NamingStandard  string   `mapstructure:"naming_standard" yaml:"naming_standard"`
	ProjectCRS      int      `mapstructure:"project_crs" yaml:"project_crs"`
	RequiredColumns []string `mapstructure:"required_columns" yaml:"required_columns"`
	LayerNaming     string   `mapstructure:"layer_naming" yaml:"layer_naming"`
	CompactLayers   bool     `mapstructure:"compact_layers" yaml:"compact_layers"`
	Encoding        string   `mapstructure:"encoding" yaml:"encoding"`
	// Optional YAML file replacing the built-in naming table.
	NamingTable      string  `mapstructure:"naming_table" yaml:"naming_table"`
	GeoJSONTolerance float64 `mapstructure:"geojson_tolerance" yaml:"geojson_tolerance"`
	DOIUpper         float64 `mapstructure:"doi_upper" yaml:"doi_upper"`
	DOILower         float64 `mapstructure:"doi_lower" yaml:"doi_lower"`
}

// Keys lists the settable configuration keys.
var Keys = []string{
	"naming_standard", "project_crs", "required_columns", "layer_naming", "compact_layers",
	"encoding", "naming_table", "geojson_tolerance", "doi_upper", "doi_lower",
}

func dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".aemxyz"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.aemxyz/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		d, err := dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(d, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("AEMXYZ")
	v.AutomaticEnv()

	v.SetDefault("naming_standard", "libaarhusxyz")
	v.SetDefault("project_crs", 0)
	v.SetDefault("required_columns", []string{"resdata", "restotal", "numdata"})
	v.SetDefault("layer_naming", "underscore")
	v.SetDefault("compact_layers", false)
	v.SetDefault("encoding", "utf-8")
	v.SetDefault("naming_table", "")
	v.SetDefault("geojson_tolerance", 0.0)
	v.SetDefault("doi_upper", 300.0)
	v.SetDefault("doi_lower", 500.0)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		d, err := dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(d)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.DOILower < c.DOIUpper {
		return nil, fmt.Errorf("doi_lower (%g) must not be shallower than doi_upper (%g)", c.DOILower, c.DOIUpper)
	}
	return &c, nil
}
