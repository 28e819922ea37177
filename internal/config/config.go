// Package config loads workspace-root configuration: source roots, cache
// directory, and primitive plugin paths, following cmd/nar/nar.go's flag
// set but sourced from an optional loom.toml with flag overrides, the
// cobra+pflag+viper combination the influxdata/influxdb example's CLI
// tooling uses.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the resolved configuration for one compiler invocation.
type Config struct {
	SourceRoots  []string `mapstructure:"source_roots"`
	CacheDir     string   `mapstructure:"cache_dir"`
	OutPath      string   `mapstructure:"out"`
	Release      bool     `mapstructure:"release"`
	Verbose      bool     `mapstructure:"verbose"`
	PluginPaths  []string `mapstructure:"plugin_paths"`
	DatabasePath string   `mapstructure:"database_path"`
}

// BindFlags registers the flags cmd/loomc exposes, mirroring
// cmd/nar/nar.go's -out/-cache/-release/-verbose family.
func BindFlags(flags *pflag.FlagSet) {
	flags.String("out", "build", "output artifact path")
	flags.String("cache", defaultCacheDir(), "compiler cache directory")
	flags.Bool("release", false, "strip debug info")
	flags.BoolP("verbose", "v", false, "verbose pass logging")
	flags.StringSlice("plugin-paths", nil, "primitive plugin search paths")
}

func defaultCacheDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".loomc")
	}
	return ".loomc-cache"
}

// Load reads an optional loom.toml from workspaceRoot, then applies flags
// as overrides, matching viper's file-then-flag precedence.
func Load(workspaceRoot string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigName("loom")
	v.SetConfigType("toml")
	v.AddConfigPath(workspaceRoot)
	v.SetDefault("cache_dir", defaultCacheDir())
	v.SetDefault("out", "build")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, errors.Wrap(err, "config: reading loom.toml")
		}
	}

	if err := v.BindPFlags(flags); err != nil {
		return nil, errors.Wrap(err, "config: binding flags")
	}
	// The file keys cache_dir/plugin_paths differ from their flag names.
	if err := v.BindPFlag("cache_dir", flags.Lookup("cache")); err != nil {
		return nil, errors.Wrap(err, "config: binding flags")
	}
	if err := v.BindPFlag("plugin_paths", flags.Lookup("plugin-paths")); err != nil {
		return nil, errors.Wrap(err, "config: binding flags")
	}

	cfg := &Config{}
	cfg.SourceRoots = v.GetStringSlice("source_roots")
	if len(cfg.SourceRoots) == 0 {
		cfg.SourceRoots = []string{workspaceRoot}
	}
	cfg.CacheDir = v.GetString("cache_dir")
	cfg.OutPath = v.GetString("out")
	cfg.Release = v.GetBool("release")
	cfg.Verbose = v.GetBool("verbose")
	cfg.PluginPaths = v.GetStringSlice("plugin_paths")
	if cfg.CacheDir != "" {
		cfg.DatabasePath = filepath.Join(cfg.CacheDir, "loomc.db")
	}
	return cfg, nil
}
