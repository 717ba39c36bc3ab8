// Package config resolves the logger and cache directory used by the
// cachearchive CLI commands from flags, environment variables, and an
// optional config file.
package config

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	hclog "github.com/hashicorp/go-hclog"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/adrg/xdg"
	"github.com/tomheaton/turbo/internal/turbopath"
)

// EnvLogLevel is the environment variable used to set the log level when
// the -v/-vv/-vvv flags aren't passed.
const EnvLogLevel = "CACHEARCHIVE_LOG_LEVEL"

// Config carries the resolved settings shared by the pack and restore
// subcommands.
type Config struct {
	Logger hclog.Logger
	// CacheDir is where pack writes archives by default, when it isn't
	// given an [out] path.
	CacheDir turbopath.AbsoluteSystemPath
	// Verbosity is the hclog level selected by -v/-vv/-vvv or EnvLogLevel.
	Verbosity hclog.Level
}

// New resolves a Config from the process environment, a "cachearchive"
// viper config file (searched for in the current directory, $HOME, and the
// XDG config home), and the -v/-vv/-vvv verbosity flags already parsed by
// the caller (cobra/pflag own flag parsing; this package only interprets
// the resulting integer).
func New(verbosityFlagCount int, appName string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("cachearchive")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(xdg.ConfigHome)
	v.SetEnvPrefix("CACHEARCHIVE")
	v.AutomaticEnv()
	v.SetDefault("cache_dir", defaultCacheDir())

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	level := levelFromVerbosity(verbosityFlagCount)
	if level == hclog.NoLevel {
		if envLevel := os.Getenv(EnvLogLevel); envLevel != "" {
			level = hclog.LevelFromString(envLevel)
			if level == hclog.NoLevel {
				return nil, fmt.Errorf("%s value %q is not a valid log level", EnvLogLevel, envLevel)
			}
		}
	}

	var output io.Writer = ioutil.Discard
	color := hclog.ColorOff
	if level != hclog.NoLevel {
		output = os.Stderr
		color = hclog.AutoColor
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   appName,
		Level:  level,
		Color:  color,
		Output: output,
	})

	return &Config{
		Logger:    logger,
		CacheDir:  turbopath.AbsoluteSystemPathFromUpstream(v.GetString("cache_dir")),
		Verbosity: level,
	}, nil
}

func levelFromVerbosity(count int) hclog.Level {
	switch {
	case count >= 3:
		return hclog.Trace
	case count == 2:
		return hclog.Debug
	case count == 1:
		return hclog.Info
	default:
		return hclog.NoLevel
	}
}

func defaultCacheDir() string {
	if home, err := homedir.Dir(); err == nil {
		return filepath.Join(home, ".cache", "cachearchive")
	}
	return filepath.Join(xdg.CacheHome, "cachearchive")
}
