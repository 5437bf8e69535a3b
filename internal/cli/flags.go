package cli

import (
	"fmt"
	"strings"

	"github.com/morozRed/overloadts/internal/config"
	"github.com/morozRed/overloadts/internal/logging"
	"github.com/spf13/cobra"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return false, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// loadConfig reads the project configuration (the --config file, or the
// one discovered from rootPath) and applies flag overrides on top.
func loadConfig(cmd *cobra.Command, rootPath string) (*config.Config, error) {
	path, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.Discover(rootPath)
	}
	if err != nil {
		return nil, err
	}

	for _, o := range []struct {
		flag  string
		dst   *string
		lower bool
	}{
		{"log-level", &cfg.LogLevel, true},
		{"match", &cfg.Match, true},
		{"out", &cfg.OutDir, false},
		{"operator-module", &cfg.OperatorModule, false},
	} {
		if cmd.Flags().Lookup(o.flag) == nil || !cmd.Flags().Changed(o.flag) {
			continue
		}
		value, err := OptionalStringFlag(cmd, o.flag)
		if err != nil {
			return nil, err
		}
		if o.lower {
			value = strings.ToLower(value)
		}
		*o.dst = value
	}

	for _, o := range []struct {
		flag string
		dst  *bool
	}{
		{"warnings-as-errors", &cfg.WarningsAsErrors},
		{"source-map", &cfg.SourceMaps},
	} {
		if cmd.Flags().Lookup(o.flag) == nil || !cmd.Flags().Changed(o.flag) {
			continue
		}
		value, err := OptionalBoolFlag(cmd, o.flag)
		if err != nil {
			return nil, err
		}
		*o.dst = value
	}

	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(cmd.ErrOrStderr(), level), nil
}
