package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// Environment variables read by Merge.
const (
	EnvServer  = "KVMESH_SERVER"
	EnvOutput  = "KVMESH_OUTPUT"
	EnvTimeout = "KVMESH_TIMEOUT"
)

func defaultPath(name string) string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".kvmesh", name)
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return defaultPath("cli.yaml")
}

// Load loads CLI configuration from file. A missing file yields the
// defaults.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Servers == nil {
		cfg.Servers = make(map[string]string)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Merge overrides cfg with environment variables, then with flags. Empty
// values are ignored. Recognized flag keys are server, output and timeout.
func Merge(cfg *CLIConfig, env map[string]string, flags map[string]string) (*CLIConfig, error) {
	out := *cfg
	apply := func(server, output, timeout string) error {
		if server != "" {
			out.DefaultServer = server
		}
		if output != "" {
			out.DefaultOutput = output
		}
		if timeout != "" {
			d, err := time.ParseDuration(timeout)
			if err != nil {
				return fmt.Errorf("invalid timeout %q: %w", timeout, err)
			}
			out.Timeout = d
		}
		return nil
	}

	if err := apply(env[EnvServer], env[EnvOutput], env[EnvTimeout]); err != nil {
		return nil, err
	}
	if err := apply(flags["server"], flags["output"], flags["timeout"]); err != nil {
		return nil, err
	}
	return &out, nil
}

// Environ returns the KVMESH_* variables Merge reads from the process
// environment.
func Environ() map[string]string {
	env := make(map[string]string)
	for _, k := range []string{EnvServer, EnvOutput, EnvTimeout} {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}
	return env
}
