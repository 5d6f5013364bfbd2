// Package config handles loading and validating refsolve configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ConfigFileName is the name of the configuration file searched for in
// the working directory and the repository directory.
const ConfigFileName = ".refsolve.hcl"

// Config represents the refsolve configuration
type Config struct {
	Version int           `hcl:"version,attr"`
	Fetch   *FetchConfig  `hcl:"fetch,block"`
	Locks   *LocksConfig  `hcl:"locks,block"`
	Paths   *PathsConfig  `hcl:"paths,block"`
	Output  *OutputConfig `hcl:"output,block"`

	// Internal: path to the loaded config file (empty if using defaults)
	configPath string
}

// FetchConfig defines fetch retry settings
type FetchConfig struct {
	Remote      string `hcl:"remote,optional"`
	MaxAttempts int    `hcl:"max_attempts,optional"`
	BackoffBase string `hcl:"backoff_base,optional"`
	Timeout     string `hcl:"timeout,optional"`
}

// LocksConfig defines stale lock cleanup settings
type LocksConfig struct {
	Enabled *bool  `hcl:"enabled,optional"`
	MinAge  string `hcl:"min_age,optional"`
}

// PathsConfig defines path filtering settings applied to diff results
type PathsConfig struct {
	Include []string `hcl:"include,optional"`
	Exclude []string `hcl:"exclude,optional"`
}

// OutputConfig defines output settings
type OutputConfig struct {
	Format string `hcl:"format,optional"`
	Color  string `hcl:"color,optional"`
}

// ConfigPath returns the path to the loaded config file, or empty if using defaults
func (c *Config) ConfigPath() string {
	return c.configPath
}

// BackoffBase returns the parsed backoff base delay.
func (c *Config) BackoffBase() time.Duration {
	d, _ := time.ParseDuration(c.Fetch.BackoffBase)
	return d
}

// FetchTimeout returns the parsed per-attempt fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Fetch.Timeout)
	return d
}

// LockMinAge returns the parsed minimum lock age.
func (c *Config) LockMinAge() time.Duration {
	d, _ := time.ParseDuration(c.Locks.MinAge)
	return d
}

// LocksEnabled returns whether stale lock cleanup is enabled
func (c *Config) LocksEnabled() bool {
	if c.Locks == nil || c.Locks.Enabled == nil {
		return true // enabled by default
	}
	return *c.Locks.Enabled
}

// Load loads configuration from the specified path or searches for it.
// Search order: configPath (if provided), .refsolve.hcl in cwd, .refsolve.hcl in repoDir
func Load(configPath, repoDir string) (*Config, error) {
	var path string

	if configPath != "" {
		// Explicit path provided
		path = configPath
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
	} else {
		// Search for config file
		path = findConfigFile(repoDir)
	}

	if path == "" {
		// No config found, use defaults
		return Default(), nil
	}

	return loadFromFile(path)
}

// findConfigFile searches for .refsolve.hcl in standard locations
func findConfigFile(repoDir string) string {
	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdPath := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(cwdPath); err == nil {
			return cwdPath
		}
	}

	// Check repository directory
	if repoDir != "" {
		repoPath := filepath.Join(repoDir, ConfigFileName)
		if _, err := os.Stat(repoPath); err == nil {
			return repoPath
		}
	}

	return ""
}

// loadFromFile loads and parses a configuration file
func loadFromFile(path string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", formatDiagnostics(diags))
	}

	var config Config
	decodeDiags := gohcl.DecodeBody(file.Body, nil, &config)
	if decodeDiags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config: %s", formatDiagnostics(decodeDiags))
	}

	config.configPath = path

	// Apply defaults for missing optional blocks
	applyDefaults(&config)

	// Validate
	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// formatDiagnostics formats HCL diagnostics into a readable error string
func formatDiagnostics(diags hcl.Diagnostics) string {
	if len(diags) == 0 {
		return ""
	}

	var b strings.Builder
	for i, diag := range diags {
		if i > 0 {
			b.WriteString("; ")
		}
		if diag.Subject != nil {
			fmt.Fprintf(&b, "%s:%d: ", diag.Subject.Filename, diag.Subject.Start.Line)
		}
		b.WriteString(diag.Summary)
		if diag.Detail != "" {
			b.WriteString(": ")
			b.WriteString(diag.Detail)
		}
	}
	return b.String()
}

// applyDefaults fills in default values for missing optional config blocks
func applyDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Fetch == nil {
		cfg.Fetch = defaults.Fetch
	} else {
		if cfg.Fetch.Remote == "" {
			cfg.Fetch.Remote = defaults.Fetch.Remote
		}
		if cfg.Fetch.MaxAttempts == 0 {
			cfg.Fetch.MaxAttempts = defaults.Fetch.MaxAttempts
		}
		if cfg.Fetch.BackoffBase == "" {
			cfg.Fetch.BackoffBase = defaults.Fetch.BackoffBase
		}
		if cfg.Fetch.Timeout == "" {
			cfg.Fetch.Timeout = defaults.Fetch.Timeout
		}
	}

	if cfg.Locks == nil {
		cfg.Locks = defaults.Locks
	} else if cfg.Locks.MinAge == "" {
		cfg.Locks.MinAge = defaults.Locks.MinAge
	}

	if cfg.Paths == nil {
		cfg.Paths = defaults.Paths
	} else if len(cfg.Paths.Include) == 0 {
		cfg.Paths.Include = defaults.Paths.Include
	}

	if cfg.Output == nil {
		cfg.Output = defaults.Output
	} else {
		if cfg.Output.Format == "" {
			cfg.Output.Format = defaults.Output.Format
		}
		if cfg.Output.Color == "" {
			cfg.Output.Color = defaults.Output.Color
		}
	}
}
