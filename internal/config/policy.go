package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPolicyFile is the policy file name searched for when no
// explicit path is given.
const DefaultPolicyFile = ".linkprune"

// ErrPolicyNotFound is returned when a policy file does not exist.
var ErrPolicyNotFound = errors.New("policy file not found")

// Duration wraps time.Duration so the policy file can spell timeouts
// the Go way ("10s", "1m30s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// PolicyFile is the on-disk YAML policy. Every field is optional;
// anything unset falls back to the built-in default, and CLI flags
// override the file.
type PolicyFile struct {
	// MaxWorkers overrides the probe pool size.
	MaxWorkers int `yaml:"maxWorkers,omitempty"`

	// Timeout overrides the per-probe timeout.
	Timeout Duration `yaml:"timeout,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Proxy routes probes through a SOCKS5 proxy ("host:port").
	Proxy string `yaml:"proxy,omitempty"`

	// KeepStatuses lists extra HTTP status codes that keep a bookmark,
	// in addition to the built-in policy. Statuses can only be added,
	// never removed.
	KeepStatuses []int `yaml:"keepStatuses,omitempty"`
}

// LoadPolicyFile reads and parses a policy file. A missing file is
// reported as ErrPolicyNotFound so callers can distinguish "no file" from
// a broken one.
func LoadPolicyFile(path string) (*PolicyFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional.
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPolicyNotFound
		}
		return nil, err
	}

	var pf PolicyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	return &pf, nil
}

// FindPolicyFile locates the policy file to use. Search order:
//
//  1. the explicit path, if given
//  2. .linkprune in the working directory
//  3. .linkprune in the home directory
//  4. config.yaml in the XDG config directory
//
// Returns "" when nothing is found.
func FindPolicyFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultPolicyFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultPolicyFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	candidate := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// Apply merges the policy file into cfg. Only set fields override.
func (pf *PolicyFile) Apply(cfg *Config) {
	if pf.MaxWorkers > 0 {
		cfg.MaxWorkers = pf.MaxWorkers
	}
	if pf.Timeout > 0 {
		cfg.Timeout = time.Duration(pf.Timeout)
	}
	if pf.UserAgent != "" {
		cfg.UserAgent = pf.UserAgent
	}
	if pf.Proxy != "" {
		cfg.ProxyAddr = pf.Proxy
	}
	if len(pf.KeepStatuses) > 0 {
		cfg.KeepStatuses = append(cfg.KeepStatuses, pf.KeepStatuses...)
	}
}
