package domain

import (
	"fmt"
	"time"
)

const (
	// DefaultGlobalDeadline bounds the whole run across all entry points.
	DefaultGlobalDeadline = 120 * time.Second

	// DefaultPerEntryTimeout bounds a single entry point's subprocess.
	DefaultPerEntryTimeout = 10 * time.Second
)

// DefaultProbePorts are the ports dialed when probing a server-style
// entry point for liveness.
var DefaultProbePorts = []int{3000, 5000, 8000, 8080}

// AnalysisConfig is the resolved configuration for one analysis run,
// merged from .sentinel.yaml and command-line flags (flags win).
type AnalysisConfig struct {
	GlobalDeadline  time.Duration `yaml:"-" json:"global_deadline_ms"`
	PerEntryTimeout time.Duration `yaml:"-" json:"per_entry_timeout_ms"`
	ExcludePatterns []string      `yaml:"exclude" json:"exclude_patterns,omitempty"`
	Ports           []int         `yaml:"ports" json:"ports,omitempty"`
	SafeMode        bool          `yaml:"safe_mode" json:"safe_mode,omitempty"`
}

// DefaultAnalysisConfig returns the configuration used when neither a
// config file nor flags override anything.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		GlobalDeadline:  DefaultGlobalDeadline,
		PerEntryTimeout: DefaultPerEntryTimeout,
		Ports:           DefaultProbePorts,
	}
}

// Validate rejects configurations that cannot drive a run.
func (c AnalysisConfig) Validate() error {
	if c.GlobalDeadline <= 0 {
		return fmt.Errorf("global deadline must be positive, got %s", c.GlobalDeadline)
	}
	if c.PerEntryTimeout <= 0 {
		return fmt.Errorf("per-entry timeout must be positive, got %s", c.PerEntryTimeout)
	}
	for _, p := range c.Ports {
		if p < 1 || p > 65535 {
			return fmt.Errorf("invalid probe port %d", p)
		}
	}
	return nil
}
