package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

const fileName = ".sentinel.yaml"

// fileConfig is the raw YAML shape; durations are whole seconds to keep
// the file format simple.
type fileConfig struct {
	TimeoutSeconds         int      `yaml:"timeout_seconds"`
	PerEntryTimeoutSeconds int      `yaml:"per_entry_timeout_seconds"`
	Exclude                []string `yaml:"exclude"`
	Ports                  []int    `yaml:"ports"`
	SafeMode               bool     `yaml:"safe_mode"`
}

// YAMLLoader implements domain.ConfigLoader by reading .sentinel.yaml
// from the target project.
type YAMLLoader struct{}

func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .sentinel.yaml from projectPath. A missing file yields the
// defaults; explicit values overlay them.
func (l *YAMLLoader) Load(projectPath string) (domain.AnalysisConfig, error) {
	cfg := domain.DefaultAnalysisConfig()

	data, err := os.ReadFile(filepath.Join(projectPath, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return domain.AnalysisConfig{}, err
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.AnalysisConfig{}, fmt.Errorf("parsing %s: %w", fileName, err)
	}

	if raw.TimeoutSeconds > 0 {
		cfg.GlobalDeadline = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if raw.PerEntryTimeoutSeconds > 0 {
		cfg.PerEntryTimeout = time.Duration(raw.PerEntryTimeoutSeconds) * time.Second
	}
	if len(raw.Exclude) > 0 {
		cfg.ExcludePatterns = raw.Exclude
	}
	if len(raw.Ports) > 0 {
		cfg.Ports = raw.Ports
	}
	cfg.SafeMode = cfg.SafeMode || raw.SafeMode

	if err := cfg.Validate(); err != nil {
		return domain.AnalysisConfig{}, fmt.Errorf("invalid %s: %w", fileName, err)
	}
	return cfg, nil
}
