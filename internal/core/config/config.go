// Package config handles configuration loading and validation for redline.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/redline/internal/core/feedback"
)

// defaultDocumentGlobs are the document patterns reviewed when the config
// file does not name any.
var defaultDocumentGlobs = []string{
	"**/*.md",
	"**/*.txt",
}

// Config holds the application configuration.
type Config struct {
	// ContextDir is the directory holding reviewable documents.
	ContextDir string `yaml:"context_dir"`
	// Documents are doublestar glob patterns, relative to ContextDir,
	// selecting which files are reviewable.
	Documents []string     `yaml:"documents"`
	Review    ReviewConfig `yaml:"review"`
	DataDir   string       `yaml:"-"` // set by caller, not from config file
}

// ReviewConfig holds feedback-learning knobs.
type ReviewConfig struct {
	// RejectionThreshold is how many rejections in one category trigger
	// the alternative-suggestion signal.
	RejectionThreshold int `yaml:"rejection_threshold"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		ContextDir: ".",
		Documents:  append([]string(nil), defaultDocumentGlobs...),
		Review: ReviewConfig{
			RejectionThreshold: feedback.DefaultRejectionThreshold,
		},
	}
}

// Load reads the config file at path, merging defaults for anything left
// unset. A missing file is not an error; defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.Documents) == 0 {
		cfg.Documents = append([]string(nil), defaultDocumentGlobs...)
	}
	if cfg.Review.RejectionThreshold == 0 {
		cfg.Review.RejectionThreshold = feedback.DefaultRejectionThreshold
	}
	if cfg.ContextDir == "" {
		cfg.ContextDir = "."
	}

	return cfg, nil
}
