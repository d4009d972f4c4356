package config

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// Validate performs structural validation of the configuration.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("context_dir", c.ContextDir, isDirectoryOrNotExist),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		c.validateDocumentGlobs(),
		c.validateReview(),
	)
}

// validateDocumentGlobs checks that every document pattern is a valid
// doublestar glob.
func (c *Config) validateDocumentGlobs() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.Documents {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("documents[%d]", i), fmt.Errorf("invalid glob pattern %q", pattern))
		}
	}
	return errs.ToError()
}

func (c *Config) validateReview() error {
	if c.Review.RejectionThreshold < 1 {
		return criterio.NewFieldErrors("review.rejection_threshold",
			fmt.Errorf("must be at least 1, got %d", c.Review.RejectionThreshold))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
