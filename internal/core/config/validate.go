package config

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration
// including sender glob syntax and file accessibility. The configPath
// argument specifies the config file location to validate (empty string
// skips the config file check). This calls Validate() first for basic
// structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		validatePatterns("vip_senders", c.VIPSenders),
		validatePatterns("muted_senders", c.MutedSenders),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	muted := make(map[string]bool, len(c.MutedSenders))
	for _, p := range c.MutedSenders {
		muted[p] = true
	}
	for _, p := range c.VIPSenders {
		if muted[p] {
			warnings = append(warnings, ValidationWarning{
				Category: "Senders",
				Item:     p,
				Message:  "pattern is both vip and muted; mute wins",
			})
		}
	}

	if c.RetentionDays > 365 {
		warnings = append(warnings, ValidationWarning{
			Category: "Retention",
			Message:  fmt.Sprintf("retention_days of %d keeps handled-item records for over a year", c.RetentionDays),
		})
	}

	return warnings
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
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

// validatePatterns checks that sender globs are valid doublestar patterns.
func validatePatterns(field string, patterns []string) error {
	var errs criterio.FieldErrorsBuilder
	for i, p := range patterns {
		if p == "" {
			errs = errs.Append(fmt.Sprintf("%s[%d]", field, i), fmt.Errorf("pattern cannot be empty"))
			continue
		}
		if !doublestar.ValidatePattern(p) {
			errs = errs.Append(fmt.Sprintf("%s[%d]", field, i), fmt.Errorf("invalid glob pattern %q", p))
		}
	}
	return errs.ToError()
}

// MatchesAny reports whether the sender matches any of the given patterns.
// Invalid patterns never match; they are caught by ValidateDeep.
func MatchesAny(patterns []string, sender string) bool {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, sender)
		if err == nil && ok {
			return true
		}
	}
	return false
}
