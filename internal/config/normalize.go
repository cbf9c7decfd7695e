package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeNaming()
	c.normalizePlacement()
	c.normalizeClassifier()
	return c.normalizeJournal()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if file := strings.TrimSpace(c.Logging.File); file != "" {
		if expanded, err := expandPath(file); err == nil {
			c.Logging.File = expanded
		}
	}
}

func (c *Config) normalizeNaming() {
	c.Naming.Policy = strings.ToLower(strings.TrimSpace(c.Naming.Policy))
	if c.Naming.Policy == "" {
		c.Naming.Policy = defaultNamingPolicy
	}
	c.Naming.Session = strings.TrimSpace(c.Naming.Session)
	if c.Naming.Session == "" {
		c.Naming.Session = defaultSession
	}
}

func (c *Config) normalizePlacement() {
	c.Placement.Method = strings.ToLower(strings.TrimSpace(c.Placement.Method))
	if c.Placement.Method == "" {
		c.Placement.Method = defaultMethod
	}
}

func (c *Config) normalizeClassifier() {
	if len(c.Classifier.ExtraSkipPatterns) == 0 {
		return
	}
	patterns := make([]string, 0, len(c.Classifier.ExtraSkipPatterns))
	seen := make(map[string]struct{}, len(c.Classifier.ExtraSkipPatterns))
	for _, pattern := range c.Classifier.ExtraSkipPatterns {
		trimmed := strings.TrimSpace(pattern)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		patterns = append(patterns, trimmed)
	}
	c.Classifier.ExtraSkipPatterns = patterns
}

func (c *Config) normalizeJournal() error {
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = filepath.Join(c.Paths.StateDir, defaultJournalName)
	}
	var err error
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}
