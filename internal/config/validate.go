package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validatePlacement(); err != nil {
		return err
	}
	return c.validateClassifier()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateNaming() error {
	if !ValidNamingPolicy(c.Naming.Policy) {
		return fmt.Errorf("naming.policy must be preserve, custom, or bids, got %q", c.Naming.Policy)
	}
	if strings.ContainsAny(c.Naming.Session, `/\`) {
		return fmt.Errorf("naming.session must not contain path separators, got %q", c.Naming.Session)
	}
	return nil
}

func (c *Config) validatePlacement() error {
	if !ValidMethod(c.Placement.Method) {
		return fmt.Errorf("placement.method must be copy, link, or symlink, got %q", c.Placement.Method)
	}
	return nil
}

func (c *Config) validateClassifier() error {
	for _, pattern := range c.Classifier.ExtraSkipPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("classifier.extra_skip_patterns: invalid pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// ValidNamingPolicy reports whether value names a supported naming policy.
func ValidNamingPolicy(value string) bool {
	switch value {
	case NamingPreserve, NamingCustom, NamingBIDS:
		return true
	}
	return false
}

// ValidMethod reports whether value names a supported materialization method.
func ValidMethod(value string) bool {
	switch value {
	case MethodCopy, MethodLink, MethodSymlink:
		return true
	}
	return false
}
