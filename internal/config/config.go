// Package config loads treetick's configuration file.
//
// The format is dnsmasq-style: one "option value" pair per line, "#"
// comments, and "[section]" headers scoping the options that follow:
//
//	log-level debug
//	tick-period 250ms
//
//	[blackboard]
//	activity-stream true
//
// Options are validated against [DefaultSchema]; problems become warnings
// rather than errors, so a stale config never prevents a run.
package config

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config is a parsed configuration file.
type Config struct {
	// Global holds the options before the first section header.
	Global map[string]string
	// Sections holds the options of each [section].
	Sections map[string]map[string]string
	// Warnings lists schema violations found while loading.
	Warnings []string
}

// NewConfig returns an empty configuration.
func NewConfig() *Config {
	return &Config{
		Global:   make(map[string]string),
		Sections: make(map[string]map[string]string),
	}
}

// Load loads the configuration from [Path].
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the configuration at path. A missing file yields an
// empty configuration. Symlinks are rejected.
func LoadFromPath(path string) (*Config, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewConfig(), nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("symlink not allowed in config path: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader parses a configuration.
func LoadFromReader(r io.Reader) (*Config, error) {
	c := NewConfig()
	scanner := bufio.NewScanner(r)

	var section string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(strings.Trim(line, "[]"))
			if c.Sections[section] == nil {
				c.Sections[section] = make(map[string]string)
			}
			continue
		}

		name, value, _ := strings.Cut(line, " ")
		value = strings.TrimSpace(value)
		if section == "" {
			c.Global[name] = value
		} else {
			c.Sections[section][name] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	for _, issue := range DefaultSchema().Validate(c) {
		c.addWarning("%s", issue)
	}
	return c, nil
}

func (c *Config) addWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.Warnings = append(c.Warnings, msg)
	slog.Warn("[Config] " + msg)
}

// parseBool accepts true, false, 1, 0, yes, no, on and off, in any case.
// A bare key (empty value) is true.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value: %s", s)
}

// GetGlobalOption returns a global option.
func (c *Config) GetGlobalOption(name string) (string, bool) {
	value, ok := c.Global[name]
	return value, ok
}

// GetSectionOption returns an option of section, falling back to the
// global option of the same name.
func (c *Config) GetSectionOption(section, name string) (string, bool) {
	if value, ok := c.Sections[section][name]; ok {
		return value, true
	}
	return c.GetGlobalOption(name)
}

// SetGlobalOption sets a global option.
func (c *Config) SetGlobalOption(name, value string) {
	c.Global[name] = value
}

// SetSectionOption sets an option of section.
func (c *Config) SetSectionOption(section, name, value string) {
	if c.Sections[section] == nil {
		c.Sections[section] = make(map[string]string)
	}
	c.Sections[section][name] = value
}

// HasWarnings reports whether loading produced warnings.
func (c *Config) HasWarnings() bool {
	return len(c.Warnings) > 0
}
