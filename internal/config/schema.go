package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// OptionType is the expected type of an option value.
type OptionType string

const (
	TypeString   OptionType = "string"
	TypeBool     OptionType = "bool"
	TypeInt      OptionType = "int"
	TypeDuration OptionType = "duration"
	// TypeEnum is a string restricted to Option.Values.
	TypeEnum OptionType = "enum"
)

// Option declares a configuration option.
type Option struct {
	// Key is the option name as written in the file (kebab-case).
	Key string
	// Section is "" for global options.
	Section     string
	Type        OptionType
	Values      []string
	Default     string
	Description string
	// EnvVar, if set, overrides the file.
	EnvVar string
}

type optionKey struct{ section, key string }

// Schema is the set of known options, in registration order.
type Schema struct {
	options []Option
	index   map[optionKey]int
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{index: make(map[optionKey]int)}
}

// Register adds options, replacing any earlier option with the same
// section and key.
func (s *Schema) Register(opts ...Option) {
	for _, opt := range opts {
		k := optionKey{opt.Section, opt.Key}
		if i, ok := s.index[k]; ok {
			s.options[i] = opt
			continue
		}
		s.index[k] = len(s.options)
		s.options = append(s.options, opt)
	}
}

// Lookup returns the option declared for key in section.
func (s *Schema) Lookup(section, key string) (Option, bool) {
	i, ok := s.index[optionKey{section, key}]
	if !ok {
		return Option{}, false
	}
	return s.options[i], true
}

// Options returns the options of section ("" for global).
func (s *Schema) Options(section string) []Option {
	var out []Option
	for _, o := range s.options {
		if o.Section == section {
			out = append(out, o)
		}
	}
	return out
}

// Sections returns the named sections, sorted.
func (s *Schema) Sections() []string {
	var out []string
	for _, o := range s.options {
		if o.Section != "" {
			out = append(out, o.Section)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Resolve returns the effective value of an option: its environment
// variable if set, else the file, else the default.
func (s *Schema) Resolve(c *Config, section, key string) string {
	opt, known := s.Lookup(section, key)
	if known && opt.EnvVar != "" {
		if v, ok := os.LookupEnv(opt.EnvVar); ok {
			return v
		}
	}
	if c != nil {
		values := c.Global
		if section != "" {
			values = c.Sections[section]
		}
		if v, ok := values[key]; ok {
			return v
		}
	}
	return opt.Default
}

// Validate returns the unknown options and type mismatches in c, sorted.
func (s *Schema) Validate(c *Config) []string {
	var issues []string
	check := func(section, key, value string) {
		opt, ok := s.Lookup(section, key)
		if !ok {
			where := "global option"
			if section != "" {
				where = fmt.Sprintf("option in [%s]", section)
			}
			issues = append(issues, fmt.Sprintf("unknown %s: %q (value: %q)", where, key, value))
			return
		}
		if err := opt.check(value); err != nil {
			issues = append(issues, fmt.Sprintf("option %q: %v", key, err))
		}
	}
	for key, value := range c.Global {
		check("", key, value)
	}
	for section, opts := range c.Sections {
		for key, value := range opts {
			check(section, key, value)
		}
	}
	slices.Sort(issues)
	return issues
}

func (o Option) check(value string) error {
	switch o.Type {
	case TypeString, "":
	case TypeBool:
		if _, err := parseBool(value); err != nil {
			return fmt.Errorf("expected bool, got %q", value)
		}
	case TypeInt:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("expected int, got %q", value)
		}
	case TypeDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("expected duration, got %q", value)
		}
	case TypeEnum:
		if !slices.Contains(o.Values, strings.ToLower(value)) {
			return fmt.Errorf("expected one of %s, got %q", strings.Join(o.Values, ", "), value)
		}
	default:
		return fmt.Errorf("unknown option type %q", o.Type)
	}
	return nil
}

// FormatHelp describes every option, global options first.
func (s *Schema) FormatHelp() string {
	var b strings.Builder
	write := func(o Option) {
		fmt.Fprintf(&b, "  %-24s %s", o.Key, o.Description)
		var parts []string
		switch o.Type {
		case TypeString, "":
		case TypeEnum:
			parts = append(parts, "one of: "+strings.Join(o.Values, ", "))
		default:
			parts = append(parts, "type: "+string(o.Type))
		}
		if o.Default != "" {
			parts = append(parts, "default: "+o.Default)
		}
		if o.EnvVar != "" {
			parts = append(parts, "env: "+o.EnvVar)
		}
		if len(parts) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
		}
		b.WriteByte('\n')
	}
	b.WriteString("Global Options:\n")
	for _, o := range s.Options("") {
		write(o)
	}
	for _, section := range s.Sections() {
		fmt.Fprintf(&b, "\n[%s] Options:\n", section)
		for _, o := range s.Options(section) {
			write(o)
		}
	}
	return b.String()
}

// Option keys.
const (
	KeyLogLevel           = "log-level"
	KeyTickPeriod         = "tick-period"
	KeyMaxTicks           = "max-ticks"
	KeyColor              = "color"
	SectionBlackboard     = "blackboard"
	KeyActivityStream     = "activity-stream"
	KeyActivityStreamSize = "activity-stream-size"
)

// DefaultSchema declares every treetick option.
func DefaultSchema() *Schema {
	s := NewSchema()
	s.Register(
		Option{Key: KeyLogLevel, Type: TypeEnum, Values: []string{"debug", "info", "warn", "error"}, Default: "info", Description: "Minimum level of log output", EnvVar: "TREETICK_LOG_LEVEL"},
		Option{Key: KeyTickPeriod, Type: TypeDuration, Default: "500ms", Description: "Time between ticks of a running tree", EnvVar: "TREETICK_TICK_PERIOD"},
		Option{Key: KeyMaxTicks, Type: TypeInt, Default: "0", Description: "Stop after this many ticks, 0 for no limit"},
		Option{Key: KeyColor, Type: TypeEnum, Values: []string{"auto", "always", "never"}, Default: "auto", Description: "Colour mode", EnvVar: "TREETICK_COLOR"},
		Option{Key: KeyActivityStream, Section: SectionBlackboard, Type: TypeBool, Default: "false", Description: "Record blackboard activity"},
		Option{Key: KeyActivityStreamSize, Section: SectionBlackboard, Type: TypeInt, Default: "500", Description: "Maximum number of recorded activity items"},
	)
	return s
}
