package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Settings are the resolved, typed options.
type Settings struct {
	LogLevel           slog.Level
	TickPeriod         time.Duration
	MaxTicks           int
	Color              string
	ActivityStream     bool
	ActivityStreamSize int
}

// Settings resolves every option of [DefaultSchema] against c and the
// environment. Unlike loading, an invalid value is an error here.
func (c *Config) Settings() (Settings, error) {
	s := DefaultSchema()
	var (
		out  Settings
		errs []string
	)
	resolve := func(section, key string) string {
		value := s.Resolve(c, section, key)
		opt, _ := s.Lookup(section, key)
		if err := opt.check(value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return value
	}

	if err := out.LogLevel.UnmarshalText([]byte(resolve("", KeyLogLevel))); err != nil {
		out.LogLevel = slog.LevelInfo
	}
	out.TickPeriod, _ = time.ParseDuration(resolve("", KeyTickPeriod))
	out.MaxTicks, _ = strconv.Atoi(resolve("", KeyMaxTicks))
	out.Color = strings.ToLower(resolve("", KeyColor))
	out.ActivityStream, _ = parseBool(resolve(SectionBlackboard, KeyActivityStream))
	out.ActivityStreamSize, _ = strconv.Atoi(resolve(SectionBlackboard, KeyActivityStreamSize))

	if len(errs) > 0 {
		return out, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	if out.TickPeriod <= 0 {
		return out, fmt.Errorf("invalid configuration: %s must be positive", KeyTickPeriod)
	}
	return out, nil
}
