package log

import "fmt"

// Config captures the process-wide logging settings derived from flags or
// MOOR_LOG_LEVEL / MOOR_LOG_FORMAT.
type Config struct {
	Level  string
	Format string
}

// ApplyConfig builds a logger from a Config. Empty fields default to
// info/text.
func ApplyConfig(cfg *Config) (Logger, error) {
	level := InfoLevel
	if cfg.Level != "" {
		l, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}
	var formatter Formatter
	switch cfg.Format {
	case "", "text":
		formatter = &TextFormatter{}
	case "json":
		formatter = &JSONFormatter{}
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}
	return NewLogger(WithLevel(level), WithFormatter(formatter)), nil
}
