package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// NewLogger returns a JSON logger tagged with the component name. The level
// is read from SWAPVENUE_LOG_LEVEL; unset or unrecognized values mean info.
func NewLogger(component string) zerolog.Logger {
	level := zerolog.InfoLevel
	if raw := os.Getenv("SWAPVENUE_LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}
