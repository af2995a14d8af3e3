package logger

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Configure initializes the global logger. Lambda captures stdout, so the
// output is always JSON; the level comes from LOG_LEVEL (default info).
func Configure(levelName string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil || levelName == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := log.With().Timestamp().Logger()
	log.Logger = logger

	return logger
}
