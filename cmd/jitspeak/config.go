package main

import (
	"log/slog"
	"os"

	"github.com/pboyd/jitspeak/internal/diag"
)

// levelEnv names the environment variable holding the minimum log level,
// e.g. "debug" or "error".
const levelEnv = "JITSPEAK_LOG_LEVEL"

func newLogger() *slog.Logger {
	return diag.New(os.Stdout, os.Stderr, diag.WithLevel(logLevel(os.Getenv(levelEnv))))
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if s == "" || level.UnmarshalText([]byte(s)) != nil {
		return slog.LevelInfo
	}
	return level
}
