package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a case-insensitive level name to a zap level. ok is false
// for anything unrecognised, in which case def is returned.
func ParseLevel(s string, def zapcore.Level) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	case "":
		return def, true
	}
	return def, false
}
