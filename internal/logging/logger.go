package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the optional log file.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 28
)

// Options configures New.
type Options struct {
	Level zapcore.Level
	// File, when set, receives JSON entries through a rotating writer.
	File string
	// Development enables caller annotations and coloured level names.
	Development bool
	// Console defaults to os.Stderr so log lines never mix with the report.
	Console io.Writer
}

// New builds a logger that writes human-readable lines to the console and,
// when opts.File is set, JSON lines to a lumberjack-rotated file.
func New(opts Options) *zap.Logger {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(ConsoleEncoderConfig(opts.Development)),
			zapcore.Lock(zapcore.AddSync(console)),
			opts.Level,
		),
	}
	if opts.File != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(FileEncoderConfig()),
			NewFileWriter(opts.File),
			opts.Level,
		))
	}

	var zopts []zap.Option
	if opts.Development {
		zopts = append(zopts, zap.AddCaller(), zap.Development())
	}
	return zap.New(zapcore.NewTee(cores...), zopts...)
}

// NewFileWriter returns a size-rotated, compressed log file writer.
func NewFileWriter(path string) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAgeDays,
		Compress:   true,
	})
}
