package main

import (
	"io"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/davesmith10/pngunpeel/internal/config"
	"github.com/davesmith10/pngunpeel/internal/logging"
)

// settings resolves the configuration for this invocation: .env, the YAML
// file and UNPEEL_* variables, then any flag given on the command line.
func (o *rootOptions) settings(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.logFile
	}
	if flags.Changed("format") {
		cfg.Format = o.format
	}
	if flags.Changed("inflate") {
		cfg.Inflate = o.inflate
	}
	if flags.Changed("no-color") {
		cfg.Color = !o.noColor
	}
	// seed, no-noise and compression belong to the root command only;
	// subcommands may define their own flags under the same names.
	if !cmd.HasParent() {
		if flags.Changed("seed") {
			cfg.Seed = o.seed
		}
		if flags.Changed("no-noise") {
			cfg.Noise = !o.noNoise
		}
		if flags.Changed("compression") {
			cfg.CompressionLevel = o.compression
		}
	}
	return cfg, cfg.Validate()
}

// newLogger builds the run's logger on stderr, tagged with runID.
func newLogger(stderr io.Writer, cfg config.Config, runID string) *zap.Logger {
	level, _ := logging.ParseLevel(cfg.LogLevel, zapcore.WarnLevel)
	log := logging.New(logging.Options{
		Level:       level,
		File:        cfg.LogFile,
		Development: level == zapcore.DebugLevel && cfg.Color,
		Console:     stderr,
	})
	return log.With(zap.String("run_id", runID))
}

// session is the state shared by the root command and identify.
type session struct {
	cfg   config.Config
	log   *zap.Logger
	runID string
}

func newSession(cmd *cobra.Command, opts *rootOptions) (*session, error) {
	cfg, err := opts.settings(cmd)
	if err != nil {
		return nil, err
	}
	if !cfg.Color {
		color.NoColor = true
	}
	runID := uuid.NewString()
	return &session{cfg: cfg, log: newLogger(cmd.ErrOrStderr(), cfg, runID), runID: runID}, nil
}
