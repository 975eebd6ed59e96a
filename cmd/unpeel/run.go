package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davesmith10/pngunpeel/internal/noise"
	"github.com/davesmith10/pngunpeel/internal/pipeline"
	"github.com/davesmith10/pngunpeel/internal/png"
	"github.com/davesmith10/pngunpeel/internal/report"
)

func runUnpeel(cmd *cobra.Command, opts *rootOptions, path string) error {
	cmd.SilenceUsage = true
	s, err := newSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.log.Sync()

	stdout := cmd.OutOrStdout()
	in, err := s.inspect(stdout, path)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(in.data, pipeline.Options{
		Noise:   s.cfg.Noise,
		Source:  noise.NewSource(s.cfg.Seed),
		Encoder: png.EncoderOptions{CompressionLevel: s.cfg.CompressionLevel},
		Logger:  s.log,
	})
	if err != nil {
		if ferr := s.finish(stdout, in); ferr != nil {
			s.log.Error("writing report", zap.Error(ferr))
		}
		return fmt.Errorf("processing %s: %w", path, err)
	}

	outputPath := pipeline.OutputPath(path)
	if err := os.WriteFile(outputPath, result.Data, 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	s.log.Info("wrote output",
		zap.String("path", outputPath),
		zap.Int("bytes", len(result.Data)),
		zap.Bool("noise", result.NoiseApplied))

	out := report.Output{
		Path:         outputPath,
		Bytes:        len(result.Data),
		NoiseApplied: result.NoiseApplied,
		Pixels:       result.Stats.Pixels,
		Changed:      result.Stats.Changed,
	}
	in.report.Output = &out
	if s.text() {
		in.printer.Output(out)
	}
	return s.finish(stdout, in)
}
