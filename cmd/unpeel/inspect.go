package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/davesmith10/pngunpeel/internal/config"
	"github.com/davesmith10/pngunpeel/internal/png"
	"github.com/davesmith10/pngunpeel/internal/report"
)

// inspection is the metadata half of a run: filesystem details, the image
// header and the chunk walk.
type inspection struct {
	data    []byte
	report  *report.Report
	printer *report.Printer
}

func (s *session) text() bool {
	return s.cfg.Format == config.FormatText
}

// inspect reads path and reports on it. Only a missing or unreadable file is
// an error; header and chunk problems are reported and logged.
func (s *session) inspect(stdout io.Writer, path string) (*inspection, error) {
	fi, err := report.Stat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	in := &inspection{
		data:    data,
		report:  &report.Report{RunID: s.runID, File: fi},
		printer: report.NewPrinter(stdout),
	}
	info, infoErr := png.GetInfo(data)
	if infoErr != nil {
		s.log.Warn("could not read image header", zap.String("path", path), zap.Error(infoErr))
		in.report.ImageError = infoErr.Error()
	}
	in.report.Image = info

	if s.text() {
		in.printer.File(fi)
		in.printer.Image(info, infoErr)
		in.printer.ChunksHeader()
	}
	sum, err := png.WalkFile(path, png.WalkOptions{Inflate: s.cfg.Inflate, Logger: s.log}, func(e png.Entry) {
		in.report.Chunks = append(in.report.Chunks, e)
		if s.text() {
			in.printer.Chunk(e)
		}
	})
	if err != nil {
		return nil, err
	}
	in.report.Summary = sum
	s.log.Debug("walked chunks",
		zap.Int("chunks", sum.Chunks),
		zap.Int("skipped", sum.Skipped),
		zap.Bool("truncated", sum.Truncated))

	if s.text() {
		in.printer.Summary(path, info, sum)
	}
	return in, nil
}

// finish writes the YAML report when that format is selected.
func (s *session) finish(stdout io.Writer, in *inspection) error {
	if s.text() {
		return nil
	}
	return report.WriteYAML(stdout, in.report)
}
