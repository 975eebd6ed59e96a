package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/davesmith10/pngunpeel/internal/png"
)

// Report is the machine-readable form of a run, written with --format yaml.
type Report struct {
	RunID      string         `yaml:"run_id,omitempty"`
	File       FileInfo       `yaml:"file"`
	Image      *png.ImageInfo `yaml:"image,omitempty"`
	ImageError string         `yaml:"image_error,omitempty"`
	Chunks     []png.Entry    `yaml:"chunks"`
	Summary    png.Summary    `yaml:"summary"`
	Output     *Output        `yaml:"output,omitempty"`
}

// WriteYAML encodes r as a single YAML document.
func WriteYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}
