package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/davesmith10/pngunpeel/internal/ir"
	"github.com/davesmith10/pngunpeel/internal/pipeline"
	"github.com/davesmith10/pngunpeel/internal/png"
)

func newEncodeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a raw pixel buffer and its YAML sidecar to PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, opts)
		},
	}
	cmd.Flags().StringP("input", "i", "", "Input raw pixel file")
	cmd.Flags().StringP("output", "o", "", "Output PNG file")
	cmd.Flags().String("meta", "", "Sidecar file (default: input with .yaml extension)")
	cmd.Flags().Int("compression", -1, "zlib level (-2..9, -1 = default)")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	return cmd
}

func runEncode(cmd *cobra.Command, opts *rootOptions) error {
	cmd.SilenceUsage = true
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	metaPath, _ := cmd.Flags().GetString("meta")
	level, _ := cmd.Flags().GetInt("compression")
	if metaPath == "" {
		metaPath = sidecarPath(inputPath)
	}

	s, err := newSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.log.Sync()
	if !cmd.Flags().Changed("compression") {
		level = s.cfg.CompressionLevel
	}

	pixels, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	metaData, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("reading sidecar: %w", err)
	}
	var meta pipeline.RawMeta
	if err := yaml.Unmarshal(metaData, &meta); err != nil {
		return fmt.Errorf("parsing sidecar: %w", err)
	}
	hdr, err := meta.Header()
	if err != nil {
		return fmt.Errorf("sidecar %s: %w", metaPath, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, &ir.Image{Header: hdr, Pixels: pixels}, png.EncoderOptions{CompressionLevel: level}); err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Encoded %dx%d %s → %s (%d bytes)\n", hdr.Width, hdr.Height, hdr.ColorType, outputPath, buf.Len())
	return nil
}
