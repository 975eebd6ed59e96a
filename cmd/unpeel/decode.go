package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/davesmith10/pngunpeel/internal/noise"
	"github.com/davesmith10/pngunpeel/internal/pipeline"
	"github.com/davesmith10/pngunpeel/internal/png"
)

func newDecodeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a PNG to a raw pixel buffer plus YAML sidecar",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, opts)
		},
	}
	cmd.Flags().StringP("input", "i", "", "Input PNG file")
	cmd.Flags().StringP("output", "o", "", "Output raw pixel file")
	cmd.Flags().Bool("noise", false, "Apply pixel noise before writing")
	cmd.Flags().Uint64("seed", 0, "Noise seed; 0 picks a random one")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")
	return cmd
}

// sidecarPath replaces a .raw extension with .yaml.
func sidecarPath(rawPath string) string {
	return strings.TrimSuffix(rawPath, ".raw") + ".yaml"
}

func runDecode(cmd *cobra.Command, opts *rootOptions) error {
	cmd.SilenceUsage = true
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	withNoise, _ := cmd.Flags().GetBool("noise")
	seed, _ := cmd.Flags().GetUint64("seed")

	s, err := newSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.log.Sync()

	inputData, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(inputData))
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}

	if withNoise {
		if !cmd.Flags().Changed("seed") {
			seed = s.cfg.Seed
		}
		stats, err := noise.Apply(img.Pixels, img.Header.PixelCount(), img.Header, noise.NewSource(seed))
		if err != nil {
			return err
		}
		s.log.Info("noise applied", zap.Int("changed", stats.Changed))
	}

	if err := os.WriteFile(outputPath, img.Pixels, 0644); err != nil {
		return fmt.Errorf("writing raw pixels: %w", err)
	}
	meta, err := yaml.Marshal(pipeline.MetaFromHeader(img.Header))
	if err != nil {
		return err
	}
	metaPath := sidecarPath(outputPath)
	if err := os.WriteFile(metaPath, meta, 0644); err != nil {
		return fmt.Errorf("writing sidecar: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Decoded %dx%d %s → raw (%d bytes)\n", img.Header.Width, img.Header.Height, img.Header.ColorType, len(img.Pixels))
	fmt.Fprintf(out, "Sidecar: %s\n", metaPath)
	return nil
}
