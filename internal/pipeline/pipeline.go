package pipeline

import (
	"bytes"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/davesmith10/pngunpeel/internal/ir"
	"github.com/davesmith10/pngunpeel/internal/noise"
	"github.com/davesmith10/pngunpeel/internal/png"
)

// Options controls the decode → noise → encode pipeline.
type Options struct {
	Noise   bool         // apply the pixel noise transform
	Source  noise.Source // random draws; a fresh unseeded source when nil
	Encoder png.EncoderOptions
	Logger  *zap.Logger // optional
}

// Result holds the output of a pipeline run.
type Result struct {
	Data         []byte // encoded PNG
	Header       ir.ImageHeader
	NoiseApplied bool
	Stats        noise.Stats
}

// Run decodes pngData, perturbs its pixels when opts.Noise is set and
// re-encodes the result. Images the transform cannot handle (bit depth other
// than 8) are re-encoded unmodified with a warning.
func Run(pngData []byte, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// 1. Decode
	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	hdr := img.Header
	log.Debug("decoded image",
		zap.Uint32("width", hdr.Width),
		zap.Uint32("height", hdr.Height),
		zap.Stringer("color_type", hdr.ColorType),
		zap.Int("bit_depth", hdr.BitDepth),
		zap.Int("pixel_bytes", len(img.Pixels)))

	res := &Result{Header: hdr}

	// 2. Noise
	if opts.Noise {
		src := opts.Source
		if src == nil {
			src = noise.NewSource(0)
		}
		stats, err := noise.Apply(img.Pixels, hdr.PixelCount(), hdr, src)
		switch {
		case errors.Is(err, noise.ErrUnsupportedDepth):
			log.Warn("noise skipped, writing image unmodified",
				zap.Int("bit_depth", hdr.BitDepth),
				zap.Stringer("color_type", hdr.ColorType))
		case err != nil:
			return nil, fmt.Errorf("noise: %w", err)
		default:
			res.NoiseApplied = true
			res.Stats = stats
			log.Debug("noise applied", zap.Int("pixels", stats.Pixels), zap.Int("changed", stats.Changed))
		}
	}

	// 3. Encode
	var out bytes.Buffer
	out.Grow(len(pngData))
	if err := png.Encode(&out, img, opts.Encoder); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	res.Data = out.Bytes()
	return res, nil
}
