package pipeline

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/davesmith10/pngunpeel/internal/ir"
)

// RawMeta is the YAML sidecar written next to a raw pixel dump. It carries
// everything Encode needs besides the pixels.
type RawMeta struct {
	Width        uint32 `yaml:"width"`
	Height       uint32 `yaml:"height"`
	ColorType    string `yaml:"color_type"`
	BitDepth     int    `yaml:"bit_depth"`
	RowBytes     int    `yaml:"row_bytes"`
	Palette      string `yaml:"palette,omitempty"`      // hex
	Transparency string `yaml:"transparency,omitempty"` // hex
}

// MetaFromHeader describes h for the sidecar.
func MetaFromHeader(h ir.ImageHeader) RawMeta {
	return RawMeta{
		Width:        h.Width,
		Height:       h.Height,
		ColorType:    h.ColorType.String(),
		BitDepth:     h.BitDepth,
		RowBytes:     h.RowBytes(),
		Palette:      hex.EncodeToString(h.Palette),
		Transparency: hex.EncodeToString(h.Transparency),
	}
}

// Header rebuilds the image header. The interlace flag is always clear.
func (m RawMeta) Header() (ir.ImageHeader, error) {
	ct, ok := ir.ParseColorType(m.ColorType)
	if !ok {
		return ir.ImageHeader{}, fmt.Errorf("unknown color type %q", m.ColorType)
	}
	h := ir.ImageHeader{Width: m.Width, Height: m.Height, ColorType: ct, BitDepth: m.BitDepth}
	var err error
	if h.Palette, err = decodeHex(m.Palette); err != nil {
		return h, fmt.Errorf("palette: %w", err)
	}
	if h.Transparency, err = decodeHex(m.Transparency); err != nil {
		return h, fmt.Errorf("transparency: %w", err)
	}
	if m.RowBytes != 0 && m.RowBytes != h.RowBytes() {
		return h, fmt.Errorf("row_bytes %d does not match %dx%d %s at %d bits", m.RowBytes, h.Width, h.Height, ct, h.BitDepth)
	}
	return h, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}
