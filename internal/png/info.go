package png

import (
	"bytes"
	"fmt"

	"github.com/davesmith10/pngunpeel/internal/ir"
)

// ImageInfo contains metadata about a PNG file.
type ImageInfo struct {
	Width           uint32       `yaml:"width"`
	Height          uint32       `yaml:"height"`
	ColorType       ir.ColorType `yaml:"-"`
	ColorTypeName   string       `yaml:"color_type"`
	BitDepth        int          `yaml:"bit_depth"`
	BytesPerPixel   int          `yaml:"bytes_per_pixel"`
	Interlaced      bool         `yaml:"interlaced"`
	HasTransparency bool         `yaml:"transparency"`
	PaletteEntries  int          `yaml:"palette_entries,omitempty"`
}

// GetInfo reads PNG metadata from the IHDR, PLTE and tRNS chunks without
// inflating the image data. CRCs are not checked.
func GetInfo(data []byte) (*ImageInfo, error) {
	if len(data) < len(Signature) || string(data[:len(Signature)]) != Signature {
		return nil, ErrBadSignature
	}

	chunks := newChunkReader(bytes.NewReader(data[len(Signature):]), false)
	keep := func(tag string) bool { return tag == TagIHDR }

	var info *ImageInfo
	for {
		c, err := chunks.next(keep)
		if err != nil {
			if info != nil {
				// a truncated tail still leaves a usable header
				break
			}
			return nil, fmt.Errorf("reading chunk: %w", err)
		}
		tag := c.Tag()
		if info == nil {
			if tag != TagIHDR {
				return nil, fmt.Errorf("%w: first chunk is %q", ErrBadHeader, tag)
			}
			hdr, err := parseHeader(c.Data)
			if err != nil {
				return nil, err
			}
			info = &ImageInfo{
				Width:         hdr.Width,
				Height:        hdr.Height,
				ColorType:     hdr.ColorType,
				ColorTypeName: hdr.ColorType.String(),
				BitDepth:      hdr.BitDepth,
				BytesPerPixel: hdr.BytesPerPixel(),
				Interlaced:    hdr.Interlaced,
			}
			continue
		}
		switch tag {
		case TagPLTE:
			info.PaletteEntries = int(c.Length / 3)
		case TagTRNS:
			info.HasTransparency = c.Length > 0
		case TagIDAT, TagIEND:
			// tRNS and PLTE must precede the image data.
			return info, nil
		}
	}
	return info, nil
}
