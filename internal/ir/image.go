package ir

import "fmt"

// ColorType is the PNG IHDR colour type. Only the five values defined by the
// PNG format are valid; use Layout to reject anything else.
type ColorType uint8

const (
	Grayscale      ColorType = 0
	RGB            ColorType = 2
	Indexed        ColorType = 3
	GrayscaleAlpha ColorType = 4
	RGBA           ColorType = 6
)

// Layout describes how a colour type lays its samples out in a pixel.
type Layout struct {
	Channels int   // samples per pixel
	Eligible int   // leading channels the noise transform may touch
	Alpha    int   // index of the alpha sample, -1 if none
	TRNS     bool  // colour type may carry a tRNS chunk
	Depths   []int // bit depths permitted by the PNG format
	Name     string
}

var layouts = map[ColorType]Layout{
	Grayscale:      {Channels: 1, Eligible: 1, Alpha: -1, TRNS: true, Depths: []int{1, 2, 4, 8, 16}, Name: "Grayscale"},
	RGB:            {Channels: 3, Eligible: 3, Alpha: -1, TRNS: true, Depths: []int{8, 16}, Name: "Rgb"},
	Indexed:        {Channels: 1, Eligible: 1, Alpha: -1, TRNS: true, Depths: []int{1, 2, 4, 8}, Name: "Indexed"},
	GrayscaleAlpha: {Channels: 2, Eligible: 1, Alpha: 1, TRNS: false, Depths: []int{8, 16}, Name: "GrayscaleAlpha"},
	RGBA:           {Channels: 4, Eligible: 3, Alpha: 3, TRNS: false, Depths: []int{8, 16}, Name: "Rgba"},
}

// Layout returns the sample layout for c. ok is false for colour types the
// PNG format does not define.
func (c ColorType) Layout() (l Layout, ok bool) {
	l, ok = layouts[c]
	return l, ok
}

func (c ColorType) String() string {
	if l, ok := layouts[c]; ok {
		return l.Name
	}
	return fmt.Sprintf("ColorType(%d)", uint8(c))
}

// ValidDepth reports whether depth is allowed for c.
func (c ColorType) ValidDepth(depth int) bool {
	l, ok := layouts[c]
	if !ok {
		return false
	}
	for _, d := range l.Depths {
		if d == depth {
			return true
		}
	}
	return false
}

// BitsPerPixel returns the number of bits one pixel occupies.
func (c ColorType) BitsPerPixel(depth int) int {
	l, ok := layouts[c]
	if !ok {
		return 0
	}
	return l.Channels * depth
}

// BytesPerPixel returns the whole bytes per pixel, never less than one.
// Sub-byte depths report 1, matching the stride the PNG filters use.
func (c ColorType) BytesPerPixel(depth int) int {
	bpp := (c.BitsPerPixel(depth) + 7) / 8
	if bpp == 0 && depth > 0 {
		return 1
	}
	return bpp
}

// ImageHeader is the image description shared by the decoder, the noise
// transform and the encoder.
type ImageHeader struct {
	Width        uint32
	Height       uint32
	ColorType    ColorType
	BitDepth     int
	Interlaced   bool
	Palette      []byte // raw PLTE payload, RGB triplets
	Transparency []byte // raw tRNS payload, nil if absent
}

// BytesPerPixel is ColorType.BytesPerPixel at the header's depth.
func (h ImageHeader) BytesPerPixel() int {
	return h.ColorType.BytesPerPixel(h.BitDepth)
}

// RowBytes is the unfiltered length of one scanline.
func (h ImageHeader) RowBytes() int {
	return (int(h.Width)*h.ColorType.BitsPerPixel(h.BitDepth) + 7) / 8
}

// PixelCount is Width*Height.
func (h ImageHeader) PixelCount() int {
	return int(h.Width) * int(h.Height)
}

// Image is the intermediate representation passed between the decoder, the
// noise transform and the encoder. Pixels holds unfiltered scanlines packed
// back to back (len = Height * RowBytes()).
type Image struct {
	Header ImageHeader
	Pixels []byte
}

// ParseColorType is the inverse of ColorType.String.
func ParseColorType(name string) (ColorType, bool) {
	for ct, l := range layouts {
		if l.Name == name {
			return ct, true
		}
	}
	return 0, false
}
