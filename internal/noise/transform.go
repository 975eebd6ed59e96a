package noise

import (
	"errors"
	"fmt"

	"github.com/davesmith10/pngunpeel/internal/ir"
)

// Offset is the magnitude added to or subtracted from the chosen sample.
const Offset = 15

var (
	ErrUnsupportedDepth = errors.New("noise: only 8-bit samples are supported")
	ErrUnknownColorType = errors.New("noise: unknown colour type")
	ErrShortBuffer      = errors.New("noise: pixel buffer shorter than pixel count")
)

// Stats summarises one Apply pass.
type Stats struct {
	Pixels  int // pixels visited
	Changed int // samples whose value actually moved (clamping can pin them)
}

// Clamp returns v limited to the 0..255 range of an 8-bit sample.
func Clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Apply perturbs one eligible sample per pixel of buf in place by ±Offset.
// The eligible channels come from the colour type's layout; alpha samples are
// never written. Buffers with samples wider or narrower than 8 bits are
// rejected with ErrUnsupportedDepth and left untouched.
func Apply(buf []byte, pixelCount int, hdr ir.ImageHeader, src Source) (Stats, error) {
	layout, ok := hdr.ColorType.Layout()
	if !ok {
		return Stats{}, fmt.Errorf("%w: %d", ErrUnknownColorType, hdr.ColorType)
	}
	if hdr.BitDepth != 8 {
		return Stats{}, fmt.Errorf("%w (got %d-bit %s)", ErrUnsupportedDepth, hdr.BitDepth, hdr.ColorType)
	}
	bpp := layout.Channels
	if len(buf) < pixelCount*bpp {
		return Stats{}, fmt.Errorf("%w: %d bytes for %d pixels of %d bytes", ErrShortBuffer, len(buf), pixelCount, bpp)
	}

	var st Stats
	for p := 0; p < pixelCount; p++ {
		ch := 0
		if layout.Eligible > 1 {
			ch = src.Channel(layout.Eligible)
		}
		delta := -Offset
		if src.Bool() {
			delta = Offset
		}
		i := p*bpp + ch
		old := buf[i]
		buf[i] = Clamp(int(old) + delta)
		if buf[i] != old {
			st.Changed++
		}
		st.Pixels++
	}
	return st, nil
}
