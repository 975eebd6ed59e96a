package png

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/davesmith10/pngunpeel/internal/ir"
)

// idatChunkSize is the largest IDAT payload the encoder emits.
const idatChunkSize = 32 * 1024

// EncoderOptions controls PNG encoding.
type EncoderOptions struct {
	// CompressionLevel is a zlib level from -2 (Huffman only) to 9;
	// -1 selects the library default.
	CompressionLevel int
}

// DefaultEncoderOptions returns options using the default zlib level.
func DefaultEncoderOptions() EncoderOptions {
	return EncoderOptions{CompressionLevel: zlib.DefaultCompression}
}

// Encode writes img as a non-interlaced PNG stream: IHDR, PLTE for indexed
// images, tRNS when the colour type carries transparency out of band, the
// image data and IEND.
func Encode(w io.Writer, img *ir.Image, opts EncoderOptions) error {
	hdr := img.Header
	layout, ok := hdr.ColorType.Layout()
	if !ok || !hdr.ColorType.ValidDepth(hdr.BitDepth) {
		return fmt.Errorf("%w: colour type %d at bit depth %d", ErrBadHeader, uint8(hdr.ColorType), hdr.BitDepth)
	}
	if hdr.Width == 0 || hdr.Height == 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrBadHeader, hdr.Width, hdr.Height)
	}
	rowBytes := hdr.RowBytes()
	if expected := rowBytes * int(hdr.Height); len(img.Pixels) != expected {
		return fmt.Errorf("expected %d pixel bytes for %dx%d %s, got %d",
			expected, hdr.Width, hdr.Height, hdr.ColorType, len(img.Pixels))
	}
	if hdr.ColorType == ir.Indexed && (len(hdr.Palette) == 0 || len(hdr.Palette)%3 != 0) {
		return ErrNoPalette
	}

	bw := bufio.NewWriter(w)
	if _, err := io.WriteString(bw, Signature); err != nil {
		return err
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], hdr.Width)
	binary.BigEndian.PutUint32(ihdr[4:8], hdr.Height)
	ihdr[8] = byte(hdr.BitDepth)
	ihdr[9] = byte(hdr.ColorType)
	if err := writeChunk(bw, TagIHDR, ihdr[:]); err != nil {
		return fmt.Errorf("writing IHDR: %w", err)
	}

	if hdr.ColorType == ir.Indexed {
		if err := writeChunk(bw, TagPLTE, hdr.Palette); err != nil {
			return fmt.Errorf("writing PLTE: %w", err)
		}
	}
	if layout.TRNS && len(hdr.Transparency) > 0 {
		if err := writeChunk(bw, TagTRNS, hdr.Transparency); err != nil {
			return fmt.Errorf("writing tRNS: %w", err)
		}
	}

	if err := writeImageData(bw, img.Pixels, rowBytes, opts.CompressionLevel); err != nil {
		return fmt.Errorf("writing IDAT: %w", err)
	}
	if err := writeChunk(bw, TagIEND, nil); err != nil {
		return fmt.Errorf("writing IEND: %w", err)
	}
	return bw.Flush()
}

// writeImageData compresses the rows, each prefixed with filter type None,
// and emits them as a run of IDAT chunks.
func writeImageData(w io.Writer, pixels []byte, rowBytes, level int) error {
	cw := &idatWriter{w: w}
	zw, err := zlib.NewWriterLevel(cw, level)
	if err != nil {
		return err
	}
	filter := []byte{ftNone}
	for off := 0; off < len(pixels); off += rowBytes {
		if _, err := zw.Write(filter); err != nil {
			return err
		}
		if _, err := zw.Write(pixels[off : off+rowBytes]); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return cw.flush()
}

// idatWriter buffers compressed bytes and writes them out as IDAT chunks of
// at most idatChunkSize bytes.
type idatWriter struct {
	w   io.Writer
	buf []byte
}

func (c *idatWriter) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		room := idatChunkSize - len(c.buf)
		take := min(room, len(p))
		c.buf = append(c.buf, p[:take]...)
		p = p[take:]
		if len(c.buf) == idatChunkSize {
			if err := c.flush(); err != nil {
				return 0, err
			}
		}
	}
	return n, nil
}

func (c *idatWriter) flush() error {
	if len(c.buf) == 0 {
		return nil
	}
	err := writeChunk(c.w, TagIDAT, c.buf)
	c.buf = c.buf[:0]
	return err
}
