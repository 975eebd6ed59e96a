package png

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/davesmith10/pngunpeel/internal/ir"
)

var (
	ErrBadSignature = errors.New("png: invalid signature")
	ErrChecksum     = errors.New("png: chunk CRC mismatch")
	ErrBadHeader    = errors.New("png: invalid IHDR")
	ErrInterlaced   = errors.New("png: interlaced images are not supported")
	ErrNoImageData  = errors.New("png: missing IDAT")
	ErrNoPalette    = errors.New("png: indexed image without PLTE")
	ErrBadFilter    = errors.New("png: invalid scanline filter")
	ErrTooLarge     = errors.New("png: image too large")
)

// maxPixelBytes bounds the unfiltered pixel buffer a decode may allocate.
const maxPixelBytes = 1 << 30

// Decode reads a complete PNG stream and returns its header and unfiltered
// pixel buffer. Unlike the walker it is strict: the signature, IHDR and every
// CRC must be valid.
func Decode(r io.Reader) (*ir.Image, error) {
	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return nil, fmt.Errorf("reading signature: %w", err)
	}
	if string(sig[:]) != Signature {
		return nil, ErrBadSignature
	}

	chunks := newChunkReader(r, true)
	keep := func(tag string) bool {
		switch tag {
		case TagIHDR, TagPLTE, TagTRNS, TagIDAT:
			return true
		}
		return false
	}

	var (
		hdr     ir.ImageHeader
		seenHdr bool
		idat    bytes.Buffer
	)
	for {
		c, err := chunks.next(keep)
		if err != nil {
			return nil, fmt.Errorf("reading chunk: %w", err)
		}
		tag := c.Tag()
		if !seenHdr && tag != TagIHDR {
			return nil, fmt.Errorf("%w: first chunk is %q", ErrBadHeader, tag)
		}
		switch tag {
		case TagIHDR:
			if seenHdr {
				return nil, fmt.Errorf("%w: duplicate IHDR", ErrBadHeader)
			}
			if hdr, err = parseHeader(c.Data); err != nil {
				return nil, err
			}
			seenHdr = true
		case TagPLTE:
			if len(c.Data) == 0 || len(c.Data)%3 != 0 || len(c.Data) > 256*3 {
				return nil, fmt.Errorf("png: invalid PLTE length %d", len(c.Data))
			}
			hdr.Palette = c.Data
		case TagTRNS:
			hdr.Transparency = c.Data
		case TagIDAT:
			idat.Write(c.Data)
		}
		if tag == TagIEND {
			break
		}
	}

	if hdr.Interlaced {
		return nil, ErrInterlaced
	}
	if idat.Len() == 0 {
		return nil, ErrNoImageData
	}
	if hdr.ColorType == ir.Indexed && hdr.Palette == nil {
		return nil, ErrNoPalette
	}

	pixels, err := inflateScanlines(&idat, hdr)
	if err != nil {
		return nil, err
	}
	return &ir.Image{Header: hdr, Pixels: pixels}, nil
}

func parseHeader(data []byte) (ir.ImageHeader, error) {
	if len(data) != 13 {
		return ir.ImageHeader{}, fmt.Errorf("%w: length %d", ErrBadHeader, len(data))
	}
	h := ir.ImageHeader{
		Width:      binary.BigEndian.Uint32(data[0:4]),
		Height:     binary.BigEndian.Uint32(data[4:8]),
		BitDepth:   int(data[8]),
		ColorType:  ir.ColorType(data[9]),
		Interlaced: data[12] == 1,
	}
	if h.Width == 0 || h.Height == 0 || h.Width > 1<<31-1 || h.Height > 1<<31-1 {
		return h, fmt.Errorf("%w: dimensions %dx%d", ErrBadHeader, h.Width, h.Height)
	}
	if !h.ColorType.ValidDepth(h.BitDepth) {
		return h, fmt.Errorf("%w: colour type %d at bit depth %d", ErrBadHeader, data[9], h.BitDepth)
	}
	if data[10] != 0 || data[11] != 0 {
		return h, fmt.Errorf("%w: compression %d filter %d", ErrBadHeader, data[10], data[11])
	}
	if data[12] > 1 {
		return h, fmt.Errorf("%w: interlace method %d", ErrBadHeader, data[12])
	}
	return h, nil
}

// inflateScanlines decompresses the IDAT stream and undoes each row's filter.
func inflateScanlines(idat io.Reader, hdr ir.ImageHeader) ([]byte, error) {
	rowBytes := hdr.RowBytes()
	total := uint64(rowBytes) * uint64(hdr.Height)
	if total > maxPixelBytes {
		return nil, fmt.Errorf("%w: %d bytes of pixel data", ErrTooLarge, total)
	}

	zr, err := zlib.NewReader(idat)
	if err != nil {
		return nil, fmt.Errorf("inflating image data: %w", err)
	}
	defer zr.Close()

	pixels := make([]byte, total)
	prev := make([]byte, rowBytes)
	bpp := hdr.BytesPerPixel()
	var ft [1]byte
	for y := 0; y < int(hdr.Height); y++ {
		cur := pixels[y*rowBytes : (y+1)*rowBytes]
		if _, err := io.ReadFull(zr, ft[:]); err != nil {
			return nil, fmt.Errorf("reading row %d: %w", y, err)
		}
		if _, err := io.ReadFull(zr, cur); err != nil {
			return nil, fmt.Errorf("reading row %d: %w", y, err)
		}
		if err := unfilter(ft[0], cur, prev, bpp); err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}
		prev = cur
	}
	return pixels, nil
}
