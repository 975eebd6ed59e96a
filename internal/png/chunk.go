package png

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// Signature is the 8-byte magic every PNG stream starts with.
const Signature = "\x89PNG\r\n\x1a\n"

// Chunk type tags.
const (
	TagIHDR = "IHDR"
	TagPLTE = "PLTE"
	TagIDAT = "IDAT"
	TagIEND = "IEND"
	TagTRNS = "tRNS"
	TagTEXT = "tEXt"
	TagZTXT = "zTXt"
	TagITXT = "iTXt"
	TagPHYS = "pHYs"
	TagTIME = "tIME"
	TagGAMA = "gAMA"
	TagCHRM = "cHRM"
	TagSRGB = "sRGB"
	TagICCP = "iCCP"
)

// preallocLimit caps how much of a declared chunk length is allocated up
// front; larger chunks grow as bytes actually arrive.
const preallocLimit = 1 << 20

// Chunk is one length-prefixed PNG record. Data is nil when the reader was
// asked to discard it.
type Chunk struct {
	Length uint32
	Type   [4]byte
	Data   []byte
	CRC    uint32
}

// Tag returns the chunk type as a string.
func (c Chunk) Tag() string {
	return string(c.Type[:])
}

// chunkReader reads chunks sequentially from a stream positioned after the
// signature. With verify set every chunk's CRC is checked.
type chunkReader struct {
	r      io.Reader
	verify bool
	crc    hash.Hash32
	hdr    [8]byte
}

func newChunkReader(r io.Reader, verify bool) *chunkReader {
	return &chunkReader{r: r, verify: verify, crc: crc32.NewIEEE()}
}

// next reads the following chunk. keep decides from the tag whether the data
// is retained or skipped. A stream that ends exactly on a chunk boundary
// yields io.EOF; any partial read yields io.ErrUnexpectedEOF.
func (cr *chunkReader) next(keep func(tag string) bool) (Chunk, error) {
	var c Chunk
	if _, err := io.ReadFull(cr.r, cr.hdr[:4]); err != nil {
		return c, err
	}
	c.Length = binary.BigEndian.Uint32(cr.hdr[:4])
	if _, err := io.ReadFull(cr.r, cr.hdr[4:8]); err != nil {
		return c, unexpected(err)
	}
	copy(c.Type[:], cr.hdr[4:8])

	cr.crc.Reset()
	cr.crc.Write(c.Type[:])

	var sink io.Writer = io.Discard
	var buf *bytes.Buffer
	if keep == nil || keep(c.Tag()) {
		buf = new(bytes.Buffer)
		buf.Grow(int(min(c.Length, preallocLimit)))
		sink = buf
	}
	if cr.verify {
		sink = io.MultiWriter(sink, cr.crc)
	}
	if n, err := io.CopyN(sink, cr.r, int64(c.Length)); err != nil || n != int64(c.Length) {
		return c, unexpected(err)
	}
	if buf != nil {
		c.Data = buf.Bytes()
	}

	if _, err := io.ReadFull(cr.r, cr.hdr[:4]); err != nil {
		return c, unexpected(err)
	}
	c.CRC = binary.BigEndian.Uint32(cr.hdr[:4])
	if cr.verify && c.CRC != cr.crc.Sum32() {
		return c, fmt.Errorf("%w: %s chunk (stored 0x%08x, computed 0x%08x)", ErrChecksum, c.Tag(), c.CRC, cr.crc.Sum32())
	}
	return c, nil
}

func unexpected(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// writeChunk writes one complete chunk including its CRC.
func writeChunk(w io.Writer, tag string, data []byte) error {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(data)))
	copy(hdr[4:], tag)
	crc := crc32.NewIEEE()
	crc.Write(hdr[4:8])
	crc.Write(data)

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], crc.Sum32())
	_, err := w.Write(tail[:])
	return err
}
