package png

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// WalkOptions controls the chunk walker.
type WalkOptions struct {
	// Inflate decompresses zTXt text and iCCP profiles for deeper reporting.
	Inflate bool
	// Logger receives warnings about the stream; nil disables logging.
	Logger *zap.Logger
}

// Summary describes how a walk ended.
type Summary struct {
	SignatureValid bool  `yaml:"signature_valid"`
	Chunks         int   `yaml:"chunks"`
	Skipped        int   `yaml:"skipped"`
	Ended          bool  `yaml:"iend_seen"`
	Truncated      bool  `yaml:"truncated"`
	Bytes          int64 `yaml:"bytes_read"`
}

// countingReader tracks how many bytes the walk consumed.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Walk reads the signature and then every chunk of r, calling fn once per
// fully read chunk. It never fails on stream content: a bad signature is
// noted in the summary, and a short read anywhere ends the walk as if the
// stream had ended there.
func Walk(r io.Reader, opts WalkOptions, fn func(Entry)) (Summary, error) {
	if r == nil {
		return Summary{}, errors.New("png: nil reader")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cr := &countingReader{r: r}
	var sum Summary

	var sig [8]byte
	if _, err := io.ReadFull(cr, sig[:]); err != nil {
		log.Warn("could not read PNG signature", zap.Error(err))
		sum.Bytes = cr.n
		return sum, nil
	}
	sum.SignatureValid = string(sig[:]) == Signature
	if !sum.SignatureValid {
		log.Warn("file does not have a valid PNG signature", zap.Binary("signature", sig[:]))
	}

	chunks := newChunkReader(cr, false)
	keep := func(tag string) bool {
		_, ok := decoders[tag]
		return ok
	}
	for {
		c, err := chunks.next(keep)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				sum.Truncated = true
				log.Debug("chunk walk stopped on short read",
					zap.String("chunk", lossy(c.Type[:])),
					zap.Uint32("declared_length", c.Length),
					zap.Error(err))
			}
			break
		}
		sum.Chunks++

		tag := c.Tag()
		if tag == TagIEND {
			sum.Ended = true
			break
		}
		e := Entry{Type: lossy(c.Type[:]), Length: c.Length}
		if dec, ok := decoders[tag]; ok {
			fields, ok := dec(c.Data, opts)
			if ok {
				e.Status, e.Fields = Parsed, fields
			} else {
				e.Status = Skipped
				sum.Skipped++
			}
		} else {
			e.Status = Generic
		}
		if fn != nil {
			fn(e)
		}
	}
	sum.Bytes = cr.n
	return sum, nil
}

// WalkFile opens path and walks it. The file is closed on every return path.
func WalkFile(path string, opts WalkOptions, fn func(Entry)) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Walk(bufio.NewReader(f), opts, fn)
}
