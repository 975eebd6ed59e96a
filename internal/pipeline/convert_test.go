package pipeline

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/davesmith10/pngunpeel/internal/ir"
	"github.com/davesmith10/pngunpeel/internal/noise"
	"github.com/davesmith10/pngunpeel/internal/png"
)

const testdataDir = "../../testdata"

func writeRawChunk(buf *bytes.Buffer, tag string, data []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(data)))
	buf.Write(n[:])
	buf.WriteString(tag)
	buf.Write(data)
	crc := crc32.NewIEEE()
	crc.Write([]byte(tag))
	crc.Write(data)
	binary.BigEndian.PutUint32(n[:], crc.Sum32())
	buf.Write(n[:])
}

// encodeImage builds a PNG for hdr whose samples sweep the whole 0..255
// range, so clamping is exercised at both ends.
func encodeImage(t *testing.T, hdr ir.ImageHeader) ([]byte, []byte) {
	t.Helper()
	pixels := make([]byte, hdr.RowBytes()*int(hdr.Height))
	for i := range pixels {
		pixels[i] = byte(i * 17)
	}
	if hdr.ColorType == ir.Indexed && hdr.Palette == nil {
		hdr.Palette = make([]byte, 256*3)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, &ir.Image{Header: hdr, Pixels: pixels}, png.DefaultEncoderOptions()); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return buf.Bytes(), pixels
}

func decode(t *testing.T, data []byte) *ir.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	return img
}

// verifyOutput runs standard checks on the output of a noisy pipeline run.
func verifyOutput(t *testing.T, name string, before []byte, result *Result) {
	t.Helper()

	if !bytes.HasPrefix(result.Data, []byte(png.Signature)) {
		t.Fatalf("[%s] output does not start with the PNG signature", name)
	}
	if !bytes.Contains(result.Data[len(result.Data)-8:], []byte("IEND")) {
		t.Errorf("[%s] output does not end with IEND", name)
	}

	out := decode(t, result.Data)
	h := out.Header
	if h.Width != result.Header.Width || h.Height != result.Header.Height ||
		h.ColorType != result.Header.ColorType || h.BitDepth != result.Header.BitDepth {
		t.Fatalf("[%s] header mismatch: %+v vs %+v", name, h, result.Header)
	}
	if !result.NoiseApplied {
		t.Fatalf("[%s] noise not applied", name)
	}

	layout, _ := h.ColorType.Layout()
	changed := 0
	for p := 0; p < h.PixelCount(); p++ {
		px := p * layout.Channels
		moved := 0
		for ch := 0; ch < layout.Channels; ch++ {
			a, b := int(before[px+ch]), int(out.Pixels[px+ch])
			if a == b {
				continue
			}
			if ch >= layout.Eligible {
				t.Fatalf("[%s] pixel %d: non-colour channel %d changed %d → %d", name, p, ch, a, b)
			}
			if want := int(noise.Clamp(a + noise.Offset)); b != want && b != int(noise.Clamp(a-noise.Offset)) {
				t.Fatalf("[%s] pixel %d channel %d: %d → %d is not a clamped ±%d step", name, p, ch, a, b, noise.Offset)
			}
			moved++
		}
		if moved > 1 {
			t.Fatalf("[%s] pixel %d: %d channels changed", name, p, moved)
		}
		changed += moved
	}
	if changed != result.Stats.Changed {
		t.Errorf("[%s] %d samples changed, stats report %d", name, changed, result.Stats.Changed)
	}

	t.Logf("[%s] %dx%d %s, input=%d bytes, output=%d bytes, changed=%d/%d",
		name, h.Width, h.Height, h.ColorType, len(before), len(result.Data), changed, result.Stats.Pixels)
}

func runNoisy(t *testing.T, hdr ir.ImageHeader) ([]byte, *Result) {
	t.Helper()
	input, pixels := encodeImage(t, hdr)
	result, err := Run(input, Options{
		Noise:   true,
		Source:  noise.NewSource(2024),
		Encoder: png.DefaultEncoderOptions(),
	})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	return pixels, result
}

func TestConvert_RGB(t *testing.T) {
	pixels, result := runNoisy(t, ir.ImageHeader{Width: 32, Height: 24, ColorType: ir.RGB, BitDepth: 8})
	verifyOutput(t, "rgb", pixels, result)
}

func TestConvert_RGBA(t *testing.T) {
	pixels, result := runNoisy(t, ir.ImageHeader{Width: 32, Height: 24, ColorType: ir.RGBA, BitDepth: 8})
	verifyOutput(t, "rgba", pixels, result)
}

func TestConvert_Grayscale(t *testing.T) {
	pixels, result := runNoisy(t, ir.ImageHeader{Width: 17, Height: 9, ColorType: ir.Grayscale, BitDepth: 8})
	verifyOutput(t, "grayscale", pixels, result)
}

func TestConvert_GrayscaleAlpha(t *testing.T) {
	pixels, result := runNoisy(t, ir.ImageHeader{Width: 17, Height: 9, ColorType: ir.GrayscaleAlpha, BitDepth: 8})
	verifyOutput(t, "grayscale-alpha", pixels, result)

	out := decode(t, result.Data)
	for i := 1; i < len(out.Pixels); i += 2 {
		if out.Pixels[i] != pixels[i] {
			t.Fatalf("alpha byte at offset %d changed", i)
		}
	}
}

func TestConvert_IndexedKeepsPalette(t *testing.T) {
	palette := make([]byte, 256*3)
	for i := range palette {
		palette[i] = byte(255 - i%256)
	}
	hdr := ir.ImageHeader{Width: 10, Height: 10, ColorType: ir.Indexed, BitDepth: 8,
		Palette: palette, Transparency: []byte{0, 128}}
	pixels, result := runNoisy(t, hdr)
	verifyOutput(t, "indexed", pixels, result)

	out := decode(t, result.Data)
	if !bytes.Equal(out.Header.Palette, palette) {
		t.Error("palette not carried through")
	}
	if !bytes.Equal(out.Header.Transparency, hdr.Transparency) {
		t.Errorf("tRNS = %v", out.Header.Transparency)
	}
}

func TestConvert_SubByteDepthUnmodified(t *testing.T) {
	hdr := ir.ImageHeader{Width: 9, Height: 3, ColorType: ir.Grayscale, BitDepth: 2}
	input, pixels := encodeImage(t, hdr)
	result, err := Run(input, Options{Noise: true, Source: noise.NewSource(1), Encoder: png.DefaultEncoderOptions()})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if result.NoiseApplied || !bytes.Equal(decode(t, result.Data).Pixels, pixels) {
		t.Error("sub-byte image was modified")
	}
}
