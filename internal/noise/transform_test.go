package noise

import (
	"bytes"
	"errors"
	"testing"

	"github.com/davesmith10/pngunpeel/internal/ir"
)

// scripted replays fixed draws and records how often each was asked for.
type scripted struct {
	bools    []bool
	channels []int
	nBool    int
	nChannel int
}

func (s *scripted) Bool() bool {
	v := s.bools[s.nBool%len(s.bools)]
	s.nBool++
	return v
}

func (s *scripted) Channel(n int) int {
	v := s.channels[s.nChannel%len(s.channels)] % n
	s.nChannel++
	return v
}

func header(ct ir.ColorType, w, h uint32) ir.ImageHeader {
	return ir.ImageHeader{Width: w, Height: h, ColorType: ct, BitDepth: 8}
}

func TestClamp(t *testing.T) {
	for v := 0; v <= 255; v++ {
		for _, o := range []int{Offset, -Offset} {
			want := v + o
			if want < 0 {
				want = 0
			}
			if want > 255 {
				want = 255
			}
			if got := Clamp(v + o); int(got) != want {
				t.Fatalf("Clamp(%d%+d) = %d, want %d", v, o, got, want)
			}
		}
	}
	if Clamp(0-Offset) != 0 {
		t.Error("0-15 must clamp to 0")
	}
	if Clamp(255+Offset) != 255 {
		t.Error("255+15 must clamp to 255")
	}
}

func TestApplyScriptedRGB(t *testing.T) {
	buf := []byte{
		100, 100, 100,
		100, 100, 100,
		0, 0, 0,
		255, 255, 255,
	}
	src := &scripted{
		bools:    []bool{true, false, false, true},
		channels: []int{0, 2, 1, 1},
	}
	st, err := Apply(buf, 4, header(ir.RGB, 2, 2), src)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []byte{
		115, 100, 100,
		100, 100, 85,
		0, 0, 0,
		255, 255, 255,
	}
	if !bytes.Equal(buf, want) {
		t.Fatalf("buf = %v, want %v", buf, want)
	}
	if st.Pixels != 4 || st.Changed != 2 {
		t.Errorf("stats = %+v", st)
	}
	if src.nChannel != 4 || src.nBool != 4 {
		t.Errorf("draws: channel=%d bool=%d", src.nChannel, src.nBool)
	}
}

func TestApplySingleChannelSkipsChannelDraw(t *testing.T) {
	for _, ct := range []ir.ColorType{ir.Grayscale, ir.Indexed} {
		buf := []byte{10, 20, 250}
		src := &scripted{bools: []bool{false, true, true}, channels: []int{0}}
		if _, err := Apply(buf, 3, header(ct, 3, 1), src); err != nil {
			t.Fatalf("%v: %v", ct, err)
		}
		if !bytes.Equal(buf, []byte{0, 35, 255}) {
			t.Errorf("%v: buf = %v", ct, buf)
		}
		if src.nChannel != 0 {
			t.Errorf("%v: Channel drawn %d times", ct, src.nChannel)
		}
	}
}

func TestApplyRGBAKeepsAlphaAndTouchesOneChannel(t *testing.T) {
	const pixels = 4096
	orig := make([]byte, pixels*4)
	for i := range orig {
		orig[i] = byte(i * 7)
	}
	buf := append([]byte(nil), orig...)

	if _, err := Apply(buf, pixels, header(ir.RGBA, 64, 64), NewSource(42)); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for p := 0; p < pixels; p++ {
		o, n := orig[p*4:p*4+4], buf[p*4:p*4+4]
		if o[3] != n[3] {
			t.Fatalf("pixel %d: alpha changed %d -> %d", p, o[3], n[3])
		}
		diffs := 0
		for c := 0; c < 3; c++ {
			if o[c] == n[c] {
				continue
			}
			diffs++
			want1, want2 := Clamp(int(o[c])+Offset), Clamp(int(o[c])-Offset)
			if n[c] != want1 && n[c] != want2 {
				t.Fatalf("pixel %d channel %d: %d -> %d", p, c, o[c], n[c])
			}
		}
		if diffs > 1 {
			t.Fatalf("pixel %d: %d channels changed", p, diffs)
		}
	}
}

func TestApplyGrayscaleAlphaNeverTouchesAlpha(t *testing.T) {
	const pixels = 1000
	buf := make([]byte, pixels*2)
	for i := range buf {
		buf[i] = byte(i)
	}
	orig := append([]byte(nil), buf...)

	if _, err := Apply(buf, pixels, header(ir.GrayscaleAlpha, pixels, 1), NewSource(7)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i := 1; i < len(buf); i += 2 {
		if buf[i] != orig[i] {
			t.Fatalf("alpha byte %d changed %d -> %d", i, orig[i], buf[i])
		}
	}
	for i := 0; i < len(buf); i += 2 {
		if buf[i] == orig[i] && orig[i] != 0 && orig[i] != 255 {
			t.Fatalf("gray byte %d unchanged (%d)", i, buf[i])
		}
	}
}

func TestApplySeededIsDeterministic(t *testing.T) {
	a := bytes.Repeat([]byte{128}, 300)
	b := bytes.Repeat([]byte{128}, 300)
	if _, err := Apply(a, 100, header(ir.RGB, 10, 10), NewSource(99)); err != nil {
		t.Fatal(err)
	}
	if _, err := Apply(b, 100, header(ir.RGB, 10, 10), NewSource(99)); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same seed produced different output")
	}
}

func TestApplyRejects(t *testing.T) {
	buf := make([]byte, 16)
	h := header(ir.RGB, 1, 1)
	h.BitDepth = 16
	if _, err := Apply(buf, 1, h, NewSource(1)); !errors.Is(err, ErrUnsupportedDepth) {
		t.Errorf("16-bit: err = %v", err)
	}
	if !bytes.Equal(buf, make([]byte, 16)) {
		t.Error("rejected buffer was modified")
	}

	if _, err := Apply(buf, 1, header(ir.ColorType(5), 1, 1), NewSource(1)); !errors.Is(err, ErrUnknownColorType) {
		t.Errorf("colour type 5: err = %v", err)
	}
	if _, err := Apply(buf[:5], 2, header(ir.RGB, 2, 1), NewSource(1)); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short buffer: err = %v", err)
	}
}

func TestRandSourceChannelRange(t *testing.T) {
	s := NewSource(3)
	seen := map[int]bool{}
	for i := 0; i < 300; i++ {
		c := s.Channel(3)
		if c < 0 || c > 2 {
			t.Fatalf("Channel(3) = %d", c)
		}
		seen[c] = true
	}
	if len(seen) != 3 {
		t.Errorf("only saw channels %v", seen)
	}
}
