package png

import (
	"errors"
	"testing"

	"github.com/davesmith10/pngunpeel/internal/ir"
)

func TestGetInfo(t *testing.T) {
	ihdr := []byte{0, 0, 1, 0, 0, 0, 0, 0x80, 4, 3, 0, 0, 1}
	data := stream(
		rawChunk{TagIHDR, ihdr},
		rawChunk{TagPLTE, make([]byte, 12)},
		rawChunk{TagTRNS, []byte{0, 255}},
		rawChunk{TagIDAT, []byte{1, 2, 3}},
		rawChunk{TagIEND, nil},
	)
	info, err := GetInfo(data)
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if info.Width != 256 || info.Height != 128 || info.BitDepth != 4 {
		t.Errorf("dimensions = %dx%d@%d", info.Width, info.Height, info.BitDepth)
	}
	if info.ColorType != ir.Indexed || info.ColorTypeName != "Indexed" || info.BytesPerPixel != 1 {
		t.Errorf("colour = %+v", info)
	}
	if !info.Interlaced || !info.HasTransparency || info.PaletteEntries != 4 {
		t.Errorf("info = %+v", info)
	}
}

func TestGetInfoTruncatedTail(t *testing.T) {
	ihdr := []byte{0, 0, 0, 2, 0, 0, 0, 2, 8, 6, 0, 0, 0}
	data := stream(rawChunk{TagIHDR, ihdr})
	data = append(data, 0, 0, 0, 9, 'I')

	info, err := GetInfo(data)
	if err != nil {
		t.Fatalf("GetInfo: %v", err)
	}
	if info.BytesPerPixel != 4 || info.HasTransparency {
		t.Errorf("info = %+v", info)
	}
}

func TestGetInfoErrors(t *testing.T) {
	if _, err := GetInfo([]byte("GIF89a")); !errors.Is(err, ErrBadSignature) {
		t.Errorf("short input: %v", err)
	}
	if _, err := GetInfo(stream(rawChunk{TagTEXT, []byte("a\x00b")})); !errors.Is(err, ErrBadHeader) {
		t.Errorf("missing IHDR: %v", err)
	}
	bad := []byte{0, 0, 0, 1, 0, 0, 0, 1, 3, 2, 0, 0, 0}
	if _, err := GetInfo(stream(rawChunk{TagIHDR, bad})); !errors.Is(err, ErrBadHeader) {
		t.Errorf("RGB at depth 3: %v", err)
	}
	if _, err := GetInfo([]byte(Signature)); err == nil {
		t.Error("empty chunk stream accepted")
	}
}
