package png

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/davesmith10/pngunpeel/internal/color"
)

// Status records what the walker could make of a chunk.
type Status int

const (
	// Parsed chunks carry their decoded fields.
	Parsed Status = iota
	// Skipped chunks have a known tag but too little data for its layout.
	Skipped
	// Generic chunks have a tag with no dedicated decoder.
	Generic
)

func (s Status) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case Skipped:
		return "skipped"
	case Generic:
		return "generic"
	default:
		return "unknown"
	}
}

func (s Status) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Field is one named, human-readable value extracted from a chunk.
type Field struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Entry is the walker's report for a single chunk.
type Entry struct {
	Type   string  `yaml:"type"`
	Length uint32  `yaml:"length"`
	Status Status  `yaml:"status"`
	Fields []Field `yaml:"fields,omitempty"`
}

// Field returns the value of the named field.
func (e Entry) Field(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// maxInflated bounds decompressed zTXt text and iCCP profiles.
const maxInflated = 8 << 20

// decodeFunc extracts fields from chunk data; ok is false when the data is
// too short for the chunk's layout.
type decodeFunc func(data []byte, opts WalkOptions) (fields []Field, ok bool)

var decoders = map[string]decodeFunc{
	TagTEXT: decodeText,
	TagZTXT: decodeCompressedText,
	TagITXT: decodeInternationalText,
	TagPHYS: decodePhysical,
	TagTIME: decodeTime,
	TagGAMA: decodeGamma,
	TagCHRM: decodeChromaticities,
	TagSRGB: decodeSRGB,
	TagICCP: decodeICCProfile,
}

// lossy converts bytes to a valid UTF-8 string, replacing invalid sequences.
func lossy(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// splitKeyword splits data at its first NUL byte.
func splitKeyword(data []byte) (keyword, rest []byte, ok bool) {
	i := bytes.IndexByte(data, 0)
	if i < 0 {
		return nil, nil, false
	}
	return data[:i], data[i+1:], true
}

func decodeText(data []byte, _ WalkOptions) ([]Field, bool) {
	kw, text, ok := splitKeyword(data)
	if !ok {
		return nil, false
	}
	return []Field{
		{Name: "keyword", Value: lossy(kw)},
		{Name: "text", Value: lossy(text)},
	}, true
}

func decodeCompressedText(data []byte, opts WalkOptions) ([]Field, bool) {
	kw, rest, ok := splitKeyword(data)
	if !ok || len(rest) < 1 {
		return nil, false
	}
	fields := []Field{
		{Name: "keyword", Value: lossy(kw)},
		{Name: "compression_method", Value: strconv.Itoa(int(rest[0]))},
	}
	if opts.Inflate {
		if text, err := inflate(rest[1:]); err != nil {
			fields = append(fields, Field{Name: "inflate_error", Value: err.Error()})
		} else {
			fields = append(fields, Field{Name: "text", Value: lossy(text)})
		}
	}
	return fields, true
}

func decodeInternationalText(data []byte, _ WalkOptions) ([]Field, bool) {
	kw, _, ok := splitKeyword(data)
	if !ok {
		return nil, false
	}
	return []Field{{Name: "keyword", Value: lossy(kw)}}, true
}

func decodePhysical(data []byte, _ WalkOptions) ([]Field, bool) {
	if len(data) < 9 {
		return nil, false
	}
	unit := "unknown"
	if data[8] == 1 {
		unit = "meter"
	}
	return []Field{
		{Name: "x", Value: strconv.FormatUint(uint64(binary.BigEndian.Uint32(data[0:4])), 10)},
		{Name: "y", Value: strconv.FormatUint(uint64(binary.BigEndian.Uint32(data[4:8])), 10)},
		{Name: "unit", Value: unit},
	}, true
}

func decodeTime(data []byte, _ WalkOptions) ([]Field, bool) {
	if len(data) < 7 {
		return nil, false
	}
	year := binary.BigEndian.Uint16(data[0:2])
	ts := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", year, data[2], data[3], data[4], data[5], data[6])
	return []Field{{Name: "timestamp", Value: ts}}, true
}

func decodeGamma(data []byte, _ WalkOptions) ([]Field, bool) {
	if len(data) < 4 {
		return nil, false
	}
	raw := binary.BigEndian.Uint32(data[0:4])
	return []Field{
		{Name: "gamma", Value: strconv.FormatFloat(float64(raw)/100000.0, 'f', -1, 64)},
		{Name: "raw", Value: strconv.FormatUint(uint64(raw), 10)},
	}, true
}

func decodeChromaticities(data []byte, _ WalkOptions) ([]Field, bool) {
	if len(data) < 32 {
		return nil, false
	}
	return []Field{{Name: "present", Value: "true"}}, true
}

func decodeSRGB(data []byte, _ WalkOptions) ([]Field, bool) {
	if len(data) < 1 {
		return nil, false
	}
	return []Field{{Name: "intent", Value: color.IntentName(data[0])}}, true
}

func decodeICCProfile(data []byte, opts WalkOptions) ([]Field, bool) {
	name, rest, ok := splitKeyword(data)
	if !ok || len(rest) < 1 {
		return nil, false
	}
	fields := []Field{
		{Name: "profile_name", Value: lossy(name)},
		{Name: "compression_method", Value: strconv.Itoa(int(rest[0]))},
		{Name: "profile_size", Value: strconv.Itoa(len(rest) - 1)},
	}
	if !opts.Inflate {
		return fields, true
	}
	profile, err := inflate(rest[1:])
	if err == nil {
		var pi *color.ProfileInfo
		if pi, err = color.ParseProfileInfo(profile); err == nil {
			fields = append(fields,
				Field{Name: "profile_version", Value: pi.Version},
				Field{Name: "profile_class", Value: color.ProfileClassName(pi.Class)},
				Field{Name: "profile_color_space", Value: color.ColorSpaceName(pi.ColorSpace)},
				Field{Name: "profile_pcs", Value: color.ColorSpaceName(pi.PCS)},
			)
			return fields, true
		}
	}
	fields = append(fields, Field{Name: "inflate_error", Value: err.Error()})
	return fields, true
}

// inflate decompresses a zlib stream, refusing output beyond maxInflated.
func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxInflated+1))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	if len(out) > maxInflated {
		return nil, fmt.Errorf("inflate: output exceeds %d bytes", maxInflated)
	}
	return out, nil
}
