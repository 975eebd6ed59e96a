package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/davesmith10/pngunpeel/internal/png"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// Output describes the image written by a run.
type Output struct {
	Path         string `yaml:"path"`
	Bytes        int    `yaml:"bytes"`
	NoiseApplied bool   `yaml:"noise_applied"`
	Pixels       int    `yaml:"pixels,omitempty"`
	Changed      int    `yaml:"changed_samples,omitempty"`
}

// Printer writes the human-readable report section by section. Colour
// follows color.NoColor, which fatih/color sets when w is not a terminal.
type Printer struct {
	w       io.Writer
	heading *color.Color
	warn    *color.Color
	dim     *color.Color
	now     func() time.Time
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:       w,
		heading: color.New(color.FgCyan, color.Bold),
		warn:    color.New(color.FgYellow),
		dim:     color.New(color.FgHiBlack),
		now:     time.Now,
	}
}

func (p *Printer) section(title string) {
	p.heading.Fprintf(p.w, "=== %s ===\n", title)
}

// File prints the filesystem metadata section.
func (p *Printer) File(fi FileInfo) {
	p.section("File System Metadata")
	fmt.Fprintf(p.w, "File size: %s bytes ", humanize.Comma(fi.Size))
	p.dim.Fprintf(p.w, "(%s)", humanize.Bytes(uint64(fi.Size)))
	fmt.Fprintln(p.w)
	if !fi.Modified.IsZero() {
		p.timestamp("Last modified", fi.Modified)
	}
	if !fi.Created.IsZero() {
		p.timestamp("Created", fi.Created)
	}
}

func (p *Printer) timestamp(label string, t time.Time) {
	fmt.Fprintf(p.w, "%s: %s ", label, t.Format(timeLayout))
	p.dim.Fprintf(p.w, "(%s)", humanize.RelTime(t, p.now(), "ago", "from now"))
	fmt.Fprintln(p.w)
}

// Image prints the decoded header. err, when set, replaces the section body.
func (p *Printer) Image(info *png.ImageInfo, err error) {
	fmt.Fprintln(p.w)
	p.section("PNG Image Metadata")
	if info == nil {
		p.warn.Fprintf(p.w, "Could not read image header: %v\n", err)
		return
	}
	fmt.Fprintf(p.w, "Width: %d pixels\n", info.Width)
	fmt.Fprintf(p.w, "Height: %d pixels\n", info.Height)
	fmt.Fprintf(p.w, "Color type: %s\n", info.ColorTypeName)
	fmt.Fprintf(p.w, "Bit depth: %d\n", info.BitDepth)
	fmt.Fprintf(p.w, "Bytes per pixel: %d\n", info.BytesPerPixel)
	fmt.Fprintf(p.w, "Interlaced: %s\n", yesNo(info.Interlaced))
	fmt.Fprintf(p.w, "Transparency (tRNS): %s\n", yesNo(info.HasTransparency))
	if info.PaletteEntries > 0 {
		fmt.Fprintf(p.w, "Palette entries: %d\n", info.PaletteEntries)
	}
}

// ChunksHeader starts the chunk listing; Chunk is then called once per entry.
func (p *Printer) ChunksHeader() {
	fmt.Fprintln(p.w)
	p.section("Chunks")
}

// Chunk prints one walker entry. Skipped entries print nothing.
func (p *Printer) Chunk(e png.Entry) {
	switch e.Status {
	case png.Skipped:
		return
	case png.Generic:
		fmt.Fprintf(p.w, "%s: %s\n", e.Type, humanize.Bytes(uint64(e.Length)))
		return
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s=%s", f.Name, f.Value))
	}
	fmt.Fprintf(p.w, "%s: %s\n", e.Type, strings.Join(parts, ", "))
}

// Summary prints the closing block for the walked file.
func (p *Printer) Summary(path string, info *png.ImageInfo, sum png.Summary) {
	fmt.Fprintln(p.w)
	p.section("Summary")
	fmt.Fprintf(p.w, "File: %s\n", path)
	if info != nil {
		fmt.Fprintf(p.w, "Dimensions: %dx%d\n", info.Width, info.Height)
		fmt.Fprintf(p.w, "Color format: %s at %d bits\n", info.ColorTypeName, info.BitDepth)
	}
	fmt.Fprintf(p.w, "Chunks: %d", sum.Chunks)
	if sum.Skipped > 0 {
		p.dim.Fprintf(p.w, " (%d without enough data)", sum.Skipped)
	}
	fmt.Fprintln(p.w)
	if !sum.SignatureValid {
		p.warn.Fprintln(p.w, "Warning: File does not have a valid PNG signature.")
	}
	if sum.Truncated {
		p.warn.Fprintln(p.w, "Warning: chunk stream is truncated.")
	} else if !sum.Ended {
		p.warn.Fprintln(p.w, "Warning: no IEND chunk.")
	}
}

// Output prints where the processed image went.
func (p *Printer) Output(out Output) {
	fmt.Fprintln(p.w)
	p.section("Writing Output Image")
	fmt.Fprintf(p.w, "Output file: %s\n", out.Path)
	if out.NoiseApplied {
		fmt.Fprintf(p.w, "Noise: %s of %s pixels changed\n", humanize.Comma(int64(out.Changed)), humanize.Comma(int64(out.Pixels)))
	} else {
		fmt.Fprintln(p.w, "Noise: not applied")
	}
	fmt.Fprintf(p.w, "Successfully wrote image to: %s ", out.Path)
	p.dim.Fprintf(p.w, "(%s)", humanize.Bytes(uint64(out.Bytes)))
	fmt.Fprintln(p.w)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
