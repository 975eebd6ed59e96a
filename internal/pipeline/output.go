package pipeline

import (
	"path/filepath"
	"strings"
)

// OutputSuffix is inserted before the extension of the input file name.
const OutputSuffix = "-unpeeled"

// OutputPath returns the sibling path the processed image is written to:
// "photo.png" becomes "photo-unpeeled.png" and "data" becomes
// "data-unpeeled". A leading dot does not start an extension, so ".hidden"
// becomes ".hidden-unpeeled".
func OutputPath(input string) string {
	dir, name := filepath.Split(input)
	if name == "" {
		return input + OutputSuffix
	}
	stem, ext := name, ""
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		stem, ext = name[:i], name[i:]
	}
	return dir + stem + OutputSuffix + ext
}
