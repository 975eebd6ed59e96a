package report

import (
	"fmt"
	"os"
	"time"
)

// FileInfo is the filesystem metadata shown ahead of the image report.
// Zero times are omitted.
type FileInfo struct {
	Path     string    `yaml:"path"`
	Size     int64     `yaml:"size"`
	Modified time.Time `yaml:"modified,omitempty"`
	Created  time.Time `yaml:"created,omitempty"`
}

// Stat collects FileInfo for path. Only a failing stat is an error; a
// platform without birth times simply leaves Created unset.
func Stat(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return FileInfo{}, fmt.Errorf("%s is a directory", path)
	}
	fi := FileInfo{Path: path, Size: st.Size(), Modified: st.ModTime()}
	if created, ok := birthTime(st); ok {
		fi.Created = created
	}
	return fi, nil
}
