//go:build !darwin

package report

import (
	"os"
	"time"
)

// Linux and Windows expose no portable creation time through os.FileInfo,
// so only the modification time is reported there.
func birthTime(os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
