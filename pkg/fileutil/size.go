package fileutil

import (
	"math"

	"github.com/dustin/go-humanize"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// ReadableSize formats size with 1024-based units and at most one decimal,
// grouping the integer part with commas: 1536 -> "1.5 KB".
// Non-positive sizes yield "0".
func ReadableSize(size int64) string {
	if size <= 0 {
		return "0"
	}

	group := int(math.Log10(float64(size)) / math.Log10(1024))
	group = min(group, len(sizeUnits)-1)

	value := float64(size) / math.Pow(1024, float64(group))
	value = math.Round(value*10) / 10

	return humanize.CommafWithDigits(value, 1) + " " + sizeUnits[group]
}

// FileSize returns the readable size of the file at path.
func FileSize(path string) (string, error) {
	info, err := stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", ErrIsDirectory
	}
	return ReadableSize(info.Size()), nil
}
