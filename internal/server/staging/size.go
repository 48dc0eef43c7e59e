package staging

import "fmt"

const (
	kib = 1024
	mib = 1024 * kib
)

// sizeUnit picks the display unit from the threshold so that an actual size
// and its limit are printed on the same scale.
func sizeUnit(threshold int64) (float64, string) {
	switch {
	case threshold >= mib:
		return mib, "MB"
	case threshold >= kib:
		return kib, "KB"
	default:
		return 1, "B"
	}
}

func formatSize(n int64, div float64, unit string) string {
	if unit == "B" {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.2f %s", float64(n)/div, unit)
}

func tooLargeMessage(size, max int64) string {
	div, unit := sizeUnit(max)
	return fmt.Sprintf("file size %s exceeds the maximum allowed size of %s",
		formatSize(size, div, unit), formatSize(max, div, unit))
}
