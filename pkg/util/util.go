package util

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"
)

// WithSuffix inserts suffix between the base name and the extension:
// "a/clip.mp4" with "_new" becomes "a/clip_new.mp4".
func WithSuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// BaseNameNoExt returns the file name without directory and extension.
func BaseNameNoExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FormatClock renders seconds as HH:MM:SS.xx, the layout ffmpeg prints after
// "Duration:".
func FormatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	centis := int64(math.Round(seconds * 100))
	h := centis / 360000
	m := (centis % 360000) / 6000
	s := float64(centis%6000) / 100
	return fmt.Sprintf("%02d:%02d:%05.2f", h, m, s)
}

var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// SanitizeFileName keeps letters, digits, dot, dash and underscore so an
// uploaded name can never escape its directory.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}
