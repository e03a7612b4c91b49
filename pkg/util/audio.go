package util

import (
	"fmt"
	"strings"
)

// BgmMixFilter builds the filter graph that mixes the concatenated source audio
// (input 0) with a looping background track (input 1). Both sides are
// resampled to mono fltp at sampleRate, merged, then panned to stereo with
// each output channel carrying c0+c1.
func BgmMixFilter(sourceVolume, bgmVolume float64, sampleRate int) string {
	format := monoFormat(sampleRate)
	return fmt.Sprintf(
		"[0:a]volume=%s,%s[a1];"+
			"[1:a]volume=%s,%s[a2];"+
			"[a1][a2]amerge=inputs=2,pan=stereo|c0<c0+c1|c1<c0+c1[aout]",
		formatVolume(sourceVolume), format,
		formatVolume(bgmVolume), format,
	)
}

// BgmOnlyFilter is used when the source has no audio track: the background
// track alone becomes the stereo output.
func BgmOnlyFilter(bgmVolume float64, sampleRate int) string {
	return fmt.Sprintf("[1:a]volume=%s,aformat=sample_fmts=fltp:sample_rates=%d:channel_layouts=stereo[aout]",
		formatVolume(bgmVolume), sampleRate)
}

func monoFormat(sampleRate int) string {
	return fmt.Sprintf("aformat=sample_fmts=fltp:sample_rates=%d:channel_layouts=mono", sampleRate)
}

// formatVolume keeps one decimal at least, so 1 renders as "1.0".
func formatVolume(v float64) string {
	s := strings.TrimRight(fmt.Sprintf("%.2f", v), "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}
