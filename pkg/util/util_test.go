package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBgmMixFilter(t *testing.T) {
	want := "[0:a]volume=1.0,aformat=sample_fmts=fltp:sample_rates=48000:channel_layouts=mono[a1];" +
		"[1:a]volume=0.5,aformat=sample_fmts=fltp:sample_rates=48000:channel_layouts=mono[a2];" +
		"[a1][a2]amerge=inputs=2,pan=stereo|c0<c0+c1|c1<c0+c1[aout]"
	assert.Equal(t, want, BgmMixFilter(1.0, 0.5, 48000))
}

func TestBgmOnlyFilter(t *testing.T) {
	assert.Equal(t,
		"[1:a]volume=0.25,aformat=sample_fmts=fltp:sample_rates=48000:channel_layouts=stereo[aout]",
		BgmOnlyFilter(0.25, 48000))
}

func TestWithSuffix(t *testing.T) {
	assert.Equal(t, "uploads/run/clip_new.mp4", WithSuffix("uploads/run/clip.mp4", "_new"))
	assert.Equal(t, "noext_new", WithSuffix("noext", "_new"))
}

func TestBaseNameNoExt(t *testing.T) {
	assert.Equal(t, "funny_4s", BaseNameNoExt("/runs/x/funnies/funny_4s.jpg"))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00:10.17", FormatClock(10.17))
	assert.Equal(t, "01:01:01.50", FormatClock(3661.5))
	assert.Equal(t, "00:00:00.00", FormatClock(-3))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "my_clip.mp4", SanitizeFileName("my clip.mp4"))
	assert.Equal(t, "passwd", SanitizeFileName("../../etc/passwd"))
	assert.Equal(t, "视频.mp4", SanitizeFileName("视频.mp4"))
	assert.Equal(t, "upload", SanitizeFileName("..."))
}
