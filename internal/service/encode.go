package service

import (
	"fmt"
	"funny-video/internal/types"
)

// canonicalVideoArgs is the video encoding every segment and clip shares, so
// the concat demuxer can join them without re-negotiating streams.
func canonicalVideoArgs() []string {
	return []string{
		"-vf", fmt.Sprintf("scale=%d:%d,format=yuv420p", types.CanonicalWidth, types.CanonicalHeight),
		"-c:v", "libx264",
		"-profile:v", "high",
		"-level:v", "3.0",
	}
}

// canonicalAudioArgs is the fixed audio profile of source segments.
func canonicalAudioArgs() []string {
	return []string{"-c:a", "aac", "-b:a", "51k", "-ar", "48000", "-ac", "1"}
}

const canonicalFps = "30"
