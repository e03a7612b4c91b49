package types

// MediaProbeReport holds the parameters parsed from ffmpeg's diagnostic output.
// When HasAudio is false the three audio fields are empty strings, which means
// "no audio" rather than "unknown".
type MediaProbeReport struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Duration        float64 `json:"duration"`
	Fps             string  `json:"fps"`
	VideoCodec      string  `json:"video_codec"`
	VideoProfile    string  `json:"video_profile"`
	HasAudio        bool    `json:"has_audio"`
	AudioBitrate    string  `json:"audio_bitrate"`
	AudioSampleRate string  `json:"audio_sample_rate"`
	AudioChannel    string  `json:"audio_channel"`
}

const (
	CanonicalWidth  = 960
	CanonicalHeight = 720

	DefaultDuration     = 7.2
	DefaultFps          = "30"
	DefaultVideoCodec   = "h264"
	DefaultVideoProfile = "high"
	DefaultSampleRate   = "48000"
	DefaultChannel      = "mono"
)
