package service

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"funny-video/internal/storage"
	"funny-video/internal/types"
	"funny-video/log"
	apperrors "funny-video/pkg/errors"

	"go.uber.org/zap"
)

var (
	videoStreamLineRe = regexp.MustCompile(`(?m)^.*Stream #\d+:\d+.*Video:.*$`)
	audioStreamLineRe = regexp.MustCompile(`(?m)^.*Stream #\d+:\d+.*Audio:.*$`)

	inputHeaderRe     = regexp.MustCompile(`(?m)^Input #\d+,`)

	resolutionRe = regexp.MustCompile(`\b(\d{2,5})x(\d{2,5})\b`)
	durationRe   = regexp.MustCompile(`Duration: (\d+):(\d+):(\d+(?:\.\d+)?)`)
	fpsRe        = regexp.MustCompile(`(\d+)(?:\.\d+)?\s+fps`)
	codecRe      = regexp.MustCompile(`Video: ([\w.]+) \((\w+)\)`)
	bitrateRe    = regexp.MustCompile(`(\d+)\s*kb/s`)
	sampleRateRe = regexp.MustCompile(`(\d+)\s+Hz`)
	channelRe    = regexp.MustCompile(`\b(mono|stereo)\b`)
)

// Probe runs `ffmpeg -i` on the media file and parses its diagnostic text.
// ffmpeg exits non-zero here because no output is given, so the exit status is
// ignored. Text without an input header or a video stream means ffmpeg could
// not open the file and is fatal.
func (s *Service) Probe(ctx context.Context, mediaPath string) (types.MediaProbeReport, error) {
	output, err := s.Runner.Run(ctx, storage.FfmpegPath, "-hide_banner", "-i", mediaPath)
	text := strings.TrimSpace(string(output))
	if text == "" {
		log.GetLogger().Error("媒体探测无输出", zap.String("path", mediaPath), zap.Error(err))
		return types.MediaProbeReport{}, apperrors.WrapWithDetail(apperrors.CodeProbeFailed,
			"媒体探测失败 Media probe failed", mediaPath, err)
	}

	if !inputHeaderRe.MatchString(text) && !videoStreamLineRe.MatchString(text) {
		log.GetLogger().Error("无法读取媒体文件", zap.String("path", mediaPath), zap.String("output", text))
		return types.MediaProbeReport{}, apperrors.WrapWithDetail(apperrors.CodeProbeFailed,
			"媒体探测失败 Media probe failed", text, err)
	}

	report := parseProbeOutput(text)
	log.GetLogger().Info("媒体探测完成", zap.String("path", mediaPath), zap.Any("report", report))
	return report, nil
}

func parseProbeOutput(output string) types.MediaProbeReport {
	report := types.MediaProbeReport{
		Width:        types.CanonicalWidth,
		Height:       types.CanonicalHeight,
		Duration:     types.DefaultDuration,
		Fps:          types.DefaultFps,
		VideoCodec:   types.DefaultVideoCodec,
		VideoProfile: types.DefaultVideoProfile,
	}

	if seconds, ok := parseDurationSeconds(output); ok {
		report.Duration = math.Round(seconds*10) / 10
	}

	if videoLine := videoStreamLineRe.FindString(output); videoLine != "" {
		if m := resolutionRe.FindStringSubmatch(videoLine); m != nil {
			report.Width, _ = strconv.Atoi(m[1])
			report.Height, _ = strconv.Atoi(m[2])
		}
		if m := fpsRe.FindStringSubmatch(videoLine); m != nil {
			report.Fps = m[1]
		}
		if m := codecRe.FindStringSubmatch(videoLine); m != nil {
			report.VideoCodec = m[1]
			report.VideoProfile = strings.ToLower(m[2])
		}
	}

	audioLine := audioStreamLineRe.FindString(output)
	bitrate := bitrateRe.FindStringSubmatch(audioLine)
	if audioLine == "" || bitrate == nil {
		return report
	}

	report.HasAudio = true
	report.AudioBitrate = bitrate[1] + "k"
	report.AudioSampleRate = types.DefaultSampleRate
	if m := sampleRateRe.FindStringSubmatch(audioLine); m != nil {
		report.AudioSampleRate = m[1]
	}
	report.AudioChannel = types.DefaultChannel
	if m := channelRe.FindStringSubmatch(audioLine); m != nil {
		report.AudioChannel = m[1]
	}
	return report
}

func parseDurationSeconds(output string) (float64, bool) {
	m := durationRe.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}
	return float64(hours*3600+minutes*60) + seconds, true
}

// durationClock returns the HH:MM:SS.xx text ffmpeg prints for the file, or
// an empty string when it cannot be read.
func (s *Service) durationClock(ctx context.Context, mediaPath string) string {
	output, _ := s.Runner.Run(ctx, storage.FfmpegPath, "-hide_banner", "-i", mediaPath)
	m := durationRe.FindStringSubmatch(string(output))
	if m == nil {
		return ""
	}
	return m[1] + ":" + m[2] + ":" + m[3]
}
