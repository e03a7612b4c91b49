package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"funny-video/internal/appcore"
	"funny-video/internal/storage"
	"funny-video/internal/types"
	"funny-video/log"
	apperrors "funny-video/pkg/errors"
	"funny-video/pkg/util"

	"go.uber.org/zap"
)

const (
	concatListName = "list.txt"
	mergedName     = "merged.mp4"

	sourceVolume  = 1.0
	bgmVolume     = 0.5
	mixSampleRate = 48000
)

// interleave orders the timeline as s1, c1, s2, c2, ... Each clip follows the
// segment at its position, so clips beyond the segment count have no slot and
// are dropped. mismatch is true when the clip count is not exactly one less
// than the segment count.
func interleave(segments []types.Segment, clips []types.Clip) (files []string, dropped int, mismatch bool) {
	files = make([]string, 0, len(segments)+len(clips))
	for i, seg := range segments {
		files = append(files, seg.Path)
		if i < len(clips) {
			files = append(files, clips[i].Path)
		}
	}
	return files, max(len(clips)-len(segments), 0), len(clips) != len(segments)-1
}

// concatList renders the concat demuxer input, one quoted base name per line.
func concatList(files []string) string {
	var b strings.Builder
	for _, f := range files {
		name := strings.ReplaceAll(filepath.Base(f), "'", `'\''`)
		b.WriteString("file '")
		b.WriteString(name)
		b.WriteString("'\n")
	}
	return b.String()
}

func mergeArgs(listPath, bgmPath string, sourceHasAudio bool, out string) []string {
	args := []string{"-y", "-f", "concat", "-safe", "0", "-i", listPath}
	switch {
	case bgmPath != "" && sourceHasAudio:
		args = append(args,
			"-stream_loop", "-1", "-i", bgmPath,
			"-filter_complex", util.BgmMixFilter(sourceVolume, bgmVolume, mixSampleRate),
			"-map", "0:v", "-map", "[aout]",
		)
	case bgmPath != "":
		args = append(args,
			"-stream_loop", "-1", "-i", bgmPath,
			"-filter_complex", util.BgmOnlyFilter(bgmVolume, mixSampleRate),
			"-map", "0:v", "-map", "[aout]",
		)
	case sourceHasAudio:
		args = append(args, "-map", "0:v", "-map", "0:a")
	default:
		args = append(args, "-map", "0:v")
	}

	args = append(args, "-c:v", "libx264", "-profile:v", "high")
	if bgmPath != "" || sourceHasAudio {
		args = append(args, "-c:a", "aac", "-profile:a", "aac_low", "-b:a", "128k", "-ar", strconv.Itoa(mixSampleRate))
	} else {
		args = append(args, "-an")
	}
	return append(args, "-shortest", out)
}

// Merge concatenates segments and clips into result/merged.mp4 and mixes in
// the background track. It skips when either input is empty and never removes
// the inputs on failure.
func (s *Service) Merge(ctx context.Context, segments []types.Segment, clips []types.Clip, sourceHasAudio bool, resultDir string) (*types.MergeResult, appcore.Outcome) {
	if len(segments) == 0 || len(clips) == 0 {
		log.GetLogger().Warn("视频片段或趣味片段为空，跳过视频拼接",
			zap.Int("segments", len(segments)), zap.Int("clips", len(clips)))
		return nil, appcore.Skipped(appcore.StageMerge, apperrors.ErrMergeSkipped.Message)
	}

	var warnings []string
	files, dropped, mismatch := interleave(segments, clips)
	if mismatch {
		msg := fmt.Sprintf("片段数量不匹配: %d 个视频片段, %d 个趣味片段, 丢弃 %d 个", len(segments), len(clips), dropped)
		log.GetLogger().Warn(msg)
		warnings = append(warnings, msg)
	}

	if err := os.MkdirAll(resultDir, 0o755); err != nil {
		return nil, appcore.Failed(appcore.StageMerge, fmt.Errorf("create result dir: %w", err), warnings...)
	}
	staged := make([]string, 0, len(files))
	for _, f := range files {
		p, err := stageInto(resultDir, f)
		if err != nil {
			return nil, appcore.Failed(appcore.StageMerge, apperrors.Wrap(apperrors.CodeFileWriteError, "准备拼接文件失败", err), warnings...)
		}
		staged = append(staged, p)
	}

	listPath := filepath.Join(resultDir, concatListName)
	if err := os.WriteFile(listPath, []byte(concatList(staged)), 0o644); err != nil {
		return nil, appcore.Failed(appcore.StageMerge, apperrors.Wrap(apperrors.CodeFileWriteError, "写入拼接列表失败", err), warnings...)
	}

	bgmPath := s.resolveBgm()
	if bgmPath == "" {
		msg := "未找到背景音乐，仅保留原声 background music missing"
		log.GetLogger().Warn(msg, zap.String("bgm_path", s.Options.BgmPath))
		warnings = append(warnings, msg)
	}

	out := filepath.Join(resultDir, mergedName)
	output, err := s.Runner.Run(ctx, storage.FfmpegPath, mergeArgs(listPath, bgmPath, sourceHasAudio, out)...)
	if err != nil {
		log.GetLogger().Error("拼接视频失败", zap.Error(err), zap.String("output", string(output)))
		return nil, appcore.Failed(appcore.StageMerge, apperrors.Wrap(apperrors.CodeMergeFailed, apperrors.ErrMergeFailed.Message, err), warnings...)
	}

	log.GetLogger().Info("成功拼接视频", zap.String("path", out))
	return &types.MergeResult{ListPath: listPath, MergedPath: out, WithBgm: bgmPath != ""}, appcore.Succeeded(appcore.StageMerge, warnings...)
}

func (s *Service) resolveBgm() string {
	p := strings.TrimSpace(s.Options.BgmPath)
	if p == "" {
		return ""
	}
	if info, err := os.Stat(p); err != nil || info.IsDir() {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// stageInto makes path reachable by base name from dir, since the concat list
// only carries base names. Files already in dir are used as is.
func stageInto(dir, path string) (string, error) {
	if filepath.Clean(filepath.Dir(path)) == filepath.Clean(dir) {
		return path, nil
	}
	dst := filepath.Join(dir, filepath.Base(path))
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if err := os.Link(path, dst); err == nil {
		return dst, nil
	}
	return dst, copyFile(path, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
