package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"funny-video/internal/appdirs"
)

const sampleProbeOutput = `Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'in.mp4':
  Metadata:
    major_brand     : isom
  Duration: 00:01:30.52, start: 0.000000, bitrate: 1205 kb/s
  Stream #0:0[0x1](und): Video: h264 (High) (avc1 / 0x31637661), yuv420p(progressive), 1280x720 [SAR 1:1 DAR 16:9], 1070 kb/s, 29.97 fps, 29.97 tbr, 30k tbn (default)
  Stream #0:1[0x2](und): Audio: aac (LC) (mp4a / 0x6134706D), 44100 Hz, stereo, fltp, 128 kb/s (default)
At least one output file must be specified`

const silentProbeOutput = `Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'silent.mp4':
  Duration: 00:00:12.00, start: 0.000000, bitrate: 800 kb/s
  Stream #0:0[0x1](und): Video: h264 (Main) (avc1 / 0x31637661), yuv420p, 640x480, 790 kb/s, 25 fps, 25 tbr, 12800 tbn (default)
At least one output file must be specified`

// fakeRunner stands in for ffmpeg. Probe calls (-hide_banner -i x) get
// probeOutput with a non-zero exit like the real tool. Every other call
// writes its last argument as the output file unless fail matches it.
type fakeRunner struct {
	mu          sync.Mutex
	calls       [][]string
	probeOutput string
	fail        func(args []string) bool
}

var errExit = errors.New("exit status 1")

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), args...))
	f.mu.Unlock()

	if len(args) == 3 && args[0] == "-hide_banner" && args[1] == "-i" {
		return []byte(f.probeOutput), errExit
	}
	if f.fail != nil && f.fail(args) {
		return []byte("Conversion failed!"), errExit
	}
	out := args[len(args)-1]
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, err
	}
	return nil, os.WriteFile(out, []byte(filepath.Base(out)), 0o644)
}

// callsWriting returns the recorded calls whose output file has the suffix.
func (f *fakeRunner) callsWriting(suffix string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched [][]string
	for _, c := range f.calls {
		if len(c) > 0 && strings.HasSuffix(c[len(c)-1], suffix) {
			matched = append(matched, c)
		}
	}
	return matched
}

func failWhenWriting(suffixes ...string) func(args []string) bool {
	return func(args []string) bool {
		out := args[len(args)-1]
		for _, s := range suffixes {
			if strings.HasSuffix(out, s) {
				return true
			}
		}
		return false
	}
}

func useTempAppDirs(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	original := appDirsResolver
	appDirsResolver = func() (appdirs.Paths, error) {
		return appdirs.Paths{
			OutputDir: filepath.Join(tempDir, "output"),
			CacheDir:  filepath.Join(tempDir, "cache"),
		}, nil
	}
	t.Cleanup(func() { appDirsResolver = original })
	return tempDir
}

func containsSeq(args []string, seq ...string) bool {
	for i := 0; i+len(seq) <= len(args); i++ {
		match := true
		for j := range seq {
			if args[i+j] != seq[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func toCSV(values []int) string {
	tokens := make([]string, len(values))
	for i, v := range values {
		tokens[i] = strconv.Itoa(v)
	}
	return strings.Join(tokens, ",")
}
