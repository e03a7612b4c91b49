// Package deps checks the external tools and assets a reel run needs before
// the server or CLI starts accepting work.
package deps

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"funny-video/internal/storage"
)

type Tier string

const (
	TierMust   Tier = "must"
	TierShould Tier = "should"
)

type Kind string

const (
	KindBinary Kind = "binary"
	KindFile   Kind = "file"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusMissing Status = "missing"
	StatusError   Status = "error"
)

// Requirement describes one thing a run depends on. Configured wins over a
// PATH lookup of Command; file requirements are only ever stat'ed.
type Requirement struct {
	ID         string
	Name       string
	Kind       Kind
	Tier       Tier
	Command    string
	Configured string
	Hint       string
}

type Check struct {
	Requirement
	Path       string
	Status     Status
	FromConfig bool
	Version    string
	Err        string
}

func (c Check) OK() bool {
	return c.Status == StatusOK
}

// Checker carries the filesystem hooks so tests can fake them.
type Checker struct {
	LookPath func(file string) (string, error)
	Abs      func(path string) (string, error)
	Stat     func(name string) (os.FileInfo, error)
	Version  func(binPath string) string
}

func NewChecker() Checker {
	return Checker{
		LookPath: exec.LookPath,
		Abs:      filepath.Abs,
		Stat:     os.Stat,
		Version:  binaryVersion,
	}
}

func (c Checker) Check(req Requirement) Check {
	check := Check{Requirement: req}
	configured := strings.TrimSpace(req.Configured)

	var err error
	switch {
	case req.Kind == KindFile:
		check.FromConfig = true
		check.Path, err = c.statFile(configured)
	case configured != "":
		check.FromConfig = true
		check.Path, err = c.configuredBinary(configured)
	default:
		check.Path, err = c.LookPath(req.Command)
	}

	if err != nil {
		check.Err = err.Error()
		check.Status = StatusError
		if isMissing(err) {
			check.Status = StatusMissing
		}
		return check
	}

	check.Status = StatusOK
	if req.Kind == KindBinary && c.Version != nil {
		check.Version = c.Version(check.Path)
	}
	return check
}

func (c Checker) configuredBinary(configured string) (string, error) {
	if p, err := c.LookPath(configured); err == nil {
		return p, nil
	}
	return c.statFile(configured)
}

func (c Checker) statFile(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("path not configured: %w", os.ErrNotExist)
	}
	abs, err := c.Abs(p)
	if err != nil {
		return p, err
	}
	info, err := c.Stat(abs)
	if err != nil {
		return abs, err
	}
	if info.IsDir() {
		return abs, fmt.Errorf("%s is a directory", abs)
	}
	return abs, nil
}

// binaryVersion returns the first line of `<bin> -version`, empty on failure.
func binaryVersion(binPath string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, binPath, "-version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := bufio.NewReader(bytes.NewReader(out)).ReadLine()
	return strings.TrimSpace(string(line))
}

// Inventory lists what a reel run needs. ffmpeg drives every media stage; the
// background track only changes the merged audio.
func Inventory(bgmPath string) []Requirement {
	return []Requirement{
		{
			ID:         "ffmpeg",
			Name:       "ffmpeg",
			Kind:       KindBinary,
			Tier:       TierMust,
			Command:    "ffmpeg",
			Configured: storage.FfmpegPath,
			Hint:       "Used for probing, snapshots, clip synthesis, segmenting and merging. Set [ffmpeg].path or add it to PATH.",
		},
		{
			ID:         "bgm",
			Name:       "background music",
			Kind:       KindFile,
			Tier:       TierShould,
			Configured: strings.TrimSpace(bgmPath),
			Hint:       "Without it the merged reel keeps only the source audio. Set [app].bgm_path.",
		},
	}
}

func CheckAll(reqs []Requirement, checker Checker) []Check {
	checks := make([]Check, 0, len(reqs))
	for _, req := range reqs {
		checks = append(checks, checker.Check(req))
	}
	return checks
}

func Diagnose(bgmPath string) []Check {
	return CheckAll(Inventory(bgmPath), NewChecker())
}

// CheckDependency runs the inventory, points storage.FfmpegPath at the
// resolved binary and fails when a must-have requirement is not usable.
func CheckDependency(bgmPath string) ([]Check, error) {
	checks := Diagnose(bgmPath)
	return checks, applyChecks(checks)
}

func applyChecks(checks []Check) error {
	var missing []string
	for _, c := range checks {
		if c.ID == "ffmpeg" && c.OK() {
			storage.FfmpegPath = c.Path
		}
		if c.Tier == TierMust && !c.OK() {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required dependencies: %s", strings.Join(missing, ", "))
	}
	return nil
}

// FormatReport renders the checks as an aligned table for -diagnose.
func FormatReport(checks []Check) string {
	if len(checks) == 0 {
		return "No dependencies to diagnose."
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTIER\tSTATUS\tPATH\tVERSION")
	for _, c := range checks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Name, c.Tier, c.Status, orDash(c.Path), orDash(c.Version))
	}
	_ = w.Flush()

	for _, c := range checks {
		if c.OK() {
			continue
		}
		fmt.Fprintf(&buf, "%s: %s\n", c.Name, c.Err)
		if c.Hint != "" {
			fmt.Fprintf(&buf, "  hint: %s\n", c.Hint)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func isMissing(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "not found") || strings.Contains(message, "cannot find")
}
