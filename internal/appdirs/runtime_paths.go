package appdirs

import (
	"path/filepath"
	"strings"
)

const (
	RunRootName       = "runs"
	UploadRootName    = "uploads"
	PublishedRootName = "published"
	dbFileName        = "funny.db"
)

// RunRoot is the parent of every per-run working directory.
func (p Paths) RunRoot() string {
	return filepath.Join(p.output(), RunRootName)
}

// RunDir is owned by exactly one run.
func (p Paths) RunDir(runId string) string {
	return filepath.Join(p.RunRoot(), runId)
}

func (p Paths) UploadRoot() string {
	return filepath.Join(p.output(), UploadRootName)
}

// PublishedRoot backs the local object store.
func (p Paths) PublishedRoot() string {
	return filepath.Join(p.output(), PublishedRootName)
}

func (p Paths) DBPath() string {
	return filepath.Join(cleanOr(p.CacheDir, "cache"), dbFileName)
}

func (p Paths) output() string {
	return cleanOr(p.OutputDir, ".")
}

func cleanOr(dir, fallback string) string {
	if d := strings.TrimSpace(dir); d != "" {
		return filepath.Clean(d)
	}
	return fallback
}
