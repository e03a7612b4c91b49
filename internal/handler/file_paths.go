package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"funny-video/internal/appdirs"
)

var appDirsResolver = appdirs.Resolve

// downloadRoots maps the first segment of a download path to the output
// directory it is served from.
var downloadRoots = map[string]func(appdirs.Paths) string{
	appdirs.RunRootName:       appdirs.Paths.RunRoot,
	appdirs.UploadRootName:    appdirs.Paths.UploadRoot,
	appdirs.PublishedRootName: appdirs.Paths.PublishedRoot,
}

// rootCandidates returns the resolved directory for alias followed by the
// working-directory fallback.
func rootCandidates(alias string) []string {
	candidates := make([]string, 0, 2)
	if root, ok := downloadRoots[alias]; ok {
		if dirs, err := appDirsResolver(); err == nil {
			candidates = append(candidates, root(dirs))
		}
	}
	return uniquePaths(append(candidates, alias)...)
}

func preferredUploadRoot() string {
	return rootCandidates(appdirs.UploadRootName)[0]
}

// resolveDownloadPath maps "<alias>/<rel>" to a file under that root. The first
// existing candidate wins, otherwise the first in-root candidate is returned
// so the caller can report it as missing.
func resolveDownloadPath(requested string) (string, bool) {
	requested = strings.TrimLeft(strings.TrimSpace(filepath.ToSlash(requested)), "/")
	if requested == "" || hasParentTraversal(requested) {
		return "", false
	}
	alias, rel, _ := strings.Cut(requested, "/")
	if _, known := downloadRoots[alias]; !known || strings.Trim(rel, "/") == "" {
		return "", false
	}

	var fallback string
	for _, root := range rootCandidates(alias) {
		candidate := filepath.Join(root, filepath.FromSlash(rel))
		if !isPathWithinRoot(root, candidate) {
			continue
		}
		if fallback == "" {
			fallback = candidate
		}
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return fallback, fallback != ""
}

// artifactDownloadPath maps a file inside a run dir to the path served by
// DownloadFile, e.g. runs/<id>/result/merged.mp4.
func artifactDownloadPath(localPath string) (string, error) {
	for _, root := range rootCandidates(appdirs.RunRootName) {
		if !isPathWithinRoot(root, localPath) {
			continue
		}
		rel, err := filepath.Rel(root, filepath.Clean(localPath))
		if err != nil || rel == "." {
			continue
		}
		return filepath.ToSlash(filepath.Join(appdirs.RunRootName, rel)), nil
	}
	return "", fmt.Errorf("run artifact path %q is outside the run root", localPath)
}

func uniquePaths(values ...string) []string {
	seen := make(map[string]struct{}, len(values))
	paths := make([]string, 0, len(values))
	for _, value := range values {
		cleaned := strings.TrimSpace(value)
		if cleaned == "" {
			continue
		}
		cleaned = filepath.Clean(cleaned)
		if _, exists := seen[cleaned]; exists {
			continue
		}
		seen[cleaned] = struct{}{}
		paths = append(paths, cleaned)
	}
	return paths
}

func isPathWithinRoot(root, candidate string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(candidate))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func hasParentTraversal(path string) bool {
	for _, part := range strings.Split(strings.ReplaceAll(path, "\\", "/"), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
