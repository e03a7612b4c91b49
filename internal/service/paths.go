package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"funny-video/internal/appdirs"
	"funny-video/internal/types"
)

var appDirsResolver = appdirs.Resolve

func resolveRunDir(runId string) (string, error) {
	if strings.TrimSpace(runId) == "" {
		return "", fmt.Errorf("run id is empty")
	}
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return dirs.RunDir(runId), nil
}

func runDirsAt(root string) types.RunDirs {
	return types.RunDirs{
		Root:      root,
		Snapshots: filepath.Join(root, "snapshots"),
		Funnies:   filepath.Join(root, "funnies"),
		Result:    filepath.Join(root, "result"),
	}
}

// prepareRunDirs creates the working tree of a run under the run root.
func prepareRunDirs(runId string) (types.RunDirs, error) {
	root, err := resolveRunDir(runId)
	if err != nil {
		return types.RunDirs{}, err
	}
	dirs := runDirsAt(root)
	for _, d := range []string{dirs.Snapshots, dirs.Funnies, dirs.Result} {
		if err = os.MkdirAll(d, 0o755); err != nil {
			return types.RunDirs{}, fmt.Errorf("create run dir %s: %w", d, err)
		}
	}
	return dirs, nil
}
