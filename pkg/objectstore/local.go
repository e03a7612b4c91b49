package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore copies uploads under Root. The returned location is the slash
// path relative to the output dir, e.g. published/<user>/<run>/result/merged.mp4.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root}
}

func (s *LocalStore) Upload(ctx context.Context, localPath string, key string, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := path.Clean("/" + key)
	if strings.Contains(key, "..") || clean == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	dst := filepath.Join(s.Root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	in, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return "", err
	}
	if err = out.Close(); err != nil {
		return "", err
	}
	return path.Join(filepath.Base(s.Root), strings.TrimPrefix(clean, "/")), nil
}
