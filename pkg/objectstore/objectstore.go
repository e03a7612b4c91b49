// Package objectstore uploads published reels to MinIO/S3, Aliyun OSS or a
// local directory.
package objectstore

import (
	"path"
	"path/filepath"
	"strings"
)

// ContentTypeFor maps a file suffix to the content type sent with an upload.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".mp4", ".mkv", ".avi", ".mov":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}

// ObjectKey builds {userId}/{runId}/{relPath} with forward slashes.
func ObjectKey(userId, runId, relPath string) string {
	rel := strings.TrimLeft(filepath.ToSlash(relPath), "/")
	return path.Join(userId, runId, rel)
}
