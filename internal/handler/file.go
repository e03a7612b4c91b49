package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"funny-video/internal/appdirs"
	"funny-video/internal/dto"
	"funny-video/internal/response"
	apperrors "funny-video/pkg/errors"

	"github.com/gin-gonic/gin"
)

func (h Handler) DownloadFile(c *gin.Context) {
	requestedFile := c.Param("filepath")
	if hasParentTraversal(requestedFile) {
		response.Abort(c, http.StatusForbidden, apperrors.New(apperrors.CodeInvalidParams, "非法的文件路径"))
		return
	}

	localFilePath, ok := resolveDownloadPath(requestedFile)
	if !ok {
		response.ErrorResponse(c, apperrors.ErrFileNotFound)
		return
	}
	if info, err := os.Stat(localFilePath); err != nil || info.IsDir() {
		response.ErrorResponse(c, apperrors.ErrFileNotFound)
		return
	}
	c.FileAttachment(localFilePath, filepath.Base(localFilePath))
}

// ListFiles lists uploaded source videos, newest first.
func (h Handler) ListFiles(c *gin.Context) {
	root := preferredUploadRoot()
	items := []dto.FileItem{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		items = append(items, dto.FileItem{
			Name:    d.Name(),
			Path:    filepath.ToSlash(filepath.Join(appdirs.UploadRootName, rel)),
			Size:    info.Size(),
			ModTime: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "读取文件列表失败", err))
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ModTime > items[j].ModTime })
	response.Success(c, items)
}
