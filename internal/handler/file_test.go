package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"funny-video/internal/appdirs"
	"funny-video/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configurePathResolverForTest(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	originalResolver := appDirsResolver
	appDirsResolver = func() (appdirs.Paths, error) {
		return appdirs.Paths{
			OutputDir: filepath.Join(tempDir, "output"),
			CacheDir:  filepath.Join(tempDir, "cache"),
		}, nil
	}
	t.Cleanup(func() {
		appDirsResolver = originalResolver
	})
	return tempDir
}

func buildFileRouter() *gin.Engine {
	router := gin.New()
	h := Handler{}
	router.GET("/api/file/*filepath", h.DownloadFile)
	router.HEAD("/api/file/*filepath", h.DownloadFile)
	router.GET("/api/files", h.ListFiles)
	return router
}

func seedOutputFile(t *testing.T, tempDir, rel, content string) {
	t.Helper()
	path := filepath.Join(tempDir, "output", filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDownloadFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tempDir := configurePathResolverForTest(t)
	seedOutputFile(t, tempDir, "runs/r1/result/merged.mp4", "merged bytes")
	seedOutputFile(t, tempDir, "uploads/r1/cat.mp4", "source bytes")
	seedOutputFile(t, tempDir, "published/u1/r1/result/first_frame.jpg", "jpg")
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "output", "runs", "r1", "clips"), 0o755))

	testCases := []struct {
		name     string
		method   string
		path     string
		wantCode int
		wantBody string
	}{
		{name: "merged reel", method: http.MethodGet, path: "runs/r1/result/merged.mp4", wantCode: http.StatusOK, wantBody: "merged bytes"},
		{name: "head on upload", method: http.MethodHead, path: "uploads/r1/cat.mp4", wantCode: http.StatusOK},
		{name: "published cover", method: http.MethodGet, path: "published/u1/r1/result/first_frame.jpg", wantCode: http.StatusOK, wantBody: "jpg"},
		{name: "missing artifact", method: http.MethodHead, path: "runs/r2/result/merged.mp4", wantCode: http.StatusNotFound},
		{name: "directory", method: http.MethodGet, path: "runs/r1/clips", wantCode: http.StatusNotFound},
		{name: "empty path", method: http.MethodGet, path: "", wantCode: http.StatusNotFound},
		{name: "traversal", method: http.MethodGet, path: "runs/../../etc/passwd", wantCode: http.StatusForbidden},
	}

	router := buildFileRouter()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(tc.method, "/api/file/"+tc.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantBody != "" {
				assert.Equal(t, tc.wantBody, w.Body.String())
			}
		})
	}
}

func TestListFiles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tempDir := configurePathResolverForTest(t)

	seedOutputFile(t, tempDir, "uploads/run-9/clip.mp4", "1234")

	router := buildFileRouter()
	req, _ := http.NewRequest("GET", "/api/files", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Error int32          `json:"error"`
		Data  []dto.FileItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int32(0), body.Error)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "uploads/run-9/clip.mp4", body.Data[0].Path)
	assert.Equal(t, int64(4), body.Data[0].Size)
}

func TestListFilesWithoutUploads(t *testing.T) {
	gin.SetMode(gin.TestMode)
	configurePathResolverForTest(t)

	router := buildFileRouter()
	req, _ := http.NewRequest("GET", "/api/files", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestArtifactDownloadPath(t *testing.T) {
	tempDir := configurePathResolverForTest(t)

	got, err := artifactDownloadPath(filepath.Join(tempDir, "output", "runs", "r1", "result", "merged.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "runs/r1/result/merged.mp4", got)

	_, err = artifactDownloadPath(filepath.Join(tempDir, "elsewhere", "merged.mp4"))
	assert.Error(t, err)
}

func TestResolveDownloadPathRequiresKnownRoot(t *testing.T) {
	tempDir := configurePathResolverForTest(t)

	for _, requested := range []string{"", "/", "merged.mp4", "secrets/merged.mp4", "runs", "runs/"} {
		_, ok := resolveDownloadPath(requested)
		assert.False(t, ok, "resolveDownloadPath(%q)", requested)
	}

	got, ok := resolveDownloadPath("/uploads/r1/cat.mp4")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(tempDir, "output", "uploads", "r1", "cat.mp4"), got)
}
