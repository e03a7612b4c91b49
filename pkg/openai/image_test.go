package openai

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	apperrors "funny-video/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "snapshot_2s.png")
	require.NoError(t, os.WriteFile(p, []byte("png"), 0o644))
	return p
}

func TestRestyleDecodesInlineImage(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("edited"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/edits", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "make it funny", r.FormValue("prompt"))
		assert.Equal(t, "gpt-image-1", r.FormValue("model"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[{"b64_json":"` + encoded + `"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk", "gpt-image-1", "")
	data, err := c.Restyle(context.Background(), writeImage(t), "make it funny")
	require.NoError(t, err)
	assert.Equal(t, "edited", string(data))
}

func TestRestyleFetchesImageUrl(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/files/out.png" {
			_, _ = w.Write([]byte("from-url"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[{"url":"` + srv.URL + `/files/out.png"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk", "dall-e-2", "")
	data, err := c.Restyle(context.Background(), writeImage(t), "p")
	require.NoError(t, err)
	assert.Equal(t, "from-url", string(data))
}

func TestRestyleEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk", "dall-e-2", "")
	_, err := c.Restyle(context.Background(), writeImage(t), "p")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeRestyleBadResponse))
}
