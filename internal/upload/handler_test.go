package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMultipartRequest(t *testing.T, fieldName, fileName, content string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	return r
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestHandler_ServeHTTP(t *testing.T) {
	handler, err := NewHandler(t.TempDir())
	require.NoError(t, err)

	t.Run("Successful upload stores file and returns its path", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newMultipartRequest(t, "file", "cat.png", "png-bytes"))

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		assert.True(t, strings.HasPrefix(resp.FilePath, "/uploads/"), "unexpected path %q", resp.FilePath)
		assert.True(t, strings.HasSuffix(resp.FilePath, "-cat.png"), "unexpected path %q", resp.FilePath)

		stored, err := os.ReadFile(filepath.Join(handler.Dir, filepath.Base(resp.FilePath)))
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(stored))
	})

	t.Run("Path traversal in filename is stripped", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newMultipartRequest(t, "file", "../../etc/passwd", "data"))

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, strings.HasSuffix(resp.FilePath, "-passwd"), "unexpected path %q", resp.FilePath)
		assert.NotContains(t, resp.FilePath, "..")
	})

	t.Run("Error when file field is missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, newMultipartRequest(t, "wrong-field", "cat.png", "data"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "No file uploaded", resp.Error)
	})

	t.Run("Error when body is not multipart", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("plain body"))
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error on non-POST method", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/upload", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}
