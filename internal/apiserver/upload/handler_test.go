package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hamutea-admin/internal/apiserver/auth"
	"hamutea-admin/internal/apiserver/httpx"
	"hamutea-admin/internal/shared/model"
	"hamutea-admin/internal/shared/objstore"
	"hamutea-admin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = auth.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}

func newMux(objects objstore.Store, maxBytes int64) *http.ServeMux {
	rs := httpx.NewResponder(true, nil)
	mux := http.NewServeMux()
	NewHandler(objects, maxBytes, auth.NewGate(testCfg, rs, nil), rs, nil).RegisterRoutes(mux)
	return mux
}

func token(t *testing.T, role model.UserRole) string {
	t.Helper()
	tok, _, err := auth.IssueToken(testCfg, 1, role)
	require.NoError(t, err)
	return tok
}

// multipartRequest field 为空时不附带文件
func multipartRequest(t *testing.T, field, filename string, content []byte, tok string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "x"))
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/product-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req
}

func TestProductImage(t *testing.T) {
	dir := t.TempDir()
	store, err := objstore.NewLocalStore(dir)
	require.NoError(t, err)
	mux := newMux(store, 0)

	content := []byte("\x89PNG fake image bytes")
	w := testutil.Serve(mux, multipartRequest(t, "image", "Cup.PNG", content, token(t, model.UserRoleAdmin)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res uploadResult
	env := testutil.Decode(t, w, &res)
	assert.True(t, env.Success)
	assert.Equal(t, "File uploaded successfully", env.Message)
	assert.True(t, strings.HasSuffix(res.Filename, ".png"), res.Filename)
	assert.Equal(t, "/uploads/products/"+res.Filename, res.Path)
	assert.EqualValues(t, len(content), res.Size)

	stored, err := os.ReadFile(filepath.Join(dir, "products", res.Filename))
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	rc, info, err := store.Open(context.Background(), "products/"+res.Filename)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "image/png", info.ContentType)
}

func TestProductImageNamesAreUnique(t *testing.T) {
	store, err := objstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	mux := newMux(store, 0)
	tok := token(t, model.UserRoleAdmin)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		w := testutil.Serve(mux, multipartRequest(t, "image", "same.jpg", []byte("jpeg"), tok))
		require.Equal(t, http.StatusOK, w.Code)
		var res uploadResult
		testutil.Decode(t, w, &res)
		assert.False(t, seen[res.Filename], "duplicate filename %s", res.Filename)
		seen[res.Filename] = true
	}
}

func TestProductImageRejects(t *testing.T) {
	dir := t.TempDir()
	store, err := objstore.NewLocalStore(dir)
	require.NoError(t, err)
	mux := newMux(store, 1024)
	admin := token(t, model.UserRoleAdmin)

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantMsg    string
	}{
		{"no token", multipartRequest(t, "image", "a.png", []byte("x"), ""), 401, "Access token required"},
		{"not admin", multipartRequest(t, "image", "a.png", []byte("x"), token(t, model.UserRoleUser)), 403, "Admin access required"},
		{"no file", multipartRequest(t, "", "", nil, admin), 400, "No file uploaded"},
		{"wrong field", multipartRequest(t, "photo", "a.png", []byte("x"), admin), 400, "No file uploaded"},
		{"not multipart", func() *http.Request {
			r := testutil.Request(t, http.MethodPost, "/api/upload/product-image", map[string]string{"image": "a.png"})
			r.Header.Set("Authorization", "Bearer "+admin)
			return r
		}(), 400, "No file uploaded"},
		{"bad extension", multipartRequest(t, "image", "script.exe", []byte("MZ"), admin), 400, "Only image files are allowed (jpg, jpeg, png, gif, webp)"},
		{"no extension", multipartRequest(t, "image", "image", []byte("x"), admin), 400, "Only image files are allowed (jpg, jpeg, png, gif, webp)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.Serve(mux, tt.req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			env := testutil.Decode(t, w, nil)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantMsg, env.Message)
		})
	}

	t.Run("too large", func(t *testing.T) {
		big := bytes.Repeat([]byte("a"), 4096)
		w := testutil.Serve(mux, multipartRequest(t, "image", "big.png", big, admin))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, testutil.Decode(t, w, nil).Success)
	})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads must not be stored")
}

type brokenStore struct{}

func (brokenStore) Put(context.Context, string, io.Reader, int64, string) error {
	return errors.New("disk full")
}

func (brokenStore) Open(context.Context, string) (io.ReadCloser, *objstore.ObjectInfo, error) {
	return nil, nil, objstore.ErrNotFound
}

func TestProductImageStoreFailure(t *testing.T) {
	mux := newMux(brokenStore{}, 0)
	w := testutil.Serve(mux, multipartRequest(t, "image", "a.webp", []byte("x"), token(t, model.UserRoleAdmin)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := testutil.Decode(t, w, nil)
	assert.Equal(t, "Error uploading file", env.Message)
	assert.Equal(t, "disk full", env.Error)
}
