package objstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hamutea-admin/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"products/a.png", false},
		{"a.png", false},
		{"", true},
		{"/etc/passwd", true},
		{"products/../../etc/passwd", true},
		{"products//a.png", true},
		{"./a.png", true},
		{`products\a.png`, true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, err := CleanKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocalStorePutOpen(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocalStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	body := "\x89PNG fake image"
	require.NoError(t, s.Put(ctx, "products/x.png", strings.NewReader(body), int64(len(body)), "image/png"))

	_, err = os.Stat(filepath.Join(root, "products", "x.png"))
	require.NoError(t, err)

	rc, info, err := s.Open(ctx, "products/x.png")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
	assert.EqualValues(t, len(body), info.Size)
	assert.Equal(t, "image/png", info.ContentType)
}

func TestLocalStoreErrors(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = s.Open(ctx, "products/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = s.Open(ctx, "../secret")
	assert.ErrorIs(t, err, ErrInvalidKey)

	err = s.Put(ctx, "products/short.png", strings.NewReader("abc"), 10, "image/png")
	assert.Error(t, err)
	_, _, err = s.Open(ctx, "products/short.png")
	assert.ErrorIs(t, err, ErrNotFound, "failed put must not leave a file behind")

	require.NoError(t, s.Put(ctx, "products/a.png", strings.NewReader("x"), -1, ""))
	_, _, err = s.Open(ctx, "products")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewMinIOStoreRequiresCredentials(t *testing.T) {
	_, err := NewMinIOStore(minioConfig("localhost:9000", "", ""), nil)
	assert.Error(t, err)
	_, err = NewMinIOStore(minioConfig("", "ak", "sk"), nil)
	assert.Error(t, err)

	s, err := NewMinIOStore(minioConfig("localhost:9000", "ak", "sk"), nil)
	require.NoError(t, err)
	assert.Equal(t, "hamutea", s.bucket)
}

func minioConfig(endpoint, ak, sk string) config.MinIOConfig {
	return config.MinIOConfig{Endpoint: endpoint, AccessKey: ak, SecretKey: sk}
}
