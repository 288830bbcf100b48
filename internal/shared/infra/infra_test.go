package infra

import (
	"context"
	"path/filepath"
	"testing"

	"hamutea-admin/internal/config"
	"hamutea-admin/internal/shared/objstore"
	"hamutea-admin/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithSQLiteAndLocalUploads(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "h.db"), AutoMigrate: true},
		Upload:   config.UploadConfig{Backend: config.UploadBackendLocal, Dir: filepath.Join(dir, "uploads")},
	}
	ctx := context.Background()

	inf, err := New(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	defer inf.Close()

	require.NoError(t, inf.Storage.Ping(ctx))
	users, err := inf.Storage.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.IsType(t, &objstore.LocalStore{}, inf.Objects)
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), config.DatabaseConfig{Driver: "oracle"}, logging.Discard())
	assert.Error(t, err)
}

func TestOpenObjectStoreRejectsUnknownBackend(t *testing.T) {
	cfg := &config.Config{Upload: config.UploadConfig{Backend: "ftp"}}
	_, err := OpenObjectStore(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}
