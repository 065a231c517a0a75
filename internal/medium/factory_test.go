package medium

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/config"
)

func TestNewMediumFromConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("memory medium", func(t *testing.T) {
		got, err := NewMediumFromConfig(ctx, config.MediumConfig{Type: "memory"})
		require.NoError(t, err)
		assert.IsType(t, &MemoryMedium{}, got)
	})

	t.Run("filesystem medium", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "data")
		got, err := NewMediumFromConfig(ctx, config.MediumConfig{Type: "filesystem", FSRoot: root})
		require.NoError(t, err)
		assert.IsType(t, &FileSystemMedium{}, got)
		assert.DirExists(t, root)
	})

	t.Run("filesystem without root", func(t *testing.T) {
		got, err := NewMediumFromConfig(ctx, config.MediumConfig{Type: "filesystem"})
		assert.Error(t, err)
		assert.Nil(t, got)
	})

	t.Run("sqlite medium", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "folio.db")
		got, err := NewMediumFromConfig(ctx, config.MediumConfig{Type: "sqlite", SQLitePath: path})
		require.NoError(t, err)
		defer got.Close()
		assert.NoError(t, got.ValidateSetup(ctx))
		assert.FileExists(t, path)
	})

	t.Run("sqlite without path", func(t *testing.T) {
		got, err := NewMediumFromConfig(ctx, config.MediumConfig{Type: "sqlite"})
		assert.Error(t, err)
		assert.Nil(t, got)
	})

	t.Run("redis medium", func(t *testing.T) {
		mr := miniredis.RunT(t)
		got, err := NewMediumFromConfig(ctx, config.MediumConfig{Type: "redis", RedisAddr: mr.Addr()})
		require.NoError(t, err)
		defer got.Close()
		assert.NoError(t, got.ValidateSetup(ctx))
	})

	t.Run("redis without address", func(t *testing.T) {
		_, err := NewMediumFromConfig(ctx, config.MediumConfig{Type: "redis"})
		assert.Error(t, err)
	})

	t.Run("s3 medium", func(t *testing.T) {
		got, err := NewMediumFromConfig(ctx, config.MediumConfig{
			Type:              "s3",
			S3Bucket:          "portfolio",
			S3Prefix:          "docs",
			S3Region:          "us-east-1",
			S3Endpoint:        "http://127.0.0.1:9000",
			S3AccessKeyID:     "test",
			S3SecretAccessKey: "test",
		})
		require.NoError(t, err)
		s3m, ok := got.(*S3Medium)
		require.True(t, ok)
		assert.Equal(t, "docs/portfolio_projects.json", s3m.objectKey("portfolio_projects"))
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		got, err := NewMediumFromConfig(ctx, config.MediumConfig{Type: "s3"})
		assert.Error(t, err)
		assert.Nil(t, got)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewMediumFromConfig(ctx, config.MediumConfig{Type: "floppy"})
		assert.Error(t, err)
	})
}
