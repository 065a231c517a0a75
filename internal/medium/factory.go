package medium

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/folio"
)

// NewMediumFromConfig creates a Medium implementation based on the medium config type.
func NewMediumFromConfig(ctx context.Context, cfg config.MediumConfig) (folio.Medium, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryMedium(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem medium requires fs_root to be set")
		}
		m, err := NewFileSystemMedium(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite medium requires sqlite_path to be set")
		}
		m, err := database.NewSQLiteMedium(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis medium requires redis_addr to be set")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedisMedium(client, cfg.RedisPrefix), nil
	case "s3":
		m, err := NewS3Medium(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown medium type: %s", cfg.Type)
	}
}
