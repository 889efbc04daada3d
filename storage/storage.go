package storage

import (
	"fmt"

	"b2gateway/config"

	"go.uber.org/zap"
)

// Make sure every driver satisfies ObjectStorage
var (
	_ ObjectStorage = (*MinioStorage)(nil)
	_ ObjectStorage = (*S3Storage)(nil)
	_ ObjectStorage = (*MemoryStorage)(nil)
)

// New creates the storage driver selected by cfg.Driver
func New(cfg config.StorageConfig, logger *zap.Logger) (ObjectStorage, error) {
	switch cfg.Driver {
	case config.DriverMinio:
		s, err := NewMinioStorage(cfg, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverS3:
		return NewS3Storage(cfg, logger), nil
	case config.DriverMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
