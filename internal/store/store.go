// Package store opens the object store driver named by the configuration.
package store

import (
	"context"
	"fmt"
	"io"

	"Ossctl/internal/config"
	"Ossctl/internal/errs"
	"Ossctl/internal/listing"
	"Ossctl/internal/minio"
	"Ossctl/internal/s3"
)

// Store is the object store capability every command works against.
type Store interface {
	listing.Lister
	PutObject(ctx context.Context, key string, body io.Reader, contentLength int64, contentType string) (string, error)
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, key string) error
}

var (
	_ Store = (*s3.Client)(nil)
	_ Store = (*minio.Client)(nil)
)

func Open(ctx context.Context, cfg *config.StoreConfig) (Store, error) {
	if cfg == nil {
		return nil, errs.Config("open store", config.ErrMissingSetting)
	}
	insecure := cfg.TLS != nil && cfg.TLS.InsecureSkipVerify

	switch cfg.Driver {
	case "", config.DriverS3:
		c, err := s3.New(ctx, s3.Options{
			Endpoint:           cfg.Endpoint,
			Region:             cfg.Region,
			AccessKey:          cfg.AccessKey,
			SecretKey:          cfg.SecretKey,
			Bucket:             cfg.Bucket,
			Prefix:             config.NormalizePrefix(cfg.Prefix),
			PathStyle:          cfg.PathStyle,
			InsecureSkipVerify: insecure,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.DriverMinIO:
		c, err := minio.New(minio.Options{
			Endpoint:           cfg.Endpoint,
			Region:             cfg.Region,
			AccessKey:          cfg.AccessKey,
			SecretKey:          cfg.SecretKey,
			Bucket:             cfg.Bucket,
			Prefix:             config.NormalizePrefix(cfg.Prefix),
			InsecureSkipVerify: insecure,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, errs.Config("open store", fmt.Errorf("%w: %q", config.ErrInvalidDriver, cfg.Driver))
	}
}
