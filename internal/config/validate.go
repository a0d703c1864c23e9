package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"Ossctl/internal/errs"
)

var (
	ErrMissingSetting = errors.New("missing required setting")
	ErrInvalidDriver  = errors.New("invalid driver: must be exactly 's3' or 'minio'")
)

// Validate checks that every setting a store connection needs is present. It
// runs before any client is built so configuration mistakes never reach the network.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errs.Config("validate", fmt.Errorf("config is nil"))
	}
	if cfg.Store == nil {
		return errs.Config("validate", fmt.Errorf("%w: store", ErrMissingSetting))
	}
	s := cfg.Store
	required := []struct {
		name  string
		value string
		hint  string
	}{
		{"store.access_key", s.AccessKey, "OSSCTL_KEY_ID or --key-id"},
		{"store.secret_key", s.SecretKey, "OSSCTL_KEY_SECRET or --key-secret"},
		{"store.endpoint", s.Endpoint, "OSSCTL_ENDPOINT or --endpoint"},
		{"store.bucket", s.Bucket, "OSSCTL_BUCKET or --bucket"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errs.Config("validate", fmt.Errorf("%w: %s (set %s)", ErrMissingSetting, r.name, r.hint))
		}
	}
	switch s.Driver {
	case DriverS3, DriverMinIO, "":
	default:
		return errs.Config("validate", fmt.Errorf("%w: got %q", ErrInvalidDriver, s.Driver))
	}
	if _, err := url.Parse(strings.TrimSpace(s.Endpoint)); err != nil {
		return errs.Config("validate", fmt.Errorf("store.endpoint: %w", err))
	}
	if cfg.Upload != nil && cfg.Upload.Workers < 0 {
		return errs.Config("validate", fmt.Errorf("upload.workers must not be negative, got %d", cfg.Upload.Workers))
	}
	return nil
}
