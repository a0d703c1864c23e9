// Package doctor runs the environment checks behind `ossctl doctor`.
package doctor

import (
	"context"
	"fmt"
	"os"
	"time"

	"Ossctl/internal/config"
	"Ossctl/internal/listing"
)

// StoreTimeout bounds the connectivity check.
const StoreTimeout = 5 * time.Second

type CheckResult struct {
	Name   string
	OK     bool
	Detail string
}

// Opener builds a lister for the configured store.
type Opener func(ctx context.Context, cfg *config.StoreConfig) (listing.Lister, error)

func Run(ctx context.Context, cfg *config.Config, open Opener) []CheckResult {
	var results []CheckResult

	results = append(results, CheckResult{
		Name:   "config",
		OK:     cfg != nil,
		Detail: "configuration loaded",
	})

	if cfg != nil && cfg.Store != nil {
		ok, detail := checkStore(ctx, cfg.Store, open)
		results = append(results, CheckResult{Name: "store", OK: ok, Detail: detail})
	} else {
		results = append(results, CheckResult{Name: "store", OK: false, Detail: "store not configured"})
	}

	ok, detail := checkDisk(os.TempDir())
	results = append(results, CheckResult{Name: "disk", OK: ok, Detail: detail})

	return results
}

// AllOK reports whether every check passed.
func AllOK(results []CheckResult) bool {
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}

func checkStore(ctx context.Context, cfg *config.StoreConfig, open Opener) (bool, string) {
	lister, err := open(ctx, cfg)
	if err != nil {
		return false, fmt.Sprintf("client init failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(ctx, StoreTimeout)
	defer cancel()
	start := time.Now()
	if _, err := lister.ListObjects(ctx, listing.ListInput{MaxKeys: 1}); err != nil {
		return false, fmt.Sprintf("list failed: %v", err)
	}
	return true, fmt.Sprintf("%s OK (bucket=%s, endpoint=%s, %s)", cfg.Driver, cfg.Bucket, cfg.Endpoint,
		time.Since(start).Round(time.Millisecond))
}

func checkDisk(dir string) (bool, string) {
	f, err := os.CreateTemp(dir, "ossctl-doctor-*")
	if err != nil {
		return false, fmt.Sprintf("create temp file failed in %s: %v", dir, err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString("test"); err != nil {
		_ = f.Close()
		return false, fmt.Sprintf("write temp file failed: %v", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Sprintf("close temp file failed: %v", err)
	}
	return true, fmt.Sprintf("temp dir writable (%s)", dir)
}
