// Package transfer copies objects from the store to local files.
package transfer

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"Ossctl/internal/errs"
)

var errEmptyKey = errors.New("empty object key")

// Getter opens an object for reading.
type Getter interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
}

// Download writes the object key to dest and returns the path written and the
// number of bytes copied. If dest is an existing directory or ends in a path
// separator the object's base name is appended. Parent directories are created
// and an existing file is truncated.
func Download(ctx context.Context, store Getter, key, dest string) (string, int64, error) {
	if strings.TrimSpace(key) == "" {
		return "", 0, errs.Input("download", errEmptyKey)
	}
	dstPath := resolveDest(key, dest)

	rc, err := store.GetObject(ctx, key)
	if err != nil {
		return "", 0, err
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return "", 0, errs.IO("create directory", err).WithKey(dstPath)
	}
	f, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", 0, errs.IO("create file", err).WithKey(dstPath)
	}
	n, err := io.Copy(f, rc)
	if err != nil {
		_ = f.Close()
		return "", n, errs.IO("write file", err).WithKey(dstPath)
	}
	if err := f.Close(); err != nil {
		return "", n, errs.IO("close file", err).WithKey(dstPath)
	}
	return dstPath, n, nil
}

func resolveDest(key, dest string) string {
	base := path.Base(strings.TrimSuffix(key, "/"))
	if dest == "" || dest == "." {
		return base
	}
	if strings.HasSuffix(dest, "/") || strings.HasSuffix(dest, string(os.PathSeparator)) {
		return filepath.Join(dest, base)
	}
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return filepath.Join(dest, base)
	}
	return dest
}
