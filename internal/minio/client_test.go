package minio

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Ossctl/internal/errs"
	"Ossctl/internal/listing"
)

type listCall struct {
	prefix, token string
	maxKeys       int
}

type fakeAPI struct {
	list    minio.ListBucketV2Result
	calls   []listCall
	putKey  string
	putOpts minio.PutObjectOptions
	putBody string
	removed string
	err     error
}

func (f *fakeAPI) ListObjectsV2(_, prefix, _, token, _ string, maxKeys int) (minio.ListBucketV2Result, error) {
	f.calls = append(f.calls, listCall{prefix: prefix, token: token, maxKeys: maxKeys})
	return f.list, f.err
}

func (f *fakeAPI) PutObject(_ context.Context, _, key string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	b, _ := io.ReadAll(r)
	f.putKey, f.putOpts, f.putBody = key, opts, string(b)
	return minio.UploadInfo{ETag: "etag-m"}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, _, key string, _ minio.GetObjectOptions) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(key)), nil
}

func (f *fakeAPI) RemoveObject(_ context.Context, _, key string, _ minio.RemoveObjectOptions) error {
	f.removed = key
	return f.err
}

func TestListObjects(t *testing.T) {
	at := time.Date(2024, 2, 2, 2, 2, 0, 0, time.UTC)
	api := &fakeAPI{list: minio.ListBucketV2Result{
		Contents: []minio.ObjectInfo{
			{Key: "root/a.txt", LastModified: at, Size: 3},
			{Key: ""},
			{Key: "root/d/e.txt", LastModified: at},
		},
		IsTruncated:           true,
		NextContinuationToken: "next",
	}}
	c := NewWithAPI(api, "bucket", "root")

	out, err := c.ListObjects(context.Background(), listing.ListInput{Prefix: "", MaxKeys: 30, ContinuationToken: "t0"})
	require.NoError(t, err)
	assert.Equal(t, []listCall{{prefix: "root/", token: "t0", maxKeys: 30}}, api.calls)
	require.Len(t, out.Entries, 2)
	assert.Equal(t, listing.ObjectEntry{Key: "a.txt", LastModified: at, Size: 3}, out.Entries[0])
	assert.Equal(t, "d/e.txt", out.Entries[1].Key)
	assert.Equal(t, "next", out.NextToken)

	api.list.IsTruncated = false
	out, err = c.ListObjects(context.Background(), listing.ListInput{})
	require.NoError(t, err)
	assert.Empty(t, out.NextToken)
}

func TestListObjects_CanceledContext(t *testing.T) {
	api := &fakeAPI{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewWithAPI(api, "b", "").ListObjects(ctx, listing.ListInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, api.calls)
}

func TestPutGetDelete(t *testing.T) {
	api := &fakeAPI{}
	c := NewWithAPI(api, "bucket", "")
	ctx := context.Background()

	etag, err := c.PutObject(ctx, "dir/a.txt", strings.NewReader("hi"), 2, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "etag-m", etag)
	assert.Equal(t, "dir/a.txt", api.putKey)
	assert.Equal(t, "text/plain", api.putOpts.ContentType)
	assert.Equal(t, "hi", api.putBody)

	rc, err := c.GetObject(ctx, "dir/a.txt")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "dir/a.txt", string(b))

	require.NoError(t, c.DeleteObject(ctx, "dir/a.txt"))
	assert.Equal(t, "dir/a.txt", api.removed)
}

func TestErrors(t *testing.T) {
	api := &fakeAPI{err: minio.ErrorResponse{Code: "NoSuchKey", Message: "missing"}}
	c := NewWithAPI(api, "bucket", "")

	_, err := c.GetObject(context.Background(), "gone")
	require.Error(t, err)
	assert.Equal(t, errs.KindStore, errs.KindOf(err))
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	api.err = errors.New("timeout")
	err = c.DeleteObject(context.Background(), "x")
	assert.Equal(t, errs.KindStore, errs.KindOf(err))
	assert.False(t, errors.Is(err, errs.ErrNotFound))
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		in     string
		host   string
		secure bool
	}{
		{"localhost:9000", "localhost:9000", true},
		{"http://localhost:9000", "localhost:9000", false},
		{"https://play.min.io/", "play.min.io", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			host, secure, err := splitEndpoint(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.secure, secure)
		})
	}
	_, _, err := splitEndpoint("http://")
	assert.Error(t, err)
}

var _ listing.Lister = (*Client)(nil)
