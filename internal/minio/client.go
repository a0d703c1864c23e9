// Package minio is the object store driver built on minio-go.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"Ossctl/internal/errs"
	"Ossctl/internal/keyspace"
	"Ossctl/internal/listing"
	"Ossctl/internal/logger"
)

// API is the subset of minio operations the driver uses.
type API interface {
	ListObjectsV2(bucketName, objectPrefix, startAfter, continuationToken, delimiter string, maxKeys int) (minio.ListBucketV2Result, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// wrappedCore adapts *minio.Core to API.
type wrappedCore struct {
	core *minio.Core
}

func (w *wrappedCore) ListObjectsV2(bucketName, objectPrefix, startAfter, continuationToken, delimiter string, maxKeys int) (minio.ListBucketV2Result, error) {
	return w.core.ListObjectsV2(bucketName, objectPrefix, startAfter, continuationToken, delimiter, maxKeys)
}

func (w *wrappedCore) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.core.Client.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}

// GetObject stats the object before returning it so a missing key fails here
// rather than on the first read.
func (w *wrappedCore) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := w.core.Client.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, err
	}
	return obj, nil
}

func (w *wrappedCore) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.core.Client.RemoveObject(ctx, bucketName, objectName, opts)
}

type Options struct {
	Endpoint           string
	Region             string
	AccessKey          string
	SecretKey          string
	Bucket             string
	Prefix             string
	InsecureSkipVerify bool
}

type Client struct {
	api    API
	bucket string
	prefix string
}

// New connects to endpoint, which may be a bare host:port (HTTPS) or a URL
// whose scheme selects TLS.
func New(opts Options) (*Client, error) {
	host, secure, err := splitEndpoint(opts.Endpoint)
	if err != nil {
		return nil, errs.Config("minio endpoint", err)
	}
	mopts := &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: secure,
		Region: opts.Region,
	}
	if opts.InsecureSkipVerify && secure {
		tr, err := minio.DefaultTransport(secure)
		if err != nil {
			return nil, errs.Config("minio transport", err)
		}
		tr.TLSClientConfig.InsecureSkipVerify = true
		mopts.Transport = tr
	}
	core, err := minio.NewCore(host, mopts)
	if err != nil {
		return nil, errs.Config("minio client", err)
	}
	return NewWithAPI(&wrappedCore{core: core}, opts.Bucket, opts.Prefix), nil
}

func NewWithAPI(api API, bucket, prefix string) *Client {
	return &Client{api: api, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func splitEndpoint(endpoint string) (host string, secure bool, err error) {
	endpoint = strings.TrimSpace(endpoint)
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), true, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, err
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("endpoint %q has no host", endpoint)
	}
	return u.Host, u.Scheme != "http", nil
}

func (c *Client) Bucket() string {
	return c.bucket
}

func (c *Client) ListObjects(ctx context.Context, in listing.ListInput) (listing.ListOutput, error) {
	if err := ctx.Err(); err != nil {
		return listing.ListOutput{}, wrapErr("list", in.Prefix, err)
	}
	prefix := keyspace.Join(c.prefix, in.Prefix)
	start := time.Now()
	res, err := c.api.ListObjectsV2(c.bucket, prefix, "", in.ContinuationToken, "", int(in.MaxKeys))
	if err != nil {
		return listing.ListOutput{}, wrapErr("list", in.Prefix, err)
	}
	logger.Log.Debug().Str("op", "list").Str("prefix", prefix).Dur("took", time.Since(start)).Msg("minio request")

	out := listing.ListOutput{Entries: make([]listing.ObjectEntry, 0, len(res.Contents))}
	for _, obj := range res.Contents {
		if obj.Key == "" {
			continue
		}
		out.Entries = append(out.Entries, listing.ObjectEntry{
			Key:          keyspace.Strip(c.prefix, obj.Key),
			LastModified: obj.LastModified,
			Size:         obj.Size,
		})
	}
	if res.IsTruncated {
		out.NextToken = res.NextContinuationToken
	}
	return out, nil
}

func (c *Client) PutObject(ctx context.Context, key string, body io.Reader, contentLength int64, contentType string) (string, error) {
	info, err := c.api.PutObject(ctx, c.bucket, keyspace.Join(c.prefix, key), body, contentLength, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", wrapErr("put", key, err)
	}
	return info.ETag, nil
}

func (c *Client) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := c.api.GetObject(ctx, c.bucket, keyspace.Join(c.prefix, key), minio.GetObjectOptions{})
	if err != nil {
		return nil, wrapErr("get", key, err)
	}
	return rc, nil
}

func (c *Client) DeleteObject(ctx context.Context, key string) error {
	if err := c.api.RemoveObject(ctx, c.bucket, keyspace.Join(c.prefix, key), minio.RemoveObjectOptions{}); err != nil {
		return wrapErr("delete", key, err)
	}
	return nil
}

func wrapErr(op, key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		err = errs.NotFound(err)
	}
	return errs.Store("minio "+op, err).WithKey(key)
}
