package s3

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"Ossctl/internal/errs"
	"Ossctl/internal/listing"
	"Ossctl/internal/logger"
)

const (
	MinPartSizeMB    = 5
	MinPartSizeBytes = MinPartSizeMB * 1024 * 1024

	// MultipartThreshold is the object size from which PutObject switches to a multipart upload.
	MultipartThreshold = 64 * 1024 * 1024
)

// API is the subset of *s3.Client used here.
type API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

type Options struct {
	Endpoint           string
	Region             string
	AccessKey          string
	SecretKey          string
	Bucket             string
	Prefix             string
	PathStyle          bool
	InsecureSkipVerify bool
}

type Client struct {
	client API
	bucket string
	prefix string
}

func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	endpointURL, err := url.Parse(strings.TrimSpace(opts.Endpoint))
	if err != nil {
		return nil, errs.Config("s3 endpoint", err)
	}
	if endpointURL.Scheme == "" {
		endpointURL, err = url.Parse("https://" + strings.TrimSpace(opts.Endpoint))
		if err != nil {
			return nil, errs.Config("s3 endpoint", err)
		}
	}

	cfg := aws.Config{
		Region:      opts.Region,
		Credentials: credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		// Retries are left to the caller; a failed call surfaces immediately.
		Retryer: func() aws.Retryer { return aws.NopRetryer{} },
	}

	var httpClient aws.HTTPClient = http.DefaultClient
	if opts.InsecureSkipVerify {
		httpClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpointURL.String())
		o.UsePathStyle = opts.PathStyle
		o.HTTPClient = httpClient
	})

	return NewWithAPI(client, opts.Bucket, opts.Prefix), nil
}

// NewWithAPI wraps an existing API implementation.
func NewWithAPI(api API, bucket, prefix string) *Client {
	return &Client{
		client: api,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (c *Client) Bucket() string {
	return c.bucket
}

func (c *Client) Prefix() string {
	return c.prefix
}

// ListObjects fetches one page of keys. Returned keys are relative to the root prefix.
func (c *Client) ListObjects(ctx context.Context, in listing.ListInput) (listing.ListOutput, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(c.Key(in.Prefix)),
	}
	if in.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(in.MaxKeys)
	}
	if in.ContinuationToken != "" {
		input.ContinuationToken = aws.String(in.ContinuationToken)
	}

	start := time.Now()
	out, err := c.client.ListObjectsV2(ctx, input)
	if err != nil {
		return listing.ListOutput{}, wrapErr("list", in.Prefix, err)
	}
	logger.Log.Debug().Str("op", "list").Str("prefix", aws.ToString(input.Prefix)).Dur("took", time.Since(start)).Msg("s3 request")

	result := listing.ListOutput{Entries: make([]listing.ObjectEntry, 0, len(out.Contents))}
	for _, obj := range out.Contents {
		if obj.Key == nil {
			continue
		}
		result.Entries = append(result.Entries, listing.ObjectEntry{
			Key:          c.relative(*obj.Key),
			LastModified: aws.ToTime(obj.LastModified),
			Size:         aws.ToInt64(obj.Size),
		})
	}
	if aws.ToBool(out.IsTruncated) {
		result.NextToken = aws.ToString(out.NextContinuationToken)
	}
	return result, nil
}

// PutObject uploads body under key and returns the ETag. Bodies of at least
// MultipartThreshold bytes go through UploadMultipart.
func (c *Client) PutObject(ctx context.Context, key string, body io.Reader, contentLength int64, contentType string) (string, error) {
	if contentLength >= MultipartThreshold {
		return c.UploadMultipart(ctx, key, body, contentType, MinPartSizeBytes*4)
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(c.Key(key)),
		Body:          body,
		ContentLength: aws.Int64(contentLength),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	start := time.Now()
	out, err := c.client.PutObject(ctx, input)
	if err != nil {
		return "", wrapErr("put", key, err)
	}
	logger.Log.Debug().Str("op", "put").Str("key", key).Int64("size", contentLength).Dur("took", time.Since(start)).Msg("s3 request")
	return strings.Trim(aws.ToString(out.ETag), `"`), nil
}

func (c *Client) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.Key(key)),
	})
	if err != nil {
		return nil, wrapErr("get", key, err)
	}
	return out.Body, nil
}

func (c *Client) DeleteObject(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.Key(key)),
	})
	if err != nil {
		return wrapErr("delete", key, err)
	}
	return nil
}

// CreateBucket creates the configured bucket, treating an existing bucket owned by the caller as success.
func (c *Client) CreateBucket(ctx context.Context) error {
	_, err := c.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(c.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return wrapErr("create bucket", c.bucket, err)
	}
	return nil
}

var notFoundCodes = map[string]bool{
	"NoSuchKey":    true,
	"NoSuchBucket": true,
	"NotFound":     true,
}

func wrapErr(op, key string, err error) error {
	var nsk *types.NoSuchKey
	var apiErr smithy.APIError
	switch {
	case errors.As(err, &nsk):
		err = errs.NotFound(err)
	case errors.As(err, &apiErr) && notFoundCodes[apiErr.ErrorCode()]:
		err = errs.NotFound(err)
	}
	return errs.Store(fmt.Sprintf("s3 %s", op), err).WithKey(key)
}
