package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Ossctl/internal/errs"
	"Ossctl/internal/listing"
)

type fakeAPI struct {
	mu sync.Mutex

	listIn  *s3.ListObjectsV2Input
	listOut *s3.ListObjectsV2Output
	putIn   *s3.PutObjectInput
	putBody []byte
	err     error

	parts    map[int32][]byte
	aborted  bool
	finished *s3.CompleteMultipartUploadInput
}

func (f *fakeAPI) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.listIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.listOut, nil
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.putIn, f.putBody = in, b
	return &s3.PutObjectOutput{ETag: aws.String(`"etag-1"`)}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("content of " + aws.ToString(in.Key)))}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, _ *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return &s3.DeleteObjectOutput{}, f.err
}

func (f *fakeAPI) CreateBucket(_ context.Context, _ *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeAPI) CreateMultipartUpload(_ context.Context, _ *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	f.parts = make(map[int32][]byte)
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-1")}, nil
}

func (f *fakeAPI) UploadPart(_ context.Context, in *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.parts[aws.ToInt32(in.PartNumber)] = b
	f.mu.Unlock()
	return &s3.UploadPartOutput{ETag: aws.String("part")}, nil
}

func (f *fakeAPI) CompleteMultipartUpload(_ context.Context, in *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	f.finished = in
	return &s3.CompleteMultipartUploadOutput{ETag: aws.String(`"multi-etag"`)}, nil
}

func (f *fakeAPI) AbortMultipartUpload(_ context.Context, _ *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	f.aborted = true
	return &s3.AbortMultipartUploadOutput{}, nil
}

func TestListObjects_MapsPage(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	api := &fakeAPI{listOut: &s3.ListObjectsV2Output{
		Contents: []types.Object{
			{Key: aws.String("team/docs/a.txt"), LastModified: aws.Time(at), Size: aws.Int64(12)},
			{Key: nil},
			{Key: aws.String("team/docs/b/c.txt"), LastModified: aws.Time(at)},
		},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("tok-2"),
	}}
	c := NewWithAPI(api, "bucket", "team")

	out, err := c.ListObjects(context.Background(), listing.ListInput{Prefix: "docs", MaxKeys: 30, ContinuationToken: "tok-1"})
	require.NoError(t, err)

	assert.Equal(t, "bucket", aws.ToString(api.listIn.Bucket))
	assert.Equal(t, "team/docs", aws.ToString(api.listIn.Prefix))
	assert.Equal(t, int32(30), aws.ToInt32(api.listIn.MaxKeys))
	assert.Equal(t, "tok-1", aws.ToString(api.listIn.ContinuationToken))

	require.Len(t, out.Entries, 2)
	assert.Equal(t, listing.ObjectEntry{Key: "docs/a.txt", LastModified: at, Size: 12}, out.Entries[0])
	assert.Equal(t, "docs/b/c.txt", out.Entries[1].Key)
	assert.Equal(t, "tok-2", out.NextToken)
}

func TestListObjects_LastPageHasNoToken(t *testing.T) {
	api := &fakeAPI{listOut: &s3.ListObjectsV2Output{
		IsTruncated:           aws.Bool(false),
		NextContinuationToken: aws.String("stale"),
	}}
	c := NewWithAPI(api, "bucket", "")

	out, err := c.ListObjects(context.Background(), listing.ListInput{})
	require.NoError(t, err)
	assert.Empty(t, out.NextToken)
	assert.Nil(t, api.listIn.ContinuationToken)
	assert.Nil(t, api.listIn.MaxKeys)
}

func TestPutObject(t *testing.T) {
	api := &fakeAPI{}
	c := NewWithAPI(api, "bucket", "")

	etag, err := c.PutObject(context.Background(), "up/a.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "etag-1", etag)
	assert.Equal(t, "up/a.txt", aws.ToString(api.putIn.Key))
	assert.Equal(t, "text/plain", aws.ToString(api.putIn.ContentType))
	assert.Equal(t, int64(5), aws.ToInt64(api.putIn.ContentLength))
	assert.Equal(t, []byte("hello"), api.putBody)
}

func TestGetObject(t *testing.T) {
	c := NewWithAPI(&fakeAPI{}, "bucket", "root")
	body, err := c.GetObject(context.Background(), "a.txt")
	require.NoError(t, err)
	defer body.Close()
	b, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "content of root/a.txt", string(b))
}

func TestErrors_AreStoreKind(t *testing.T) {
	api := &fakeAPI{err: &types.NoSuchKey{Message: aws.String("missing")}}
	c := NewWithAPI(api, "bucket", "")

	_, err := c.GetObject(context.Background(), "nope.txt")
	require.Error(t, err)
	assert.Equal(t, errs.KindStore, errs.KindOf(err))
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	assert.Contains(t, err.Error(), "nope.txt")

	api.err = errors.New("dial tcp: connection refused")
	err = c.DeleteObject(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, errs.KindStore, errs.KindOf(err))
	assert.False(t, errors.Is(err, errs.ErrNotFound))
}

func TestUploadMultipart_SplitsParts(t *testing.T) {
	api := &fakeAPI{}
	c := NewWithAPI(api, "bucket", "")
	data := bytes.Repeat([]byte("x"), 2*MinPartSizeBytes+10)

	etag, err := c.UploadMultipart(context.Background(), "big.bin", bytes.NewReader(data), "application/octet-stream", 1)
	require.NoError(t, err)
	assert.Equal(t, "multi-etag", etag)
	assert.False(t, api.aborted)
	require.Len(t, api.parts, 3)
	assert.Len(t, api.parts[1], MinPartSizeBytes)
	assert.Len(t, api.parts[3], 10)
	require.NotNil(t, api.finished)
	assert.Len(t, api.finished.MultipartUpload.Parts, 3)
}

func TestUploadMultipart_AbortsOnFailure(t *testing.T) {
	api := &fakeAPI{}
	c := NewWithAPI(api, "bucket", "")
	api.err = errors.New("part rejected")

	_, err := c.UploadMultipart(context.Background(), "big.bin", bytes.NewReader(make([]byte, 10)), "", MinPartSizeBytes)
	require.Error(t, err)
	assert.True(t, api.aborted)
	assert.Nil(t, api.finished)
}

func TestNew_EndpointWithoutScheme(t *testing.T) {
	c, err := New(context.Background(), Options{
		Endpoint:  "oss-cn-shanghai.aliyuncs.com",
		AccessKey: "id",
		SecretKey: "secret",
		Bucket:    "bucket",
	})
	require.NoError(t, err)
	assert.Equal(t, "bucket", c.Bucket())
}

var _ listing.Lister = (*Client)(nil)
