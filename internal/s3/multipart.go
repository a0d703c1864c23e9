package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"Ossctl/internal/errs"
)

var errNoParts = errors.New("no parts uploaded")

// UploadMultipart streams body in parts of partSizeBytes (at least MinPartSizeBytes)
// and returns the ETag of the completed object. A failed upload is aborted.
func (c *Client) UploadMultipart(ctx context.Context, key string, body io.Reader, contentType string, partSizeBytes int64) (string, error) {
	if partSizeBytes < MinPartSizeBytes {
		partSizeBytes = MinPartSizeBytes
	}
	fullKey := c.Key(key)

	createIn := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(fullKey),
	}
	if contentType != "" {
		createIn.ContentType = aws.String(contentType)
	}
	createOut, err := c.client.CreateMultipartUpload(ctx, createIn)
	if err != nil {
		return "", wrapErr("create multipart upload", key, err)
	}
	uploadID := createOut.UploadId
	defer func() {
		if uploadID != nil {
			_, _ = c.client.AbortMultipartUpload(context.Background(), &s3.AbortMultipartUploadInput{
				Bucket:   aws.String(c.bucket),
				Key:      aws.String(fullKey),
				UploadId: uploadID,
			})
		}
	}()

	var completed []types.CompletedPart
	partNumber := int32(1)
	buf := make([]byte, partSizeBytes)

	for {
		n, readErr := io.ReadFull(body, buf)
		if n == 0 {
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				return "", errs.IO(fmt.Sprintf("read part %d", partNumber), readErr).WithKey(key)
			}
		}
		if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
			return "", errs.IO(fmt.Sprintf("read part %d", partNumber), readErr).WithKey(key)
		}

		uploadOut, err := c.client.UploadPart(ctx, &s3.UploadPartInput{
			Bucket:        aws.String(c.bucket),
			Key:           aws.String(fullKey),
			UploadId:      uploadID,
			PartNumber:    aws.Int32(partNumber),
			Body:          bytes.NewReader(buf[:n]),
			ContentLength: aws.Int64(int64(n)),
		})
		if err != nil {
			return "", wrapErr(fmt.Sprintf("upload part %d", partNumber), key, err)
		}
		completed = append(completed, types.CompletedPart{
			ETag:       uploadOut.ETag,
			PartNumber: aws.Int32(partNumber),
		})
		partNumber++

		if readErr == io.ErrUnexpectedEOF {
			break
		}
	}

	if len(completed) == 0 {
		return "", errs.Input("multipart upload", errNoParts).WithKey(key)
	}

	out, err := c.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(c.bucket),
		Key:      aws.String(fullKey),
		UploadId: uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: completed,
		},
	})
	if err != nil {
		return "", wrapErr("complete multipart upload", key, err)
	}
	uploadID = nil
	return strings.Trim(aws.ToString(out.ETag), `"`), nil
}
