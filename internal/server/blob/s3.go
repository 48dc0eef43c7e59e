package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/trophyshop/internal/common"
)

// s3API is the subset of *s3.Client used by S3. It also satisfies
// s3.ListObjectsV2APIClient so the SDK paginator can drive List.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config carries the connection settings for an S3-compatible backend
// such as MinIO.
type S3Config struct {
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// loadDefaultAWSConfig is a seam for tests.
var loadDefaultAWSConfig = config.LoadDefaultConfig

// S3 stores blobs in a single bucket.
type S3 struct {
	client s3API
	bucket string
	urlMapper
}

// NewS3 builds an S3 backend from static credentials. Path-style addressing
// is used whenever a custom endpoint is set.
func NewS3(ctx context.Context, c S3Config) (*S3, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := c.PublicBaseURL
	if publicBase == "" {
		publicBase = strings.TrimRight(c.Endpoint, "/") + "/" + c.Bucket
	}
	return newS3WithClient(client, c.Bucket, publicBase), nil
}

func newS3WithClient(client s3API, bucket, publicBase string) *S3 {
	return &S3{client: client, bucket: bucket, urlMapper: newURLMapper(publicBase)}
}

// Bucket returns the configured bucket name.
func (s *S3) Bucket() string { return s.bucket }

func (s *S3) Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error) {
	key, err := CleanKey(key)
	if err != nil {
		return 0, err
	}

	// PutObject needs a known length; images are small enough to buffer.
	var body io.ReadSeeker
	var size int64
	switch v := r.(type) {
	case *bytes.Reader:
		body, size = v, v.Size()
	default:
		buf, err := io.ReadAll(r)
		if err != nil {
			return 0, fmt.Errorf("read body: %w", err)
		}
		body, size = bytes.NewReader(buf), int64(len(buf))
	}

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return 0, fmt.Errorf("put %s: %w", key, err)
	}
	return size, nil
}

func (s *S3) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	key, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", key, common.ErrorNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return out.Body, nil
}

func (s *S3) Exists(ctx context.Context, key string) (bool, error) {
	key, err := CleanKey(key)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("head %s: %w", key, err)
	}
	return true, nil
}

func (s *S3) List(ctx context.Context, prefix string) ([]Object, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var out []Object
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			out = append(out, Object{
				Key:     aws.ToString(obj.Key),
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}
	return out, nil
}

func (s *S3) Copy(ctx context.Context, srcKey, dstKey string) error {
	src, err := CleanKey(srcKey)
	if err != nil {
		return err
	}
	dst, err := CleanKey(dstKey)
	if err != nil {
		return err
	}
	_, err = s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(s.bucket + "/" + src),
		Key:        aws.String(dst),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%s: %w", src, common.ErrorNotFound)
		}
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return nil
}

// Delete relies on S3 semantics: deleting a missing key succeeds.
func (s *S3) Delete(ctx context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
