package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client defines the subset of the S3 API used by S3Storage.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3ListObjectsV2Paginator defines the interface for paginated list operations.
type S3ListObjectsV2Paginator interface {
	HasMorePages() bool
	NextPage(ctx context.Context, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// PaginatorFactory builds a paginator for a ListObjectsV2 request.
type PaginatorFactory func(client S3Client, params *s3.ListObjectsV2Input) S3ListObjectsV2Paginator

// S3Config contains configuration for S3 storage.
// Field tags are relative so the struct can be nested with an envPrefix.
type S3Config struct {
	Bucket         string `env:"BUCKET"`
	Region         string `env:"REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"ACCESS_KEY_ID"`
	SecretKey      string `env:"SECRET_KEY"`
	Endpoint       string `env:"ENDPOINT"`         // Optional: for S3-compatible services
	BaseURL        string `env:"BASE_URL"`         // Public URL base for serving files
	ForcePathStyle bool   `env:"FORCE_PATH_STYLE"` // For S3-compatible services like MinIO
}

// S3Storage implements Storage on Amazon S3 and S3-compatible services
// (MinIO, Aliyun OSS, Wasabi). It is safe for concurrent use.
type S3Storage struct {
	client           S3Client
	bucket           string
	baseURL          string
	uploadTimeout    time.Duration
	paginatorFactory PaginatorFactory
}

// S3Option defines a function that configures S3Storage.
type S3Option func(*s3Options)

type s3Options struct {
	httpClient       *http.Client
	s3Client         S3Client
	s3ConfigOptions  []func(*config.LoadOptions) error
	s3ClientOptions  []func(*s3.Options)
	paginatorFactory PaginatorFactory
	uploadTimeout    time.Duration
}

// WithS3Client sets a pre-configured S3 client. Useful for testing with mocks.
func WithS3Client(client S3Client) S3Option {
	return func(o *s3Options) { o.s3Client = client }
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) S3Option {
	return func(o *s3Options) { o.httpClient = client }
}

// WithS3ConfigOption adds a custom AWS config option.
func WithS3ConfigOption(option func(*config.LoadOptions) error) S3Option {
	return func(o *s3Options) { o.s3ConfigOptions = append(o.s3ConfigOptions, option) }
}

// WithS3ClientOption adds a custom S3 client option.
func WithS3ClientOption(option func(*s3.Options)) S3Option {
	return func(o *s3Options) { o.s3ClientOptions = append(o.s3ClientOptions, option) }
}

// WithPaginatorFactory sets a custom paginator factory for DeleteDir.
func WithPaginatorFactory(factory PaginatorFactory) S3Option {
	return func(o *s3Options) { o.paginatorFactory = factory }
}

// WithS3UploadTimeout sets the timeout for Put.
// If not set, the context deadline from the caller is used.
func WithS3UploadTimeout(timeout time.Duration) S3Option {
	return func(o *s3Options) { o.uploadTimeout = timeout }
}

// NewS3Storage creates a new S3 storage instance.
func NewS3Storage(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	options := &s3Options{}
	for _, opt := range opts {
		opt(options)
	}

	client := options.s3Client
	if client == nil {
		var err error
		if client, err = newS3Client(ctx, cfg, options); err != nil {
			return nil, err
		}
	}

	paginatorFactory := options.paginatorFactory
	if paginatorFactory == nil {
		paginatorFactory = defaultPaginatorFactory
	}

	return &S3Storage{
		client:           client,
		bucket:           cfg.Bucket,
		baseURL:          s3BaseURL(cfg),
		uploadTimeout:    options.uploadTimeout,
		paginatorFactory: paginatorFactory,
	}, nil
}

func newS3Client(ctx context.Context, cfg S3Config, options *s3Options) (*s3.Client, error) {
	awsOptions := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		awsOptions = append(awsOptions, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}
	if options.httpClient != nil {
		awsOptions = append(awsOptions, config.WithHTTPClient(options.httpClient))
	}
	awsOptions = append(awsOptions, options.s3ConfigOptions...)

	awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToLoadConfig, err)
	}

	return s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
		for _, opt := range options.s3ClientOptions {
			opt(o)
		}
	}), nil
}

func s3BaseURL(cfg S3Config) string {
	baseURL := cfg.BaseURL
	switch {
	case baseURL != "":
	case cfg.Endpoint != "":
		baseURL = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL
}

// defaultPaginatorFactory only knows the real client; mocks bring their own.
func defaultPaginatorFactory(c S3Client, params *s3.ListObjectsV2Input) S3ListObjectsV2Paginator {
	if realClient, ok := c.(*s3.Client); ok {
		return s3.NewListObjectsV2Paginator(realClient, params)
	}
	return nil
}

// s3ErrorCodes maps S3 API error codes to package errors.
var s3ErrorCodes = map[string]error{
	"AccessDenied":       ErrAccessDenied,
	"RequestTimeout":     ErrRequestTimeout,
	"SlowDown":           ErrServiceUnavailable,
	"ServiceUnavailable": ErrServiceUnavailable,
	"InvalidObjectState": ErrInvalidObjectState,
	"NoSuchKey":          ErrFileNotFound,
	"NotFound":           ErrFileNotFound,
	"NoSuchBucket":       ErrBucketNotFound,
}

// classifyS3Error converts S3 errors to package errors.
func classifyS3Error(err error, operation string) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s operation", ErrOperationTimeout, operation)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %s operation", ErrOperationCanceled, operation)
	}

	var (
		nsk *types.NoSuchKey
		nf  *types.NotFound
		nsb *types.NoSuchBucket
	)
	switch {
	case errors.As(err, &nsk), errors.As(err, &nf):
		return fmt.Errorf("%w: %s operation: %v", ErrFileNotFound, operation, err)
	case errors.As(err, &nsb):
		return fmt.Errorf("%w: %s operation", ErrBucketNotFound, operation)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if mapped, ok := s3ErrorCodes[apiErr.ErrorCode()]; ok {
			return fmt.Errorf("%w: %s operation", mapped, operation)
		}
		return fmt.Errorf("%s operation failed (code: %s): %w", operation, apiErr.ErrorCode(), err)
	}

	return fmt.Errorf("%s operation failed: %w", operation, err)
}

// Put uploads body to key.
// Non-seekable bodies are buffered in memory first because request signing
// needs to rewind the payload.
func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, meta ObjectMeta) (*Object, error) {
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	k, err := CleanKey(key)
	if err != nil {
		return nil, err
	}

	seeker, size, err := seekableBody(body, meta.Size)
	if err != nil {
		return nil, err
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType, err = sniffSeeker(seeker)
		if err != nil {
			return nil, err
		}
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(k),
		Body:        seeker,
		ContentType: aws.String(contentType),
		Metadata:    meta.Metadata,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		return nil, classifyS3Error(err, "upload file")
	}

	return &Object{
		Key:         k,
		Size:        size,
		ContentType: contentType,
		ModTime:     time.Now(),
		ETag:        strings.Trim(aws.ToString(out.ETag), `"`),
		Checksum:    checksumFromMetadata(meta.Metadata),
		Metadata:    meta.Metadata,
	}, nil
}

// Get opens the object for reading.
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := CleanKey(key)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		return nil, classifyS3Error(err, "download file")
	}

	return out.Body, nil
}

// Stat returns object attributes from a HEAD request.
func (s *S3Storage) Stat(ctx context.Context, key string) (*Object, error) {
	k, err := CleanKey(key)
	if err != nil {
		return nil, err
	}

	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		return nil, classifyS3Error(err, "stat file")
	}

	return &Object{
		Key:         k,
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
		ModTime:     aws.ToTime(out.LastModified),
		ETag:        strings.Trim(aws.ToString(out.ETag), `"`),
		Checksum:    checksumFromMetadata(out.Metadata),
		Metadata:    out.Metadata,
	}, nil
}

// Delete removes a single object. A missing object is reported as
// ErrFileNotFound, matching LocalStorage.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	k, err := CleanKey(key)
	if err != nil {
		return err
	}

	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	}); err != nil {
		return classifyS3Error(err, "check file")
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	}); err != nil {
		return classifyS3Error(err, "delete file")
	}

	return nil
}

// DeleteDir removes all objects with the given prefix, in batches of 1000.
func (s *S3Storage) DeleteDir(ctx context.Context, dir string) error {
	prefix, err := CleanKey(dir)
	if err != nil {
		return err
	}
	prefix += "/"

	paginator := s.paginatorFactory(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	if paginator == nil {
		return ErrPaginatorNil
	}

	var objects []types.ObjectIdentifier
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return classifyS3Error(err, "list directory")
		}
		for _, obj := range page.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
		}
	}

	if len(objects) == 0 {
		return fmt.Errorf("%w: %s", ErrDirectoryNotFound, prefix)
	}

	for i := 0; i < len(objects); i += 1000 {
		end := min(i+1000, len(objects))
		if _, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects[i:end]},
		}); err != nil {
			return classifyS3Error(err, "delete directory")
		}
	}

	return nil
}

// Exists checks if an object exists.
func (s *S3Storage) Exists(ctx context.Context, key string) bool {
	k, err := CleanKey(key)
	if err != nil {
		return false
	}

	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	return err == nil
}

// List returns the objects and common prefixes directly under dir.
func (s *S3Storage) List(ctx context.Context, dir string) ([]Entry, error) {
	prefix, err := cleanDir(dir)
	if err != nil {
		return nil, err
	}
	if prefix != "" {
		prefix += "/"
	}

	resp, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return nil, classifyS3Error(err, "list directory")
	}

	entries := make([]Entry, 0, len(resp.CommonPrefixes)+len(resp.Contents))
	for _, cp := range resp.CommonPrefixes {
		key := strings.TrimSuffix(aws.ToString(cp.Prefix), "/")
		entries = append(entries, Entry{
			Name:  strings.TrimPrefix(key, prefix),
			Key:   key,
			IsDir: true,
		})
	}

	for _, obj := range resp.Contents {
		key := aws.ToString(obj.Key)
		name := strings.TrimPrefix(key, prefix)
		if key == prefix || strings.Contains(name, "/") {
			continue
		}
		entries = append(entries, Entry{
			Name: name,
			Key:  key,
			Size: aws.ToInt64(obj.Size),
		})
	}

	return entries, nil
}

// URL returns the public URL for a key.
func (s *S3Storage) URL(key string) string {
	k, err := cleanDir(key)
	if err != nil {
		return ""
	}
	return s.baseURL + k
}

func seekableBody(body io.Reader, size int64) (io.ReadSeeker, int64, error) {
	if rs, ok := body.(io.ReadSeeker); ok {
		if size > 0 {
			return rs, size, nil
		}
		cur, err := rs.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
		}
		end, err := rs.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
		}
		if _, err := rs.Seek(cur, io.SeekStart); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
		}
		return rs, end - cur, nil
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	return bytes.NewReader(data), int64(len(data)), nil
}

func sniffSeeker(rs io.ReadSeeker) (string, error) {
	cur, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(rs, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	if _, err := rs.Seek(cur, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	return DetectContentType(head[:n]), nil
}

func checksumFromMetadata(md map[string]string) uint32 {
	v, ok := md[MetaChecksum]
	if !ok {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}
