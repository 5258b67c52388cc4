package s3

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/arenatree/blobstore"
)

// Client is the subset of the S3 API used by Store.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient

	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	_ blobstore.Store            = (*Store)(nil)
	_ blobstore.ConditionalStore = (*Store)(nil)
)

// Store implements blobstore.Store for S3.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	upload   UploadConfig
	uploader *manager.Uploader
}

// Option configures New.
type Option func(*storeOptions)

type storeOptions struct {
	prefix string
	region string
	client Client
	upload UploadConfig
}

// WithPrefix prepends prefix to every key.
func WithPrefix(prefix string) Option {
	return func(o *storeOptions) {
		o.prefix = prefix
	}
}

// WithRegion overrides the region from the default AWS configuration.
func WithRegion(region string) Option {
	return func(o *storeOptions) {
		o.region = region
	}
}

// WithClient uses client instead of one built from the default AWS configuration.
func WithClient(client Client) Option {
	return func(o *storeOptions) {
		o.client = client
	}
}

// WithUploadConfig replaces DefaultUploadConfig.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(o *storeOptions) {
		o.upload = cfg
	}
}

// New creates a Store for bucket. Unless WithClient is given, the client is
// built from the default AWS configuration chain.
func New(ctx context.Context, bucket string, opts ...Option) (*Store, error) {
	o := storeOptions{upload: DefaultUploadConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.client == nil {
		var loadOpts []func(*config.LoadOptions) error
		if o.region != "" {
			loadOpts = append(loadOpts, config.WithRegion(o.region))
		}

		cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, err
		}

		o.client = s3.NewFromConfig(cfg)
	}

	s := NewStore(o.client, bucket, o.prefix)
	s.upload = o.upload
	s.uploader = newUploader(o.client, o.upload)

	return s, nil
}

// NewStore creates a new S3 blob store.
// rootPrefix is prepended to all keys (e.g. "my-trees/").
func NewStore(client Client, bucket, rootPrefix string) *Store {
	cfg := DefaultUploadConfig()

	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   strings.TrimSuffix(rootPrefix, "/"),
		upload:   cfg,
		uploader: newUploader(client, cfg),
	}
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}

	return s.prefix + "/" + name
}

// Put uploads a blob. Blobs smaller than the part size go up in a single
// PutObject call; larger ones use a multipart upload.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if int64(len(data)) < s.upload.PartSize {
		return putObject(ctx, s.client, s.bucket, s.key(name), data, s.upload.EnableChecksum, false)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   bytes.NewReader(data),
	}

	if s.upload.EnableChecksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}

	_, err := s.uploader.Upload(ctx, input)

	return err
}

// PutIfAbsent creates a blob with If-None-Match: *, returning
// blobstore.ErrConflict when the key already exists.
func (s *Store) PutIfAbsent(ctx context.Context, name string, data []byte) error {
	err := putObject(ctx, s.client, s.bucket, s.key(name), data, s.upload.EnableChecksum, true)
	if isConflict(err) {
		return blobstore.ErrConflict
	}

	return err
}

// Get downloads a whole blob.
func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}

		return nil, err
	}

	defer func() { _ = resp.Body.Close() }()

	return io.ReadAll(resp.Body)
}

// Delete removes a blob. S3 deletes are idempotent.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil && !isNotFound(err) {
		return err
	}

	return nil
}

// List returns blob names below the store prefix, relative to it.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return listObjects(ctx, s.client, s.bucket, s.prefix, prefix)
}
