package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectExists is returned by Put when the destination object already
// exists and overwrite was not requested.
var ErrObjectExists = errors.New("objectstore: object already exists")

func NewClient(cfg Config) (*minio.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	}
	return minio.New(cfg.Endpoint, opts)
}

// Store is the object-storage sink used by transfer pipelines.
type Store struct {
	client *minio.Client
}

func NewStore(cfg Config) (*Store, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{client: client}, nil
}

func NewStoreWithClient(client *minio.Client) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("minio client is required")
	}
	return &Store{client: client}, nil
}

// Put uploads data under bucket/key. When overwrite is false and the object
// already exists, it fails with ErrObjectExists and uploads nothing.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte, contentType string, overwrite bool) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("object store not initialized")
	}
	if !overwrite {
		exists, err := s.Exists(ctx, bucket, key)
		if err != nil {
			return fmt.Errorf("check %s/%s: %w", bucket, key, err)
		}
		if exists {
			return fmt.Errorf("put %s/%s: %w", bucket, key, ErrObjectExists)
		}
	}
	opts := minio.PutObjectOptions{ContentType: contentType}
	_, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if s == nil || s.client == nil {
		return false, fmt.Errorf("object store not initialized")
	}
	_, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func EnsureBucket(ctx context.Context, client *minio.Client, bucket, region string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region})
}

// ParseURL splits an object URL of the form s3://bucket/key (minio:// is
// accepted as an alias) into its bucket and key.
func ParseURL(s string) (bucket, key string, err error) {
	trimmed := strings.TrimSpace(s)
	var rest string
	switch {
	case strings.HasPrefix(trimmed, "s3://"):
		rest = strings.TrimPrefix(trimmed, "s3://")
	case strings.HasPrefix(trimmed, "minio://"):
		rest = strings.TrimPrefix(trimmed, "minio://")
	default:
		return "", "", fmt.Errorf("object URL %q must start with s3:// or minio://", s)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("object URL %q must name a bucket and key", s)
	}
	return bucket, key, nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
