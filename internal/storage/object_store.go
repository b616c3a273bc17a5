package storage

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

// ErrObjectExists is returned by Put when the key is already taken.
var ErrObjectExists = errors.New("object already exists")

// ObjectStore is the binary object storage used for photo payloads.
type ObjectStore interface {
	// Put stores the payload under key. It never overwrites an existing
	// object and returns ErrObjectExists instead.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Remove deletes the object at key.
	Remove(ctx context.Context, key string) error
	// PresignGet issues a bearer URL that grants read access for ttl.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// MinioObjectStore keeps photos in a private MinIO/S3 bucket.
type MinioObjectStore struct {
	Minio      *minio.Client
	BucketName string
}

var _ ObjectStore = (*MinioObjectStore)(nil)

func NewMinioObjectStore(client *minio.Client, bucket string) *MinioObjectStore {
	return &MinioObjectStore{Minio: client, BucketName: bucket}
}

func (s *MinioObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	// Servers that ignore If-None-Match still get the stat check.
	_, err := s.Minio.StatObject(ctx, s.BucketName, key, minio.StatObjectOptions{})
	if err == nil {
		return ErrObjectExists
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return errors.Wrap(err, "failed to check object key")
	}

	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "max-age=3600",
	}
	opts.SetMatchETagExcept("*")
	if _, err = s.Minio.PutObject(ctx, s.BucketName, key, r, size, opts); err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.StatusCode == http.StatusPreconditionFailed || resp.Code == "PreconditionFailed" {
			return ErrObjectExists
		}
		return errors.Wrap(err, "failed to upload to MinIO")
	}
	return nil
}

func (s *MinioObjectStore) Remove(ctx context.Context, key string) error {
	if err := s.Minio.RemoveObject(ctx, s.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, "failed to remove object from MinIO")
	}
	return nil
}

func (s *MinioObjectStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.Minio.PresignedGetObject(ctx, s.BucketName, key, ttl, url.Values{})
	if err != nil {
		return "", errors.Wrap(err, "failed to presign object URL")
	}
	return u.String(), nil
}
