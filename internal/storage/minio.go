package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"lexiapi/internal/config"
)

const (
	objectPrefix       = "documents/"
	bucketCheckTimeout = 10 * time.Second
	minioCodeNoSuchKey = "NoSuchKey"
	minioCodeNoSuchBkt = "NoSuchBucket"
)

// bucketStore keeps document bytes in one S3-compatible bucket under objectPrefix.
type bucketStore struct {
	client *minio.Client
	bucket string
}

// NewMinIO connects to the bucket described by cfg, creating it when missing.
func NewMinIO(ctx context.Context, cfg config.MinIOConfig) (Storage, error) {
	if err := checkMinIOConfig(cfg); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &bucketStore{client: client, bucket: cfg.Bucket}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func checkMinIOConfig(cfg config.MinIOConfig) error {
	switch {
	case cfg.Endpoint == "":
		return errors.New("minio endpoint is required")
	case cfg.AccessKey == "" || cfg.SecretKey == "":
		return errors.New("minio credentials are required")
	case cfg.Bucket == "":
		return errors.New("minio bucket is required")
	}
	return nil
}

func (s *bucketStore) ensureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, bucketCheckTimeout)
	defer cancel()

	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", s.bucket, err)
	}
	if ok {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket %q: %w", s.bucket, err)
	}
	return nil
}

func objectName(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return objectPrefix + key, nil
}

func (s *bucketStore) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	name, err := objectName(key)
	if err != nil {
		return ObjectInfo{}, err
	}

	up, err := s.client.PutObject(ctx, s.bucket, name, r, opt.Size, minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: opt.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("minio put %s: %w", key, err)
	}

	lastModified := up.LastModified
	if lastModified.IsZero() {
		lastModified = time.Now()
	}
	return ObjectInfo{
		Key:          key,
		Size:         up.Size,
		ETag:         up.ETag,
		ContentType:  opt.ContentType,
		LastModified: lastModified,
		Metadata:     opt.Metadata,
	}, nil
}

func (s *bucketStore) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	name, err := objectName(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, translateMinIOError(key, err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, translateMinIOError(key, err)
	}
	return obj, infoFromStat(key, stat), nil
}

// Delete is idempotent: a missing object is not an error.
func (s *bucketStore) Delete(ctx context.Context, key string) error {
	name, err := objectName(key)
	if err != nil {
		return err
	}
	err = s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != minioCodeNoSuchKey {
		return fmt.Errorf("minio delete %s: %w", key, err)
	}
	return nil
}

func infoFromStat(key string, st minio.ObjectInfo) ObjectInfo {
	return ObjectInfo{
		Key:          key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
		Metadata:     st.UserMetadata,
	}
}

func translateMinIOError(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case minioCodeNoSuchKey, minioCodeNoSuchBkt:
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return fmt.Errorf("minio get %s: %w", key, err)
}
