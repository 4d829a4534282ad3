// Package minio keeps archived dispatch run summaries in an S3-compatible bucket.
package minio

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dtroode/dailyphrase/internal/model"
)

const codeNoSuchKey = "NoSuchKey"

// objectAPI is the subset of *minio.Client the archive uses.
type objectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// clientAPI narrows GetObject to io.ReadCloser.
type clientAPI struct{ *minio.Client }

func (c clientAPI) GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := c.Client.GetObject(ctx, bucket, key, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Config describes the archive endpoint.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

var _ model.Storage = (*Archive)(nil)

// Archive implements model.Storage on top of MinIO.
type Archive struct {
	api    objectAPI
	bucket string
}

// Dial connects to the endpoint in cfg and makes sure the bucket exists.
func Dial(ctx context.Context, cfg Config) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return newArchive(ctx, clientAPI{client}, cfg.Bucket)
}

func newArchive(ctx context.Context, api objectAPI, bucket string) (*Archive, error) {
	a := &Archive{api: api, bucket: bucket}

	exists, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}
	return a, nil
}

func (a *Archive) Upload(ctx context.Context, key string, reader io.Reader) error {
	opts := minio.PutObjectOptions{ContentType: contentType(key)}
	if _, err := a.api.PutObject(ctx, a.bucket, key, reader, -1, opts); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// Download returns model.ErrNotFound for missing keys.
func (a *Archive) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	// GetObject is lazy, so stat first to report a missing key up front.
	if _, err := a.api.StatObject(ctx, a.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	obj, err := a.api.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return obj, nil
}

func (a *Archive) Delete(ctx context.Context, key string) error {
	if err := a.api.RemoveObject(ctx, a.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (a *Archive) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := a.api.StatObject(ctx, a.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return true, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == codeNoSuchKey
}

func contentType(key string) string {
	switch path.Ext(key) {
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
