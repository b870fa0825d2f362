package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rs/zerolog/log"
)

// ClientMinio is the part of the MinIO client the store uses
type ClientMinio interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (info minio.UploadInfo, err error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type MinioStore struct {
	layout
	client ClientMinio
}

// NewMinioStore connects to a MinIO endpoint with static credentials
func NewMinioStore(endpoint, accessKeyID, secretAccessKey, bucket, publicBase string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for %s: %w", endpoint, err)
	}
	if publicBase == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicBase = scheme + "://" + endpoint
	}
	return NewMinioStoreWithClient(client, bucket, publicBase), nil
}

func NewMinioStoreWithClient(client ClientMinio, bucket, publicBase string) *MinioStore {
	return &MinioStore{layout: layout{base: publicBase, bucket: bucket}, client: client}
}

func (s *MinioStore) Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectPath, r, size,
		minio.PutObjectOptions{ContentType: contentTypeOr(contentType), CacheControl: "max-age=3600"})
	if err != nil {
		return "", errs.NewStorageError(errs.ErrStorageUpload, objectPath, err)
	}
	log.Debug().Str("bucket", s.bucket).Str("path", objectPath).Msg("uploaded object")
	return s.PublicURL(objectPath), nil
}

func (s *MinioStore) Remove(ctx context.Context, objectPath string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectPath, minio.RemoveObjectOptions{}); err != nil {
		return errs.NewStorageError(errs.ErrStorageRemove, objectPath, err)
	}
	return nil
}
