package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rs/zerolog/log"
)

// S3API is the part of the S3 client the store uses
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Store struct {
	layout
	client S3API
}

type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

// NewS3Store builds a store over AWS S3 or any S3-compatible endpoint
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := opts.PublicURL
	if base == "" {
		base = opts.Endpoint
	}
	if base == "" {
		base = fmt.Sprintf("https://s3.%s.amazonaws.com", opts.Region)
	}
	return NewS3StoreWithClient(client, opts.Bucket, base), nil
}

func NewS3StoreWithClient(client S3API, bucket, publicBase string) *S3Store {
	return &S3Store{layout: layout{base: publicBase, bucket: bucket}, client: client}
}

func (s *S3Store) Upload(ctx context.Context, objectPath string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectPath),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentTypeOr(contentType)),
		CacheControl:  aws.String("max-age=3600"),
	})
	if err != nil {
		return "", errs.NewStorageError(errs.ErrStorageUpload, objectPath, err)
	}
	log.Debug().Str("bucket", s.bucket).Str("path", objectPath).Msg("uploaded object")
	return s.PublicURL(objectPath), nil
}

func (s *S3Store) Remove(ctx context.Context, objectPath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectPath),
	})
	if err != nil {
		return errs.NewStorageError(errs.ErrStorageRemove, objectPath, err)
	}
	return nil
}
