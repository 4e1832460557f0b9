// Package receipts issues presigned object-storage URLs for receipt blobs.
// The server never proxies receipt bytes; clients talk to the bucket
// directly with short-lived URLs.
package receipts

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/mkuznecovs/billfold/internal/server/config"
)

// Test seams for the AWS SDK calls.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const presignValidity = 15 * time.Minute

type Service struct {
	config *sc.Config
}

func NewService(config *sc.Config) *Service {
	return &Service{config: config}
}

// randomStorageKey spreads objects over date-based prefixes so bucket
// listings stay usable.
func randomStorageKey(userID string) string {
	d := time.Now()
	return fmt.Sprintf("receipts/%s/%d/%d/%d/%v", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *Service) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignPut returns a fresh object key for the user plus a presigned PUT
// URL to fill it.
func (s *Service) PresignPut(ctx context.Context, userID string) (url, key string, err error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key = randomStorageKey(userID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", "", err
	}

	return req.URL, key, nil
}

// PresignGet returns a presigned GET URL for an existing key.
func (s *Service) PresignGet(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
