package services

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/mkraev/atelier/internal/server/config"
)

// StorageSigner issues one-time upload authorizations for asset keys: the
// URL to POST to plus the signed policy fields the storage backend expects
// in the multipart form. Implementations must produce authorizations that
// expire; consumed or expired ones are replaced by a fresh intent, never
// reused.
type StorageSigner interface {
	PresignUpload(ctx context.Context, key string) (string, map[string]string, error)
}

// presignExpiry bounds how long an issued upload authorization stays valid.
const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPostObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignPostOptions)) (*s3.PresignedPostRequest, error) {
		return pc.PresignPostObject(ctx, in, optFns...)
	}
)

// S3Signer signs POST policy uploads against an S3-compatible backend.
// Clients consume the authorization with a multipart/form-data POST, so the
// signature must cover that method and form, not a PUT.
type S3Signer struct {
	config *sc.Config
}

func NewS3Signer(config *sc.Config) *S3Signer {
	return &S3Signer{config: config}
}

func (s *S3Signer) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
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

// PresignUpload returns the POST URL and signed policy form fields for the
// given storage key.
func (s *S3Signer) PresignUpload(ctx context.Context, key string) (string, map[string]string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", nil, err
	}

	bucket := s.config.S3Bucket

	req, err := presignPostObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, func(o *s3.PresignPostOptions) {
		o.Expires = presignExpiry
	})
	if err != nil {
		return "", nil, err
	}

	return req.URL, req.Values, nil
}
