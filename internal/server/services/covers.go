package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/booklib/internal/common"
	sc "github.com/dmitrijs2005/booklib/internal/server/config"
)

// CoverUploadTTL is how long a presigned cover upload URL stays valid.
const CoverUploadTTL = 15 * time.Minute

var (
	ErrCoverUploadsDisabled = common.NewError(common.ErrNotFound, "Cover uploads are not enabled")
	errCoverContentType     = common.NewError(common.ErrValidation, "Cover must be a JPEG, PNG, WebP or GIF image")
)

var coverContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// CoverUpload tells the client where to PUT a cover image and which URL to
// store as the book's cover_image afterwards.
type CoverUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	CoverURL  string    `json:"cover_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CoverService presigns uploads of cover images to S3-compatible storage.
type CoverService struct {
	config *sc.Config
}

func NewCoverService(config *sc.Config) *CoverService {
	return &CoverService{config: config}
}

// Enabled reports whether a bucket is configured.
func (s *CoverService) Enabled() bool {
	return s.config.CoverUploadsEnabled()
}

func coverStorageKey(owner string, d time.Time) string {
	return fmt.Sprintf("covers/%s/%04d/%02d/%02d/%v", owner, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *CoverService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// PresignUpload returns a presigned PUT for a new cover object owned by owner.
func (s *CoverService) PresignUpload(ctx context.Context, owner, contentType string) (*CoverUpload, error) {
	if !s.Enabled() {
		return nil, ErrCoverUploadsDisabled
	}

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if _, ok := coverContentTypes[contentType]; !ok {
		return nil, errCoverContentType
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating presign client: %w", err)
	}

	now := time.Now().UTC()
	bucket := s.config.S3Bucket
	key := coverStorageKey(owner, now)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(CoverUploadTTL))
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	return &CoverUpload{
		Key:       key,
		UploadURL: req.URL,
		CoverURL:  s.publicURL(key),
		ExpiresAt: now.Add(CoverUploadTTL),
	}, nil
}

func (s *CoverService) publicURL(key string) string {
	base := s.config.S3PublicBaseURL
	if base == "" {
		base = s.config.S3BaseEndpoint
	}
	if base == "" {
		base = fmt.Sprintf("https://s3.%s.amazonaws.com", s.config.S3Region)
	}
	return strings.TrimRight(base, "/") + "/" + s.config.S3Bucket + "/" + key
}
