package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"dogwalk-backend/internal/models"
	"dogwalk-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	// MaxUploadBytes caps dog photo uploads at 5 MB, checked before a
	// presigned URL is handed out.
	MaxUploadBytes = 5 << 20

	presignTTL = 5 * time.Minute
)

// UploadService hands out presigned S3 PUT URLs for dog photos.
type UploadService struct {
	profiles  ProfileStore
	s3Client  *s3.Client
	bucket    string
	region    string
	publicURL string
}

// NewUploadService creates a new upload service. Endpoint is optional and
// supports S3-compatible providers; publicURL overrides the default public
// object URL prefix.
func NewUploadService(profiles ProfileStore, region, bucket, accessKey, secretKey, endpoint, publicURL string) (*UploadService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &UploadService{
		profiles:  profiles,
		s3Client:  s3Client,
		bucket:    bucket,
		region:    region,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// PresignResult carries the upload URL plus the public URL to store as the
// dog's image_url once the upload succeeds.
type PresignResult struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	ExpiresIn int    `json:"expires_in"`
}

// PresignDogPhoto validates the upload and returns a presigned PUT URL.
func (s *UploadService) PresignDogPhoto(ctx context.Context, userID, filename, contentType string, contentLength int64) (*PresignResult, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.Role != models.RoleOwner {
		return nil, fmt.Errorf("only owners upload dog photos: %w", ErrForbidden)
	}

	if contentLength <= 0 {
		return nil, fmt.Errorf("%w: content_length is required", ErrValidation)
	}
	if contentLength > MaxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds the 5 MB limit", ErrValidation)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: only image uploads are allowed", ErrValidation)
	}

	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("dogs/%s/%s%s", userID, uuid.New().String(), ext)

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(contentLength),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignTTL
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	if s.publicURL != "" {
		publicURL = fmt.Sprintf("%s/%s", s.publicURL, key)
	}

	return &PresignResult{
		UploadURL: request.URL,
		PublicURL: publicURL,
		ExpiresIn: int(presignTTL.Seconds()),
	}, nil
}
