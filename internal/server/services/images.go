package services

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/logging"
	sc "github.com/dmitrijs2005/soncatalog/internal/server/config"
)

// MaxImageSize is the largest accepted product image.
const MaxImageSize = 5 * 1024 * 1024

// AllowedImageTypes lists the accepted content types.
var AllowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignPutObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return s3.NewPresignClient(c).PresignPutObject(ctx, in, optFns...)
	}
)

// Upload is an image received from the admin.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult describes a stored image.
type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

// PresignedUpload lets a browser PUT the image straight to the bucket.
type PresignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	URL       string `json:"url"`
	Filename  string `json:"filename"`
}

// ImageService stores product images in S3-compatible object storage.
type ImageService struct {
	config *sc.Config
	logger logging.Logger
	now    func() time.Time

	clientOnce sync.Once
	client     *s3.Client
	clientErr  error
}

func NewImageService(cfg *sc.Config, l logging.Logger) *ImageService {
	return &ImageService{
		config: cfg,
		logger: l.With("module", "image_service"),
		now:    time.Now,
	}
}

func (s *ImageService) getClient(ctx context.Context) (*s3.Client, error) {
	s.clientOnce.Do(func() {
		cfg, err := loadDefaultAWSConfig(ctx,
			config.WithRegion(s.config.S3Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				s.config.S3RootUser,
				s.config.S3RootPassword,
				"",
			)))
		if err != nil {
			s.clientErr = err
			return
		}

		s.client = newS3ClientFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		})
	})
	return s.client, s.clientErr
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeFilename replaces whitespace runs with "-", drops every character
// outside [a-zA-Z0-9._-] and lowercases the result.
func SanitizeFilename(name string) string {
	name = whitespaceRun.ReplaceAllString(name, "-")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.ToLower(name)
}

// StorageKey returns products/<unix-millis>-<sanitized name>.
func (s *ImageService) StorageKey(filename string) string {
	return fmt.Sprintf("products/%d-%s", s.now().UnixMilli(), SanitizeFilename(filename))
}

// PublicURL maps a storage key to the URL the catalog serves.
func (s *ImageService) PublicURL(key string) string {
	return strings.TrimRight(s.config.S3PublicBaseURL, "/") + "/" + key
}

func checkImage(contentType string, size int64) error {
	if !slices.Contains(AllowedImageTypes, contentType) {
		return common.ErrorUnsupportedMedia
	}
	if size > MaxImageSize {
		return common.ErrorTooLarge
	}
	return nil
}

// Upload validates and stores the image. Type is checked before size.
func (s *ImageService) Upload(ctx context.Context, u Upload) (*UploadResult, error) {
	if u.Body == nil || u.Filename == "" {
		return nil, fmt.Errorf("%w: no file", common.ErrorValidation)
	}
	if err := checkImage(u.ContentType, u.Size); err != nil {
		return nil, err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		s.logger.Error(ctx, "s3 client init failed", "error", err)
		return nil, common.ErrorInternal
	}

	bucket := s.config.S3Bucket
	key := s.StorageKey(u.Filename)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          u.Body,
		ContentLength: aws.Int64(u.Size),
		ContentType:   aws.String(u.ContentType),
	})
	if err != nil {
		s.logger.Error(ctx, "image upload failed", "key", key, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "image uploaded", "key", key, "size", u.Size)
	return &UploadResult{URL: s.PublicURL(key), Filename: key, Size: u.Size, Type: u.ContentType}, nil
}

// Presign returns a short-lived PUT URL for an image of the given type and
// size, with the same checks as Upload.
func (s *ImageService) Presign(ctx context.Context, filename, contentType string, size int64) (*PresignedUpload, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: no file", common.ErrorValidation)
	}
	if err := checkImage(contentType, size); err != nil {
		return nil, err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		s.logger.Error(ctx, "s3 client init failed", "error", err)
		return nil, common.ErrorInternal
	}

	bucket := s.config.S3Bucket
	key := s.StorageKey(filename)

	req, err := presignPutObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		s.logger.Error(ctx, "presign failed", "key", key, "error", err)
		return nil, common.ErrorInternal
	}

	return &PresignedUpload{UploadURL: req.URL, URL: s.PublicURL(key), Filename: key}, nil
}
