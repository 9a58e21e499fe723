// Package storage uploads blueprint photos to S3-compatible object storage
// (AWS S3 or MinIO).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/port"
)

var tracer = otel.Tracer("storage")

// MaxPhotoBytes caps a single uploaded photo.
const MaxPhotoBytes = 10 << 20

// Config describes the bucket photos go to.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PublicURL is the base the stored key is appended to when building the
	// photo URL. Empty means derive it from Endpoint or the AWS host.
	PublicURL string
}

// Enabled reports whether enough is configured to upload.
func (c Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3PhotoStore implements port.PhotoStore.
type S3PhotoStore struct {
	client objectPutter
	cfg    Config
	now    func() time.Time
	logger *zap.Logger
}

var _ port.PhotoStore = (*S3PhotoStore)(nil)

// NewS3PhotoStore builds an S3 client from static credentials. A custom
// endpoint switches to path-style addressing, which MinIO needs.
func NewS3PhotoStore(ctx context.Context, cfg Config, logger *zap.Logger) (*S3PhotoStore, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PhotoStore(client, cfg, logger), nil
}

func newS3PhotoStore(client objectPutter, cfg Config, logger *zap.Logger) *S3PhotoStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3PhotoStore{client: client, cfg: cfg, now: time.Now, logger: logger}
}

// Put uploads one photo for a sale and returns its public URL.
func (s *S3PhotoStore) Put(ctx context.Context, saleID int64, filename, contentType string, body io.Reader) (string, error) {
	ctx, span := tracer.Start(ctx, "S3PhotoStore.Put")
	defer span.End()
	span.SetAttributes(attribute.Int64("sale.id", saleID))

	data, err := io.ReadAll(io.LimitReader(body, MaxPhotoBytes+1))
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	if len(data) == 0 {
		return "", &domain.ErrValidation{Field: "photo", Message: "La foto está vacía."}
	}
	if len(data) > MaxPhotoBytes {
		return "", &domain.ErrValidation{Field: "photo", Message: "La foto supera los 10 MB."}
	}

	key := s.objectKey(saleID, filename, contentType)
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		s.logger.Error("storage: upload failed", zap.String("key", key), zap.Error(err))
		span.RecordError(err)
		return "", &domain.ErrExternalService{Service: "storage", Err: err}
	}

	s.logger.Debug("storage: photo uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return s.publicURL(key), nil
}

// photoExts maps the image extensions kept in object keys to their content
// types.
var photoExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
}

// photoExt picks a known image extension from the filename, else from the
// content type. Anything else yields no extension.
func photoExt(filename, contentType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if _, ok := photoExts[ext]; ok {
		return ext
	}
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "image/jpeg" {
		return ".jpg"
	}
	for e, ct := range photoExts {
		if ct == mediaType {
			return e
		}
	}
	return ""
}

// objectKey lays photos out as blueprints/<sale>/<yyyy>/<mm>/<uuid><ext>.
func (s *S3PhotoStore) objectKey(saleID int64, filename, contentType string) string {
	d := s.now().UTC()
	ext := photoExt(filename, contentType)
	return fmt.Sprintf("blueprints/%d/%04d/%02d/%s%s", saleID, d.Year(), int(d.Month()), uuid.NewString(), ext)
}

func (s *S3PhotoStore) publicURL(key string) string {
	switch {
	case s.cfg.PublicURL != "":
		return strings.TrimRight(s.cfg.PublicURL, "/") + "/" + key
	case s.cfg.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
}
