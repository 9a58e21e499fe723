package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func fixedStore(p objectPutter, cfg Config) *S3PhotoStore {
	s := newS3PhotoStore(p, cfg, nil)
	s.now = func() time.Time { return time.Date(2024, 7, 3, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestPut_UploadsAndBuildsURL(t *testing.T) {
	p := &fakePutter{}
	s := fixedStore(p, Config{Bucket: "fotos", Region: "us-east-1", PublicURL: "https://cdn.example.com/"})

	url, err := s.Put(context.Background(), 42, "Mesada.JPG", "image/jpeg", strings.NewReader("jpegdata"))
	require.NoError(t, err)

	key := aws.ToString(p.in.Key)
	assert.True(t, strings.HasPrefix(key, "blueprints/42/2024/07/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.Equal(t, "fotos", aws.ToString(p.in.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(p.in.ContentType))
	assert.Equal(t, "jpegdata", p.body)
	assert.Equal(t, "https://cdn.example.com/"+key, url)
}

func TestPut_URLFallbacks(t *testing.T) {
	minio := fixedStore(&fakePutter{}, Config{Bucket: "b", Region: "r", Endpoint: "http://minio:9000"})
	url, err := minio.Put(context.Background(), 1, "a.png", "", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://minio:9000/b/blueprints/1/"), url)

	hosted := fixedStore(&fakePutter{}, Config{Bucket: "b", Region: "sa-east-1"})
	url, err = hosted.Put(context.Background(), 1, "a.png", "", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://b.s3.sa-east-1.amazonaws.com/blueprints/1/"), url)
}

func TestPhotoExt(t *testing.T) {
	tests := []struct {
		filename, contentType, want string
	}{
		{"Mesada.JPG", "", ".jpg"},
		{"plano.webp", "", ".webp"},
		{"a.jp?g#x", "", ""},
		{"a.jp?g#x", "image/png", ".png"},
		{"foto", "image/jpeg; charset=binary", ".jpg"},
		{"script.html", "text/html", ""},
		{"../../x.png/..", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, photoExt(tt.filename, tt.contentType), "%q %q", tt.filename, tt.contentType)
	}
}

func TestPut_UnsafeFilenameKeepsURLClean(t *testing.T) {
	p := &fakePutter{}
	s := fixedStore(p, Config{Bucket: "fotos", Region: "us-east-1", PublicURL: "https://cdn.example.com"})

	url, err := s.Put(context.Background(), 7, "a.jp?g#x", "", strings.NewReader("x"))
	require.NoError(t, err)

	key := aws.ToString(p.in.Key)
	assert.NotContains(t, key, "?")
	assert.NotContains(t, key, "#")
	assert.Equal(t, "https://cdn.example.com/"+key, url)
}

func TestPut_RejectsEmptyPhoto(t *testing.T) {
	p := &fakePutter{}
	s := fixedStore(p, Config{Bucket: "b", Region: "r"})

	_, err := s.Put(context.Background(), 1, "a.png", "", strings.NewReader(""))

	var v *domain.ErrValidation
	require.ErrorAs(t, err, &v)
	assert.Nil(t, p.in)
}

func TestPut_UploadFailure(t *testing.T) {
	s := fixedStore(&fakePutter{err: errors.New("access denied")}, Config{Bucket: "b", Region: "r"})

	_, err := s.Put(context.Background(), 1, "a.png", "", strings.NewReader("x"))

	var ext *domain.ErrExternalService
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, "storage", ext.Service)
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{Bucket: "b", Region: "r"}.Enabled())
}
