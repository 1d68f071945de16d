package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/spotfinder/backend/internal/models"
	"github.com/spotfinder/backend/internal/utils"
)

// ObjectPutter is the subset of *minio.Client used for uploads.
type ObjectPutter interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type PhotoStore struct {
	client        ObjectPutter
	bucket        string
	publicBaseURL string
	now           func() time.Time
}

type Options struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Bucket        string
	Region        string
	PublicBaseURL string
}

func NewPhotoStore(opts Options) (*PhotoStore, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, fmt.Errorf("minio endpoint and credentials are required")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	base := opts.PublicBaseURL
	if base == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, opts.Endpoint, opts.Bucket)
	}
	return NewPhotoStoreWithClient(client, opts.Bucket, base), nil
}

func NewPhotoStoreWithClient(client ObjectPutter, bucket string, publicBaseURL string) *PhotoStore {
	return &PhotoStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

func (s *PhotoStore) EnsureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region})
}

// Upload stores one photo for a location and returns its record (without an ID).
func (s *PhotoStore) Upload(ctx context.Context, locationID int64, filename string, contentType string, r io.Reader, size int64) (models.Photo, error) {
	uploadedAt := s.now().UTC()
	key := ObjectKey(locationID, filename, uploadedAt)
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return models.Photo{}, fmt.Errorf("failed to store photo: %w", err)
	}
	return models.Photo{
		LocationID:  locationID,
		Key:         key,
		URL:         s.publicBaseURL + "/" + key,
		ContentType: contentType,
		Size:        info.Size,
		UploadedAt:  uploadedAt,
	}, nil
}

// ObjectKey is photos/<location>/<hash><ext>; the hash covers name and upload time.
func ObjectKey(locationID int64, filename string, at time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	sum := utils.ShortHash(fmt.Sprintf("%s|%d", filename, at.UnixNano()))
	return fmt.Sprintf("photos/%d/%s%s", locationID, sum, ext)
}
