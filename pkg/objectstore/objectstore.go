package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/noah-isme/dsbe-portal-api/pkg/cloudinary"
)

// Config describes an S3 compatible bucket, typically a MinIO deployment.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Archive stores uploaded CSV sheets as objects under <kind>/<yyyy>/<mm>/.
type Archive struct {
	client *minio.Client
	bucket string
	region string
	logger zerolog.Logger
	now    func() time.Time

	ensureMu      sync.Mutex
	bucketEnsured bool
}

// New constructs an archive. The bucket is created lazily on first store.
func New(cfg Config, logger zerolog.Logger) (*Archive, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("object store endpoint and bucket must be provided")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	return &Archive{
		client: client,
		bucket: cfg.Bucket,
		region: region,
		logger: logger.With().Str("component", "object_archive").Logger(),
		now:    time.Now,
	}, nil
}

func (a *Archive) ensureBucket(ctx context.Context) error {
	a.ensureMu.Lock()
	defer a.ensureMu.Unlock()
	if a.bucketEnsured {
		return nil
	}

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}

	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
		}
		a.logger.Info().Str("bucket", a.bucket).Msg("bucket created")
	}

	a.bucketEnsured = true
	return nil
}

// Store uploads the sheet and returns the object URL.
func (a *Archive) Store(ctx context.Context, kind, name string, reader io.Reader) (string, error) {
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read %s sheet: %w", kind, err)
	}

	key := ObjectKey(kind, name, a.now())
	info, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive %s sheet: %w", kind, err)
	}

	a.logger.Info().
		Str("bucket", a.bucket).
		Str("key", key).
		Str("etag", info.ETag).
		Int("size", len(content)).
		Msg("csv sheet archived")

	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(a.client.EndpointURL().String(), "/"), a.bucket, key), nil
}

// ObjectKey places a sheet under its kind and upload month.
func ObjectKey(kind, name string, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("%s/%d/%02d/%s", kind, at.Year(), at.Month(), cloudinary.BuildPublicID(name, at))
}
