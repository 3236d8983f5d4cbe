package storage

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// A Config holds the object storage connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// An S3 wraps the object storage used for client uploads.
type S3 struct {
	client *minio.Client
	bucket string
}

// New returns a new S3 storage for the given configuration.
// The bucket is created on a best effort basis, the storage stays usable for
// presigning even when the endpoint is not reachable yet.
func New(cfg Config) (*S3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create storage client")
	}

	s := &S3{
		client: client,
		bucket: cfg.Bucket,
	}
	s.ensureBucket()
	return s, nil
}

func (s *S3) ensureBucket() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		logrus.WithError(err).Warn("could not check upload bucket")
		return
	}
	if exists {
		return
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		logrus.WithError(err).Warn("could not create upload bucket")
	}
}

// PresignPut returns a time-limited URL allowing a client to write the given
// key directly to the bucket with the given content type.
func (s *S3) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}

	u, err := s.client.PresignHeader(ctx, http.MethodPut, s.bucket, key, expiry, nil, header)
	if err != nil {
		return "", errors.Wrap(err, "could not presign upload")
	}
	return u.String(), nil
}

// Download returns the raw bytes stored at the given key.
func (s *S3) Download(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "could not get object")
	}
	defer object.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(object); err != nil {
		return nil, errors.Wrap(err, "could not read object")
	}
	return buf.Bytes(), nil
}

// PublicURL builds the public style URL of the object stored at the given key.
func (s *S3) PublicURL(key string) string {
	return s.client.EndpointURL().String() + "/" + s.bucket + "/" + key
}
