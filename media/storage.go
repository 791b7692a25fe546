package media

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage persists object bytes and tells where they can be fetched from
type Storage interface {
	Put(ctx context.Context, name string, contentType string, data []byte) error
	URL(name string) string
}

// LocalStorage stores objects in a directory
type LocalStorage struct {
	rootDir string
	baseURL string
}

// NewLocalStorage creates rootDir if needed, objects are served below baseURL
func NewLocalStorage(rootDir string, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{rootDir: rootDir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStorage) Put(ctx context.Context, name string, contentType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.rootDir, filepath.Base(name)), data, 0o644)
}

func (s *LocalStorage) URL(name string) string {
	return s.baseURL + "/" + url.PathEscape(name)
}

// MinioStorage stores objects in a bucket
type MinioStorage struct {
	client     *minio.Client
	bucketName string
	baseURL    string
}

// NewMinioStorage connects and creates the bucket when it does not exist. An
// empty baseURL falls back to the endpoint url of the client.
func NewMinioStorage(ctx context.Context, endpoint string, accessKeyID string, secretAccessKey string, useSSL bool, bucketName string, baseURL string) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	if baseURL == "" {
		baseURL = client.EndpointURL().JoinPath(bucketName).String()
	}
	return &MinioStorage{client: client, bucketName: bucketName, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *MinioStorage) Put(ctx context.Context, name string, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx,
		s.bucketName,
		name,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	return err
}

func (s *MinioStorage) URL(name string) string {
	return s.baseURL + "/" + url.PathEscape(name)
}
