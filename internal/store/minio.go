package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrUnsupportedImage is returned for avatar uploads whose filename
// extension is not an accepted image format.
var ErrUnsupportedImage = errors.New("store: unsupported image type")

var avatarContentTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// AvatarContentType maps an avatar filename to its MIME type. The
// second return is false for extensions that are not accepted.
func AvatarContentType(filename string) (string, bool) {
	ct, ok := avatarContentTypes[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

// avatarKey namespaces objects per user and prefixes the upload
// timestamp so successive uploads never collide.
func avatarKey(userID, filename string, now time.Time) string {
	return fmt.Sprintf("avatars/%s/%d-%s", userID, now.UnixMilli(), filepath.Base(filename))
}

// MinioStore keeps avatar images in a MinIO bucket, one object per
// upload under an avatars/<userID>/ prefix.
type MinioStore struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: bucket, now: time.Now}, nil
}

// UploadAvatar stores an avatar image under a fresh per-user key and
// returns that key. The content type is derived from the filename;
// unrecognized extensions fail with ErrUnsupportedImage.
func (s *MinioStore) UploadAvatar(ctx context.Context, userID, filename string, data []byte) (string, error) {
	contentType, ok := AvatarContentType(filename)
	if !ok {
		return "", ErrUnsupportedImage
	}

	key := avatarKey(userID, filename, s.now())
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio put: %w", err)
	}
	return key, nil
}

// Download retrieves the object bytes and content type.
func (s *MinioStore) Download(ctx context.Context, key string) ([]byte, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, "", err
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", err
	}
	return data, info.ContentType, nil
}

// Remove deletes an object.
func (s *MinioStore) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
