package minio_storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

const (
	KindLessonResource = "lessons"
	KindProfilePicture = "avatars"
	KindBadgeIcon      = "badges"
	KindCourseImage    = "courses"
)

// ObjectStorage stores files of one kind in a single bucket and hands out
// presigned links to them.
type ObjectStorage struct {
	storage      *MinioStorage
	bucket       string
	kind         string
	presignedTTL time.Duration
}

func NewObjectStorage(storage *MinioStorage, bucket, kind string, presignedTTL time.Duration) *ObjectStorage {
	return &ObjectStorage{storage: storage, bucket: bucket, kind: kind, presignedTTL: presignedTTL}
}

// ObjectKey is <kind>/<owner id>/<unix nanos><ext>; a new upload never
// overwrites a link that might still be cached by a client.
func ObjectKey(kind string, ownerID uuid.UUID, filename string, at time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%s/%s/%d%s", kind, ownerID.String(), at.UnixNano(), ext)
}

func detectContentType(filename, contentType string) string {
	if contentType != "" {
		return contentType
	}
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (s *ObjectStorage) Upload(
	ctx context.Context,
	ownerID uuid.UUID,
	filename string,
	reader io.Reader,
	size int64,
	contentType string,
) (objectKey string, err error) {
	objectKey = ObjectKey(s.kind, ownerID, filename, time.Now())
	_, err = s.storage.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		reader,
		size,
		minio.PutObjectOptions{ContentType: detectContentType(filename, contentType)},
	)
	if err != nil {
		return "", err
	}
	return objectKey, nil
}

func (s *ObjectStorage) URL(ctx context.Context, objectKey string) (string, error) {
	presigned, err := s.storage.client.PresignedGetObject(ctx, s.bucket, objectKey, s.presignedTTL, make(url.Values))
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}

func (s *ObjectStorage) Delete(ctx context.Context, objectKey string) error {
	return s.storage.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}
