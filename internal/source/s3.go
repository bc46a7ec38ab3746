package source

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// S3 - объект в бакете S3
type S3 struct {
	bucket     string
	key        string
	downloader ObjectDownloader
}

// NewS3 создает S3 источник
func NewS3(bucket, key string, downloader ObjectDownloader) *S3 {
	return &S3{bucket: bucket, key: key, downloader: downloader}
}

// ParseS3URL разбирает ссылку вида s3://bucket/key
func ParseS3URL(ref string) (bucket, key string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("некорректная ссылка S3: %w", err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("%s: %w", ref, ErrUnsupportedScheme)
	}

	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("некорректная ссылка S3 %q: нужен формат s3://bucket/key", ref)
	}
	return bucket, key, nil
}

// ID возвращает ссылку s3://bucket/key
func (s *S3) ID() string { return "s3://" + s.bucket + "/" + s.key }

// Name возвращает имя объекта без префикса
func (s *S3) Name() string { return path.Base(s.key) }

// ReadAll скачивает объект
func (s *S3) ReadAll(ctx context.Context) ([]byte, error) {
	data, err := s.downloader.Download(ctx, s.bucket, s.key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.ID(), err)
	}
	return data, nil
}
