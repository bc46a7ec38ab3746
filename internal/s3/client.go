// Package s3 предоставляет функционал для получения аудиофайлов из Amazon S3
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// ErrNotFound возвращается, если объекта нет в бакете
var ErrNotFound = errors.New("объект не найден")

// Config содержит настройки для S3
type Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

// downloader - часть s3manager.Downloader, которой пользуется клиент
type downloader interface {
	DownloadWithContext(ctx aws.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*s3manager.Downloader)) (int64, error)
}

// Client скачивает объекты из S3 целиком в память
type Client struct {
	downloader downloader
}

// NewClient создает новый S3 клиент
func NewClient(config *Config) (*Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(config.Region),
	}

	// Без ключей используется стандартная цепочка учетных данных AWS
	if config.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		)
	}

	// Если указан endpoint, добавляем его
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AWS сессии: %w", err)
	}

	return &Client{downloader: s3manager.NewDownloader(sess)}, nil
}

// Download загружает объект целиком
func (c *Client) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	buf := aws.NewWriteAtBuffer(nil)
	_, err := c.downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == s3.ErrCodeNoSuchBucket) {
			return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка загрузки из S3: %w", err)
	}
	return buf.Bytes(), nil
}
