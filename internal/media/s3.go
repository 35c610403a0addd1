// Package media реализует внешнее медиахранилище на основе S3-совместимого
// сервиса. Хранит аватары и обложки каналов; публичная ссылка строится
// от настроенного базового URL.
package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/grmlvv/video-hosting/internal/config"
)

// Store загружает и удаляет объекты в бакете медиахранилища.
type Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewStore создает клиент S3 по конфигурации медиахранилища.
func NewStore(ctx context.Context, cfg config.Media) (*Store, error) {
	const op = "media.NewStore"

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client:        client,
		bucket:        cfg.S3Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// storageKey строит ключ объекта: дата загрузки плюс случайный UUID,
// исходное имя файла в ключ не попадает.
func storageKey(ext string) string {
	d := time.Now()
	return fmt.Sprintf("media/%d/%02d/%02d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// Upload загружает содержимое в бакет и возвращает публичную ссылку на объект.
func (s *Store) Upload(ctx context.Context, filename, contentType string, content io.Reader) (string, error) {
	const op = "media.Upload"

	var ext string
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		ext = filename[idx:]
	}
	key := storageKey(ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.publicBaseURL + "/" + key, nil
}

// Delete удаляет объект по его публичной ссылке.
func (s *Store) Delete(ctx context.Context, url string) error {
	const op = "media.Delete"

	if !strings.HasPrefix(url, s.publicBaseURL+"/") {
		return fmt.Errorf("%s: url does not belong to this storage: %s", op, url)
	}
	key := strings.TrimPrefix(url, s.publicBaseURL+"/")

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
