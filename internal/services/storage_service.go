// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/tradeforge/tradeforge-backend/internal/config"
	"github.com/tradeforge/tradeforge-backend/internal/models"
)

type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// Return service without S3 for local development
		return &StorageService{config: config}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// UploadArtifactCode archives the generated MQL5 source. Returns an empty URL
// when S3 is not configured.
func (s *StorageService) UploadArtifactCode(artifact *models.Artifact) (string, error) {
	if s.s3Client == nil {
		return "", nil
	}

	ext := ".mq5"
	if artifact.Type == models.ArtifactTypeIndicator {
		ext = ".mqh"
	}
	key := fmt.Sprintf("artifacts/%s/%s%s", artifact.OwnerID, artifact.ID, ext)

	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.config.AWS.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader([]byte(artifact.Code)),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact code: %w", err)
	}

	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.AWS.S3Bucket, s.config.AWS.Region, key), nil
}
