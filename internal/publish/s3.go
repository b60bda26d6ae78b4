package publish

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/aibuilder/aibuilder-backend/config"
)

// S3API is the subset of the S3 client used for publishing.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Publisher struct {
	client  S3API
	bucket  string
	baseURL string
	log     *zap.Logger
}

func NewS3Publisher(client S3API, bucket, baseURL string, log *zap.Logger) *S3Publisher {
	if baseURL == "" {
		baseURL = "https://" + bucket + ".s3.amazonaws.com"
	}
	return &S3Publisher{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// NewS3PublisherFromConfig loads AWS credentials from the default chain.
func NewS3PublisherFromConfig(ctx context.Context, cfg config.PublishConfig, log *zap.Logger) (*S3Publisher, error) {
	opts := []func(*awscfg.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awscfg.WithRegion(cfg.Region))
	}
	awsConf, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Publisher(s3.NewFromConfig(awsConf), cfg.Bucket, cfg.BaseURL, log), nil
}

func ObjectKey(projectID string) string {
	return "sites/" + projectID + "/index.html"
}

func (p *S3Publisher) Publish(ctx context.Context, projectID string, page []byte) (string, error) {
	key := ObjectKey(projectID)
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(page),
		ContentType:  aws.String("text/html; charset=utf-8"),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}

	p.log.Info("project published", zap.String("project_id", projectID), zap.String("bucket", p.bucket), zap.String("key", key))
	return p.baseURL + "/" + key, nil
}
