package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/deusflow/newsinsight/internal/errs"
)

// S3Config selects the bucket reports are uploaded to. Empty values fall back
// to the standard AWS config chain.
type S3Config struct {
	Bucket       string
	Prefix       string
	Region       string
	Profile      string
	UsePathStyle bool
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Writer uploads each summary as a uniquely named object.
type S3Writer struct {
	client  objectPutter
	bucket  string
	prefix  string
	newName func() string
	log     *slog.Logger
}

// NewS3Writer builds an S3 client from the default AWS configuration chain.
func NewS3Writer(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3Writer, error) {
	if cfg.Bucket == "" {
		return nil, errs.Config("new s3 writer", fmt.Errorf("bucket is required"))
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errs.Config("new s3 writer", fmt.Errorf("unable to load SDK config: %w", err))
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Writer(client, cfg.Bucket, cfg.Prefix, logger), nil
}

func newS3Writer(client objectPutter, bucket, prefix string, logger *slog.Logger) *S3Writer {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Writer{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		newName: NewArtifactName,
		log:     logger.With("component", "report", "bucket", bucket),
	}
}

// Write uploads s and returns its s3:// location.
func (w *S3Writer) Write(ctx context.Context, s Summary) (string, error) {
	body, err := s.Bytes()
	if err != nil {
		return "", errs.IO("upload report", err)
	}

	key := w.prefix + w.newName()
	_, err = w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", errs.IO("upload report", fmt.Errorf("failed to upload object to S3: %w", err))
	}

	location := "s3://" + w.bucket + "/" + key
	w.log.Info("report uploaded", "location", location)
	return location, nil
}
