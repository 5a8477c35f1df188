package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/tartampluch/go-register/internal/config"
)

// PutObjectAPI is the slice of the S3 client the publisher needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads the snapshot to a bucket served as a static site.
type S3Publisher struct {
	Client PutObjectAPI
	Bucket string
	Key    string
}

// NewS3Publisher resolves credentials through the default AWS chain
// (environment, shared config, instance role).
func NewS3Publisher(ctx context.Context, region, bucket, key string) (*S3Publisher, error) {
	if bucket == "" {
		return nil, errors.New(config.ErrS3Bucket)
	}

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrS3Config, err)
	}

	if key == "" {
		key = config.DefaultS3Key
	}
	return &S3Publisher{Client: s3.NewFromConfig(cfg), Bucket: bucket, Key: key}, nil
}

func (p *S3Publisher) Publish(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrS3Upload, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrS3Upload, err)
	}
	if info.Size() == 0 {
		return errors.New(config.ErrNothingToPublish)
	}

	_, err = p.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.Bucket),
		Key:           aws.String(p.Key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(config.MimeJSON),
		CacheControl:  aws.String(config.CacheControlPrivate),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrS3Upload, err)
	}

	slog.Info(config.MsgPublishDone,
		config.LogKeyComponent, config.CompPublish,
		config.LogKeyMode, config.PublishModeS3,
		config.LogKeyBucket, p.Bucket,
		config.LogKeyKey, p.Key)
	return nil
}
