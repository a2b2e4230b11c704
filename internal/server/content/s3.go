package content

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/gate"
	sc "github.com/dmitrijs2005/passgate/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) ObjectGetter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// ObjectGetter is the part of the S3 API the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Loader reads articles from an S3 compatible bucket (MinIO in dev).
type S3Loader struct {
	client ObjectGetter
	bucket string
}

func NewS3Loader(client ObjectGetter, bucket string) *S3Loader {
	return &S3Loader{client: client, bucket: bucket}
}

// NewS3LoaderFromConfig builds the S3 client from server settings.
func NewS3LoaderFromConfig(ctx context.Context, cfg *sc.Config) (*S3Loader, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return NewS3Loader(client, cfg.S3Bucket), nil
}

func (l *S3Loader) LoadArticleConfig(ctx context.Context, slug string) (*gate.ArticleConfig, error) {
	data, key, err := l.get(ctx, slug, configFileName)
	if err != nil {
		return nil, err
	}
	return decodeArticleConfig(data, key)
}

func (l *S3Loader) LoadArticleBody(ctx context.Context, slug string) ([]byte, error) {
	data, _, err := l.get(ctx, slug, bodyFileName)
	return data, err
}

func (l *S3Loader) get(ctx context.Context, slug, name string) ([]byte, string, error) {
	key, err := articlePath(slug, name)
	if err != nil {
		return nil, "", err
	}

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		var nf *types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nf) {
			return nil, key, common.ErrorNotFound
		}
		return nil, key, fmt.Errorf("get s3://%s/%s: %w", l.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, key, fmt.Errorf("read s3://%s/%s: %w", l.bucket, key, err)
	}
	return data, key, nil
}
