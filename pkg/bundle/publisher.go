package bundle

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/maquette-dev/maquette/internal/enginerr"
)

// PutObjectAPI is the slice of the S3 client a Publisher needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads serialized bundles to an S3 bucket under
// <prefix><manifest-id>/bundle-v<version>.zip.
type Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
	logger *slog.Logger
}

// NewPublisher returns a Publisher for the given bucket. An optional
// prefix scopes all keys, e.g. "bundles/".
func NewPublisher(client PutObjectAPI, bucket, prefix string) *Publisher {
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: slog.Default().With("component", "bundle-publisher"),
	}
}

// Publish serializes the bundle and uploads it, returning the object
// key written.
func (p *Publisher) Publish(ctx context.Context, b *Bundle) (string, error) {
	data, err := Zip(b)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s%s/bundle-v%s.zip", p.prefix, b.Manifest.ID, b.Manifest.Version)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return "", enginerr.New("M602").
			WithDetail(fmt.Sprintf("uploading %q: %v", key, err)).
			Wrap(err)
	}

	p.logger.Info("bundle published", "key", key, "bytes", len(data),
		"assets", len(b.Assets), "missing", len(b.MissingAssets))
	return key, nil
}
