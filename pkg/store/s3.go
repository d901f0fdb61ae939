package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/maquette-dev/maquette/internal/enginerr"
	"github.com/maquette-dev/maquette/pkg/manifest"
)

// S3API is the slice of the S3 client the store uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps manifests as JSON objects in an S3 bucket under
// <prefix><id>/<version>.json.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	st := store.NewS3Store(s3.NewFromConfig(cfg), "my-bucket", "manifests/")
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store creates an S3-backed manifest store.
func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) key(id, version string) string {
	return s.prefix + id + "/" + version + ".json"
}

// Put stores the manifest and returns its id.
func (s *S3Store) Put(ctx context.Context, m *manifest.Manifest) (string, error) {
	if m == nil || m.ID == "" {
		return "", enginerr.New("M552").WithDetail("cannot store a manifest without an id")
	}
	data, err := m.Encode()
	if err != nil {
		return "", enginerr.FromError(err, "M552")
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(m.ID, m.Version)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", enginerr.New("M552").WithDetail("put to s3 failed").Wrap(err)
	}
	return m.ID, nil
}

// Get retrieves a manifest. An empty version lists the id's objects
// and picks the highest stored semantic version.
func (s *S3Store) Get(ctx context.Context, id, version string) (*manifest.Manifest, error) {
	if version == "" {
		latest, err := s.latestVersion(ctx, id)
		if err != nil {
			return nil, err
		}
		version = latest
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id, version)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, NotFound(id, version)
		}
		return nil, enginerr.New("M552").WithDetail("get from s3 failed").Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, enginerr.New("M552").WithDetail("reading s3 object failed").Wrap(err)
	}
	return manifest.Parse(data)
}

// latestVersion finds the highest stored version for an id.
func (s *S3Store) latestVersion(ctx context.Context, id string) (string, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix + id + "/"),
	})
	if err != nil {
		return "", enginerr.New("M552").WithDetail("listing s3 versions failed").Wrap(err)
	}

	best := ""
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		name := strings.TrimPrefix(key, s.prefix+id+"/")
		version := strings.TrimSuffix(name, ".json")
		if version == "" || version == name {
			continue
		}
		if best == "" || versionGreater(version, best) {
			best = version
		}
	}
	if best == "" {
		return "", NotFound(id, "")
	}
	return best, nil
}
