package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/deppfellow/visitor-function/internal/model"
)

// s3API defines the subset of S3 methods used, to enable mocking in tests.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

var newS3Client = func(ctx context.Context, store config.StoreConfig, opts config.S3Config) (s3API, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	// The connection string, when set, is a custom endpoint (MinIO, LocalStack).
	endpoint := store.ConnectionString()

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	}), nil
}

// S3Repository writes each record as a JSON object named
// {container}/{id}.json in the bucket named by store.database. Writes are
// conditional on the key not existing.
type S3Repository struct {
	client s3API
	bucket string
	prefix string
}

func NewS3Repository(ctx context.Context, store config.StoreConfig, opts config.S3Config) (*S3Repository, error) {
	client, err := newS3Client(ctx, store, opts)
	if err != nil {
		return nil, err
	}

	r := &S3Repository{
		client: client,
		bucket: store.Database,
		prefix: store.Container,
	}

	if store.CreateIfNotExists {
		if err := r.ensureBucket(ctx, opts.Region); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *S3Repository) ensureBucket(ctx context.Context, region string) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r.bucket)})
	if err == nil {
		return nil
	}
	if !isS3NotFound(err) {
		return fmt.Errorf("s3 head bucket %s: %w", r.bucket, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(r.bucket)}
	// us-east-1 rejects an explicit location constraint.
	if region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(region),
		}
	}

	if _, err := r.client.CreateBucket(ctx, input); err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("s3 create bucket %s: %w", r.bucket, err)
	}
	return nil
}

func isS3NotFound(err error) bool {
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}

// isS3PreconditionFailed reports a conditional write that found the key
// already present.
func isS3PreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
		return true
	}
	var respErr interface{ HTTPStatusCode() int }
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusPreconditionFailed
}

func (r *S3Repository) objectKey(id string) string {
	return path.Join(r.prefix, id+".json")
}

func (r *S3Repository) Save(ctx context.Context, visitor model.Visitor) error {
	body, err := json.Marshal(visitor)
	if err != nil {
		return fmt.Errorf("encode visitor document: %w", err)
	}

	key := r.objectKey(visitor.ID)
	if _, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		IfNoneMatch: aws.String("*"),
	}); err != nil {
		if isS3PreconditionFailed(err) {
			return fmt.Errorf("%w: %s", model.ErrDuplicateID, visitor.ID)
		}
		return fmt.Errorf("s3 put %s/%s: %w", r.bucket, key, err)
	}
	return nil
}

func (r *S3Repository) Ping(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r.bucket)})
	return err
}

func (r *S3Repository) Close(context.Context) error {
	return nil
}

func (r *S3Repository) Driver() string {
	return config.DriverS3
}
