package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/cloo-solutions/paperchat/internal/domain"
)

// S3StoreConfig holds configuration for S3Store
type S3StoreConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
}

// S3Store keeps uploaded documents in an S3-compatible object store. It
// satisfies the same contract as LocalStore; Fetch downloads the object to a
// temporary file so document loaders can parse it.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store creates a new S3Store with the given configuration.
func NewS3Store(ctx context.Context, cfg S3StoreConfig) (*S3Store, error) {
	// Custom resolver for S3-compatible endpoints
	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if cfg.Endpoint != "" {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		},
	)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		awsconfig.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Save uploads a document to the bucket.
func (s *S3Store) Save(ctx context.Context, filename string, r io.Reader) (*domain.Document, error) {
	if err := domain.ValidateFilename(filename); err != nil {
		return nil, err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filename),
		Body:   r,
	})
	if err != nil {
		return nil, domain.StorageError("failed to upload document", err)
	}

	return s.head(ctx, filename)
}

// Delete removes a document from the bucket.
func (s *S3Store) Delete(ctx context.Context, filename string) error {
	if err := domain.ValidateFilename(filename); err != nil {
		return err
	}

	// DeleteObject succeeds for missing keys, so check existence first.
	if _, err := s.head(ctx, filename); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		return domain.StorageError("failed to delete document", err)
	}
	return nil
}

// List returns all supported documents in the bucket, sorted by name.
func (s *S3Store) List(ctx context.Context) ([]*domain.Document, error) {
	docs := make([]*domain.Document, 0)

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, domain.StorageError("failed to list documents", err)
		}
		for _, obj := range page.Contents {
			name := aws.ToString(obj.Key)
			format, ok := domain.FormatForFilename(name)
			if !ok {
				continue
			}
			modified := time.Time{}
			if obj.LastModified != nil {
				modified = obj.LastModified.UTC()
			}
			docs = append(docs, &domain.Document{
				Name:       name,
				Size:       aws.ToInt64(obj.Size),
				ModifiedAt: modified,
				Format:     format,
			})
		}
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// Fetch downloads a document to a temporary file and returns its path. The
// cleanup function removes the temporary file.
func (s *S3Store) Fetch(ctx context.Context, filename string) (string, func(), error) {
	if err := domain.ValidateFilename(filename); err != nil {
		return "", nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		if isNotFound(err) {
			return "", nil, domain.ErrDocumentNotFound
		}
		return "", nil, domain.StorageError("failed to fetch document", err)
	}
	defer out.Body.Close()

	tmp, err := os.CreateTemp("", "paperchat-*-"+filename)
	if err != nil {
		return "", nil, domain.StorageError("failed to create temp file", err)
	}

	if _, err := io.Copy(tmp, out.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, domain.StorageError("failed to download document", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, domain.StorageError("failed to download document", err)
	}

	path := tmp.Name()
	return path, func() { os.Remove(path) }, nil
}

func (s *S3Store) head(ctx context.Context, filename string) (*domain.Document, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, domain.StorageError("failed to stat document", err)
	}

	format, _ := domain.FormatForFilename(filename)
	modified := time.Time{}
	if out.LastModified != nil {
		modified = out.LastModified.UTC()
	}
	return &domain.Document{
		Name:       filename,
		Size:       aws.ToInt64(out.ContentLength),
		ModifiedAt: modified,
		Format:     format,
	}, nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}
