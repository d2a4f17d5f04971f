package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Service stores uploads in Amazon S3 (or compatible APIs).
type S3Service struct {
	client   *s3.Client
	uploader *manager.Uploader
	region   string
	endpoint string
}

func NewS3Service(client *s3.Client, region, endpoint string) *S3Service {
	return &S3Service{
		client:   client,
		uploader: manager.NewUploader(client),
		region:   region,
		endpoint: strings.TrimRight(endpoint, "/"),
	}
}

func (s *S3Service) UploadObject(ctx context.Context, input UploadInput) (string, error) {
	if input.Bucket == "" {
		return "", fmt.Errorf("storage bucket is required")
	}
	if input.Key == "" {
		return "", fmt.Errorf("storage key is required")
	}

	putInput := &s3.PutObjectInput{
		Bucket: aws.String(input.Bucket),
		Key:    aws.String(input.Key),
		Body:   input.Body,
		ACL:    types.ObjectCannedACLPublicRead,
	}
	if input.ContentType != "" {
		putInput.ContentType = aws.String(input.ContentType)
	}

	if _, err := s.uploader.Upload(ctx, putInput); err != nil {
		return "", fmt.Errorf("upload %s: %w", input.Key, err)
	}

	return s.ObjectURL(input.Bucket, input.Key), nil
}

func (s *S3Service) DeleteObject(ctx context.Context, bucket, key string) error {
	if bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key is required")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *S3Service) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	var objects []ObjectInfo
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if strings.TrimSpace(prefix) != "" {
		input.Prefix = aws.String(prefix)
	}

	for {
		output, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}

		for _, obj := range output.Contents {
			objects = append(objects, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: obj.LastModified,
			})
		}

		if !aws.ToBool(output.IsTruncated) || output.NextContinuationToken == nil {
			break
		}
		input.ContinuationToken = output.NextContinuationToken
	}

	return objects, nil
}

// ObjectURL builds the public URL for a stored object. Custom endpoints use
// path style addressing, matching how the client is configured.
func (s *S3Service) ObjectURL(bucket, key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.region, key)
}

// KeyFromURL reverses ObjectURL so a post's stored image can be deleted from
// its public URL. Returns false for URLs that do not point at the bucket.
func (s *S3Service) KeyFromURL(rawURL, bucket string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" {
		return "", false
	}

	path := strings.TrimPrefix(parsed.Path, "/")
	if s.endpoint != "" || strings.HasPrefix(parsed.Host, bucket+".") {
		if s.endpoint != "" {
			rest, ok := strings.CutPrefix(path, bucket+"/")
			if !ok || rest == "" {
				return "", false
			}
			return rest, true
		}
		if path == "" {
			return "", false
		}
		return path, true
	}
	return "", false
}

var _ Service = (*S3Service)(nil)
