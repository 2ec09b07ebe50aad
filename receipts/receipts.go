// Package receipts stores payment screenshots uploaded with a transaction reference.
package receipts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"event-registration/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MaxSize bounds a single receipt upload.
const MaxSize = 5 << 20

var allowedTypes = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"application/pdf": ".pdf",
}

type Uploader interface {
	Upload(ctx context.Context, teamID, contentType string, body io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

type S3Store struct {
	bucket string
	region string
	api    s3iface.S3API
}

func NewS3(cfg config.S3) (*S3Store, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AWS session")
	}
	return &S3Store{bucket: cfg.Bucket, region: cfg.Region, api: s3.New(sess)}, nil
}

// Upload stores the receipt under receipts/<team>/ and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, teamID, contentType string, body io.Reader) (string, error) {
	ext, err := Extension(contentType)
	if err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)
	n, err := io.Copy(buf, io.LimitReader(body, MaxSize+1))
	if err != nil {
		return "", errors.Wrap(err, "failed to read receipt")
	}
	if n > MaxSize {
		return "", errors.Errorf("receipt exceeds %d bytes", MaxSize)
	}

	key := path.Join("receipts", teamID, uuid.NewString()+ext)
	_, err = s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to upload receipt to S3")
	}
	return s.baseURL() + key, nil
}

// Remove deletes a receipt previously returned by Upload.
func (s *S3Store) Remove(ctx context.Context, url string) error {
	key := strings.TrimPrefix(url, s.baseURL())
	if key == url || key == "" {
		return errors.Errorf("receipt %q is not in bucket %s", url, s.bucket)
	}
	_, err := s.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return errors.Wrapf(err, "failed to delete receipt %s", key)
}

func (s *S3Store) baseURL() string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
}

// Extension validates the content type and returns the stored file suffix.
func Extension(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := allowedTypes[ct]
	if !ok {
		return "", errors.Errorf("unsupported receipt type %q", contentType)
	}
	return ext, nil
}
