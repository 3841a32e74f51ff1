package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Store keeps uploads as objects in one bucket.
type S3Store struct {
	Client s3iface.S3API
	Bucket string
}

// NewS3Store builds a client for cfg. A custom Endpoint selects path-style
// addressing for S3-compatible servers.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket not set")
	}

	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Store{Client: s3.New(sess), Bucket: cfg.Bucket}, nil
}

func (ss *S3Store) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	if err := ValidName(name); err != nil {
		return err
	}

	body, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("failed to read file buffer: %w", err)
		}
		body = bytes.NewReader(data)
	}

	_, err := ss.Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(ss.Bucket),
		Key:           aws.String(name),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return nil
}

func (ss *S3Store) Open(ctx context.Context, name string) (Blob, error) {
	if err := ValidName(name); err != nil {
		return Blob{}, err
	}

	out, err := ss.Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ss.Bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		if isS3NotFound(err) {
			return Blob{}, ErrNotFound
		}
		return Blob{}, fmt.Errorf("failed to read file from S3: %w", err)
	}

	return Blob{
		Body:        out.Body,
		ContentType: aws.StringValue(out.ContentType),
		Size:        aws.Int64Value(out.ContentLength),
	}, nil
}

func isS3NotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey
}
