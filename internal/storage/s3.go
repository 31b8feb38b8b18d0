package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the subset of the S3 client the mirror uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror copies finished combined podcasts to a bucket fronted by a CDN.
type S3Mirror struct {
	client     PutObjectAPI
	bucket     string
	cdnBaseURL string // e.g. "https://podcasts.example.com"
}

func NewS3Mirror(client PutObjectAPI, bucket, cdnBaseURL string) *S3Mirror {
	return &S3Mirror{client: client, bucket: bucket, cdnBaseURL: strings.TrimRight(cdnBaseURL, "/")}
}

// Key is the object key a request's combined file is stored under.
func Key(requestID, filename string) string {
	return "podcasts/" + requestID + "/" + filename
}

// Upload puts the MP3 at localPath under key and returns its public URL.
func (m *S3Mirror) Upload(ctx context.Context, key, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open mp3: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat mp3: %w", err)
	}

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &m.bucket,
		Key:           &key,
		Body:          f,
		ContentType:   aws.String("audio/mpeg"),
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	if m.cdnBaseURL == "" {
		return fmt.Sprintf("s3://%s/%s", m.bucket, key), nil
	}
	return m.cdnBaseURL + "/" + key, nil
}
