package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignedUpload is a one-off PUT target for a browser upload.
type PresignedUpload struct {
	URL       string
	Key       string
	PublicURL string
	Headers   map[string]string
}

// S3Presigner issues presigned PUT URLs for a single bucket.
type S3Presigner struct {
	presigner     *s3.PresignClient
	bucket        string
	publicBaseURL string
}

// NewS3Presigner builds a presigner for bucket. publicBaseURL is the prefix
// under which uploaded objects are served; it defaults to the bucket's
// virtual-hosted URL.
func NewS3Presigner(cfg sdkaws.Config, bucket, publicBaseURL string) *S3Presigner {
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}
	return &S3Presigner{
		presigner:     s3.NewPresignClient(s3.NewFromConfig(cfg)),
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// PresignPut returns a presigned PUT for key valid for expires.
func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (*PresignedUpload, error) {
	input := &s3.PutObjectInput{
		Bucket:      sdkaws.String(p.bucket),
		Key:         sdkaws.String(key),
		ContentType: sdkaws.String(contentType),
	}

	presigned, err := p.presigner.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = expires
	})
	if err != nil {
		return nil, fmt.Errorf("failed to presign put object: %w", err)
	}

	headers := make(map[string]string)
	for k, v := range presigned.SignedHeader {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &PresignedUpload{
		URL:       presigned.URL,
		Key:       key,
		PublicURL: p.publicBaseURL + "/" + key,
		Headers:   headers,
	}, nil
}
