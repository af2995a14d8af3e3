// Package attachments issues time-limited, write-only upload URLs for
// attachment objects in the S3 bucket. One object per item, keyed by the
// item's id.
package attachments

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultUploadTTL is used when no expiration is configured.
const DefaultUploadTTL = 300 * time.Second

// PresignAPI is the slice of the S3 presign client the issuer uses.
type PresignAPI interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Issuer builds presigned PUT URLs for a single bucket. Presigning is a
// local signature computation, so issuing a URL never proves the object
// was, or ever will be, uploaded.
type Issuer struct {
	presigner PresignAPI
	bucket    string
	ttl       time.Duration
}

// NewIssuer wraps an S3 client for the given bucket. A non-positive ttl
// falls back to DefaultUploadTTL.
func NewIssuer(client *s3.Client, bucket string, ttl time.Duration) *Issuer {
	return newIssuer(s3.NewPresignClient(client), bucket, ttl)
}

func newIssuer(presigner PresignAPI, bucket string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultUploadTTL
	}
	return &Issuer{
		presigner: presigner,
		bucket:    bucket,
		ttl:       ttl,
	}
}

// IssueUploadURL returns the presigned upload URL for the item's object
// together with the public URL the object will have once uploaded.
func (i *Issuer) IssueUploadURL(ctx context.Context, todoID string) (uploadURL, publicURL string, err error) {
	req, err := i.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(i.bucket),
		Key:    aws.String(todoID),
	}, func(o *s3.PresignOptions) {
		o.Expires = i.ttl
	})
	if err != nil {
		return "", "", fmt.Errorf("attachments: presign failed: %w", err)
	}

	publicURL = fmt.Sprintf("https://%s.s3.amazonaws.com/%s", i.bucket, todoID)
	return req.URL, publicURL, nil
}
