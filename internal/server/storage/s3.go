// Package storage issues presigned URLs for the asset bucket and removes
// objects that are no longer referenced.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/meshmart/internal/server/config"
	"github.com/google/uuid"
)

// Test seams around the AWS SDK.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) error {
		_, err := c.DeleteObject(ctx, in)
		return err
	}

	now = time.Now
)

// S3Presigner talks to an S3-compatible bucket (MinIO in development).
type S3Presigner struct {
	client   *s3.Client
	presign  *s3.PresignClient
	bucket   string
	endpoint string
	ttl      time.Duration
}

// NewS3Presigner builds the SDK clients with static credentials and a
// path-style base endpoint taken from cfg.
func NewS3Presigner(ctx context.Context, cfg *sc.Config) (*S3Presigner, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Presigner{
		client:   client,
		presign:  newS3PresignClient(client),
		bucket:   cfg.S3Bucket,
		endpoint: strings.TrimRight(cfg.S3BaseEndpoint, "/"),
		ttl:      cfg.PresignTTL,
	}, nil
}

// NewStorageKey returns a fresh object key for a file of productID:
// products/<productID>/<yyyy>/<mm>/<uuid>/<fileName>.
func NewStorageKey(productID, fileName string) string {
	d := now().UTC()
	return fmt.Sprintf("products/%s/%04d/%02d/%v/%s", productID, d.Year(), int(d.Month()), uuid.New(), objectName(fileName))
}

// ProductPrefix is the key prefix every object of productID starts with.
func ProductPrefix(productID string) string {
	return "products/" + productID + "/"
}

func objectName(fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return "file"
	}
	return name
}

// PresignPut returns a URL the client can PUT the object to, and when it
// stops working.
func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string) (string, time.Time, error) {
	expires := now().Add(p.ttl)
	req, err := presignPutObject(p.presign, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign put %s: %w", key, err)
	}
	return req.URL, expires, nil
}

// PresignGet returns a time-limited download URL for key.
func (p *S3Presigner) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := presignGetObject(p.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}
	return req.URL, nil
}

// Delete removes the object. Deleting a missing key is not an error.
func (p *S3Presigner) Delete(ctx context.Context, key string) error {
	if err := deleteObject(p.client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// PublicURL is the path-style address of key in the bucket. It only serves
// content when the bucket allows anonymous reads.
func (p *S3Presigner) PublicURL(key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return p.endpoint + "/" + p.bucket + "/" + strings.Join(segs, "/")
}
