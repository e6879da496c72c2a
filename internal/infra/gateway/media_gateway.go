package gateway

import (
	"bytes"
	"context"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nik132-eng/roastit/internal/config"
	"github.com/nik132-eng/roastit/internal/domain"
)

var tracer = otel.Tracer("gateway")

// s3API is the part of the S3 client the media gateway uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// MediaGateway stores uploaded images in an S3 compatible bucket and hands
// out their public URLs.
type MediaGateway struct {
	client  s3API
	bucket  string
	prefix  string
	baseURL string
}

func NewMediaGateway(ctx context.Context, conf config.Media) (*MediaGateway, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(conf.Region),
	}
	if conf.AccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "NewMediaGateway: load aws config failed")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
		o.UsePathStyle = conf.UsePathStyle
	})

	return newMediaGateway(client, conf), nil
}

func newMediaGateway(client s3API, conf config.Media) *MediaGateway {
	return &MediaGateway{
		client:  client,
		bucket:  conf.Bucket,
		prefix:  conf.Prefix,
		baseURL: strings.TrimRight(conf.PublicBaseURL, "/"),
	}
}

// ObjectKey names a new object for data: the content hash followed by a
// random suffix. Every upload gets its own object, so a resubmitted image
// never overwrites an older one the orphan sweep may be deleting.
func (g *MediaGateway) ObjectKey(data []byte, ext string) string {
	sum := xxh3.Hash128(data).Bytes()
	return g.prefix + hex.EncodeToString(sum[:]) + "-" + uuid.NewString() + ext
}

func (g *MediaGateway) PublicURL(key string) string {
	return g.baseURL + "/" + key
}

func (g *MediaGateway) Upload(ctx context.Context, data []byte, meta domain.MediaUpload) (domain.MediaObject, error) {
	ctx, span := tracer.Start(ctx, "Media.Gateway.Upload")
	defer span.End()

	key := g.ObjectKey(data, meta.Extension)
	span.SetAttributes(attribute.String("Key", key), attribute.Int("Size", len(data)))

	tagging := url.Values{}
	if len(meta.Tags) > 0 {
		tagging.Set("app", strings.Join(meta.Tags, ":"))
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(g.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if meta.ContentType != "" {
		input.ContentType = aws.String(meta.ContentType)
	}
	if len(tagging) > 0 {
		input.Tagging = aws.String(tagging.Encode())
	}
	if meta.Filename != "" {
		// user metadata travels as headers and must be ascii
		input.Metadata = map[string]string{"filename": url.QueryEscape(meta.Filename)}
	}

	_, err := g.client.PutObject(ctx, input)
	if err != nil {
		span.RecordError(err)
		return domain.MediaObject{}, errors.Wrap(err, "MediaGateway.Upload: put object failed")
	}

	return domain.MediaObject{
		Key:  key,
		URL:  g.PublicURL(key),
		Size: int64(len(data)),
	}, nil
}

// List returns every object under the upload prefix.
func (g *MediaGateway) List(ctx context.Context) ([]domain.MediaObject, error) {
	ctx, span := tracer.Start(ctx, "Media.Gateway.List")
	defer span.End()

	paginator := s3.NewListObjectsV2Paginator(g.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(g.bucket),
		Prefix: aws.String(g.prefix),
	})

	var objects []domain.MediaObject
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			span.RecordError(err)
			return nil, errors.Wrap(err, "MediaGateway.List: list objects failed")
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			objects = append(objects, domain.MediaObject{
				Key:          key,
				URL:          g.PublicURL(key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	return objects, nil
}

func (g *MediaGateway) Delete(ctx context.Context, key string) error {
	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrap(err, "MediaGateway.Delete: delete object failed")
	}
	return nil
}
