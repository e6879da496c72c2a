package gateway

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nik132-eng/roastit/internal/config"
	"github.com/nik132-eng/roastit/internal/domain"
)

type fakeS3 struct {
	put     *s3.PutObjectInput
	body    []byte
	putErr  error
	pages   []*s3.ListObjectsV2Output
	calls   int
	deleted []string
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = params
	body, _ := io.ReadAll(params.Body)
	f.body = body
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

var testConf = config.Media{
	Bucket:        "roastit",
	Prefix:        "uploads/",
	PublicBaseURL: "https://cdn.example/",
}

func TestMediaGatewayUpload(t *testing.T) {
	fake := &fakeS3{}
	g := newMediaGateway(fake, testConf)

	data := []byte("\x89PNG\r\n\x1a\nimage")
	obj, err := g.Upload(context.Background(), data, domain.MediaUpload{
		ContentType: "image/png",
		Extension:   ".png",
		Tags:        []string{domain.UploadTag},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(obj.Key, "uploads/"))
	assert.True(t, strings.HasSuffix(obj.Key, ".png"))
	assert.Equal(t, "https://cdn.example/"+obj.Key, obj.URL)
	assert.Equal(t, data, fake.body)
	assert.Equal(t, "roastit", aws.ToString(fake.put.Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.put.ContentType))

	tags, err := url.ParseQuery(aws.ToString(fake.put.Tagging))
	require.NoError(t, err)
	assert.Equal(t, domain.UploadTag, tags.Get("app"))

	// same bytes, new object
	again, err := g.Upload(context.Background(), data, domain.MediaUpload{Extension: ".png"})
	require.NoError(t, err)
	assert.NotEqual(t, obj.Key, again.Key)
	assert.Equal(t, obj.Key[:len("uploads/")+32], again.Key[:len("uploads/")+32])
}

func TestMediaGatewayUploadNonASCIIFilename(t *testing.T) {
	fake := &fakeS3{}
	g := newMediaGateway(fake, testConf)

	_, err := g.Upload(context.Background(), []byte("\x89PNG\r\n\x1a\n"), domain.MediaUpload{
		Filename:  "猫 photo.png",
		Extension: ".png",
	})
	require.NoError(t, err)

	value := fake.put.Metadata["filename"]
	for _, r := range value {
		assert.Less(t, r, rune(128), "metadata %q is not ascii", value)
	}
	decoded, err := url.QueryUnescape(value)
	require.NoError(t, err)
	assert.Equal(t, "猫 photo.png", decoded)
}

func TestMediaGatewayUploadError(t *testing.T) {
	fake := &fakeS3{putErr: errors.New("access denied")}
	g := newMediaGateway(fake, testConf)

	_, err := g.Upload(context.Background(), []byte("x"), domain.MediaUpload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestMediaGatewayListPages(t *testing.T) {
	modified := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := &fakeS3{pages: []*s3.ListObjectsV2Output{
		{
			Contents:              []types.Object{{Key: aws.String("uploads/a.png"), Size: aws.Int64(10), LastModified: aws.Time(modified)}},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("next"),
		},
		{
			Contents:    []types.Object{{Key: aws.String("uploads/b.png"), Size: aws.Int64(20), LastModified: aws.Time(modified)}},
			IsTruncated: aws.Bool(false),
		},
	}}
	g := newMediaGateway(fake, testConf)

	objects, err := g.List(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "https://cdn.example/uploads/b.png", objects[1].URL)
	assert.Equal(t, modified, objects[0].LastModified)

	require.NoError(t, g.Delete(context.Background(), "uploads/a.png"))
	assert.Equal(t, []string{"uploads/a.png"}, fake.deleted)
}
