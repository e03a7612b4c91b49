package objectstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
)

type OssStore struct {
	client   *oss.Client
	bucket   string
	endpoint string
}

// NewOssStore builds a client for region. An empty endpoint falls back to the
// public endpoint of the region.
func NewOssStore(region, endpoint, accessKeyId, accessKeySecret, bucket string) *OssStore {
	if endpoint == "" {
		endpoint = fmt.Sprintf("oss-%s.aliyuncs.com", region)
	}
	cfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyId, accessKeySecret)).
		WithRegion(region).
		WithEndpoint(endpoint)
	return &OssStore{client: oss.NewClient(cfg), bucket: bucket, endpoint: endpoint}
}

func (s *OssStore) Upload(ctx context.Context, localPath string, key string, contentType string) (string, error) {
	_, err := s.client.PutObjectFromFile(ctx, &oss.PutObjectRequest{
		Bucket:      oss.Ptr(s.bucket),
		Key:         oss.Ptr(key),
		ContentType: oss.Ptr(contentType),
	}, localPath)
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.objectURL(key), nil
}

func (s *OssStore) objectURL(key string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, host, key)
}
