// Package storage 封装MinIO对象存储，存放随货单、面单等收货附件
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Options 对象存储配置
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Client MinIO客户端封装。未配置endpoint时返回nil，调用侧需判空降级
type Client struct {
	mc     *minio.Client
	bucket string
}

// New 创建对象存储客户端
func New(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, nil
	}
	mc, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("连接对象存储失败: %w", err)
	}
	return &Client{mc: mc, bucket: opts.Bucket}, nil
}

// Upload 上传对象，返回生成的对象key: wms/{yyyy/mm}/{uuid}{ext}
func (c *Client) Upload(ctx context.Context, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	key := fmt.Sprintf("wms/%s/%s%s",
		time.Now().Format("2006/01"),
		uuid.New().String()[:16],
		path.Ext(fileName))

	_, err := c.mc.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传对象失败: %w", err)
	}
	return key, nil
}

// PresignedURL 生成限时下载链接
func (c *Client) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := c.mc.PresignedGetObject(ctx, c.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成下载链接失败: %w", err)
	}
	return u.String(), nil
}
