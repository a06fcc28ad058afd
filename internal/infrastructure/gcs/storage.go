// Package gcs 提供与 Google Cloud Storage 交互的基础设施封装。
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/bionicotaku/lingo-services-feed/internal/conf"
)

// BlobStore 把视频对象写入 GCS 并生成可访问 URL。
type BlobStore struct {
	client        *storage.Client
	bucket        string
	objectPrefix  string
	publicBaseURL string
	log           *log.Helper
}

// Option 定义可选配置。
type Option func(*BlobStore)

// WithClient 注入已有的存储客户端，替代默认凭据初始化。
func WithClient(client *storage.Client) Option {
	return func(s *BlobStore) {
		if client != nil {
			s.client = client
		}
	}
}

// NewBlobStore 创建 BlobStore，默认使用应用默认凭据。
// 返回的 cleanup 负责关闭底层客户端。
func NewBlobStore(ctx context.Context, c *conf.Storage, logger log.Logger, opts ...Option) (*BlobStore, func(), error) {
	if c == nil || c.Bucket == "" {
		return nil, nil, errors.New("gcs: bucket is required")
	}
	store := &BlobStore{
		bucket:        c.Bucket,
		objectPrefix:  strings.Trim(c.ObjectPrefix, "/"),
		publicBaseURL: strings.TrimRight(c.PublicBaseURL, "/"),
		log:           log.NewHelper(logger),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.client == nil {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("init gcs client: %w", err)
		}
		store.client = client
	}
	cleanup := func() {
		if err := store.client.Close(); err != nil {
			store.log.Warnf("close gcs client failed: err=%v", err)
		}
	}
	return store, cleanup, nil
}

// Store 上传对象并返回访问 URL。
func (s *BlobStore) Store(ctx context.Context, objectName, contentType string, content io.Reader) (string, error) {
	if objectName == "" {
		return "", errors.New("object name is required")
	}
	name := s.objectPath(objectName)
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, content); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", name, err)
	}
	return s.objectURL(name), nil
}

// Remove 按访问 URL 删除对象。对象不存在视为已删除。
func (s *BlobStore) Remove(ctx context.Context, videoURL string) error {
	name, err := s.objectNameFromURL(videoURL)
	if err != nil {
		return err
	}
	if err := s.client.Bucket(s.bucket).Object(name).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("delete object %s: %w", name, err)
	}
	return nil
}

func (s *BlobStore) objectPath(objectName string) string {
	if s.objectPrefix == "" {
		return objectName
	}
	return s.objectPrefix + "/" + objectName
}

func (s *BlobStore) objectURL(name string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + name
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, name)
}

// objectNameFromURL 从访问 URL 反推对象名。
func (s *BlobStore) objectNameFromURL(videoURL string) (string, error) {
	if s.publicBaseURL != "" && strings.HasPrefix(videoURL, s.publicBaseURL+"/") {
		return strings.TrimPrefix(videoURL, s.publicBaseURL+"/"), nil
	}
	parsed, err := url.Parse(videoURL)
	if err != nil {
		return "", fmt.Errorf("parse video url: %w", err)
	}
	path := strings.TrimPrefix(parsed.Path, "/")
	if rest, ok := strings.CutPrefix(path, s.bucket+"/"); ok {
		return rest, nil
	}
	if path == "" {
		return "", fmt.Errorf("cannot derive object name from url %q", videoURL)
	}
	return path, nil
}
