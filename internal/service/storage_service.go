package service

import (
	"context"
	"examprep_backend/internal/config"
	"examprep_backend/internal/util"
	"examprep_backend/pkg/logger"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 把题目媒体的存储 key 转成学生端可访问的地址
type StorageProvider interface {
	GetURL(ctx context.Context, key string) (string, error)
}

func isAbsoluteURL(key string) bool {
	return strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://")
}

// LocalStorageProvider 本地存储，由 gin 静态目录提供
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) GetURL(ctx context.Context, key string) (string, error) {
	if isAbsoluteURL(key) {
		return key, nil
	}
	base := strings.TrimRight(p.Config.PublicBaseURL, "/")
	if base == "" {
		base = "/uploads"
	}
	return base + "/" + strings.TrimLeft(key, "/"), nil
}

// MinioStorageProvider 生成预签名 GET 地址
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) GetURL(ctx context.Context, key string) (string, error) {
	if isAbsoluteURL(key) {
		return key, nil
	}
	u, err := p.Client.PresignedGetObject(ctx, p.Config.MinioBucket, key, presignTTL(p.Config), url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// OSSStorageProvider 阿里云OSS签名地址
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Bucket *oss.Bucket
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Bucket: bucket}, nil
}

func (p *OSSStorageProvider) GetURL(ctx context.Context, key string) (string, error) {
	if isAbsoluteURL(key) {
		return key, nil
	}
	return p.Bucket.SignURL(key, oss.HTTPGet, int64(presignTTL(p.Config).Seconds()))
}

func presignTTL(cfg *config.StorageConfig) time.Duration {
	if cfg.PresignTTL <= 0 {
		return time.Hour
	}
	return cfg.PresignTTL
}

// NewStorageProvider 远端存储初始化失败时退回本地存储
func NewStorageProvider(cfg *config.StorageConfig) StorageProvider {
	var (
		provider StorageProvider
		err      error
	)
	switch cfg.Type {
	case util.StorageMinio:
		provider, err = NewMinioStorageProvider(cfg)
	case util.StorageOSS:
		provider, err = NewOSSStorageProvider(cfg)
	}
	if err != nil {
		logger.Log.Warn("Storage provider unavailable, falling back to local",
			zap.String("storage", describeStorage(cfg)), zap.Error(err))
		provider = nil
	}
	if provider == nil {
		return &LocalStorageProvider{Config: cfg}
	}
	logger.Log.Info("Storage provider ready", zap.String("storage", describeStorage(cfg)))
	return provider
}

func describeStorage(cfg *config.StorageConfig) string {
	switch cfg.Type {
	case util.StorageMinio:
		return fmt.Sprintf("minio://%s/%s", cfg.MinioEndpoint, cfg.MinioBucket)
	case util.StorageOSS:
		return fmt.Sprintf("oss://%s.%s", cfg.OSSBucket, cfg.OSSEndpoint)
	default:
		return "local:" + cfg.LocalPath
	}
}
