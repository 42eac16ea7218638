package service

import (
	"context"
	"coursehub_backend/internal/config"
	"coursehub_backend/internal/util"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider 课时附件（视频、文档）的存储后端
type StorageProvider interface {
	Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, objectKey string) error
	GetURL(objectKey string) string
}

// LocalStorageProvider 本地磁盘存储，开发环境默认
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, objectKey)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(objectKey), nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, objectKey string) error {
	return os.Remove(filepath.Join(p.Config.LocalPath, objectKey))
}

func (p *LocalStorageProvider) GetURL(objectKey string) string {
	return "/uploads/" + objectKey
}

// MinioStorageProvider MinIO 存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(objectKey), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, objectKey string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, objectKey, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(objectKey string) string {
	return "/" + p.Config.MinioBucket + "/" + objectKey
}

// OSSStorageProvider 阿里云 OSS 存储实现
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}
	if err := bucket.PutObject(objectKey, reader); err != nil {
		return "", err
	}
	return p.GetURL(objectKey), nil
}

func (p *OSSStorageProvider) Delete(ctx context.Context, objectKey string) error {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return err
	}
	return bucket.DeleteObject(objectKey)
}

func (p *OSSStorageProvider) GetURL(objectKey string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, objectKey)
}

type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err == nil {
			provider = p
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err == nil {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}
	return &StorageService{Provider: provider}
}

// UploadLessonAsset 校验扩展名后按 lessons/<lessonID>/<uuid><ext> 存储，
// 返回可写回课时字段的访问 URL
func (s *StorageService) UploadLessonAsset(ctx context.Context, lessonID uint, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	allowed := append(append([]string{}, util.AllowedVideoExtensions...), util.AllowedDocumentExtensions...)
	if !util.HasAllowedExtension(filename, allowed) {
		return "", util.ErrFileTypeNotAllowed
	}
	ext := strings.ToLower(filepath.Ext(filename))

	objectKey := fmt.Sprintf("lessons/%d/%s%s", lessonID, uuid.New().String(), ext)
	return s.Provider.Upload(ctx, objectKey, reader, size, contentType)
}

func (s *StorageService) Delete(ctx context.Context, objectKey string) error {
	return s.Provider.Delete(ctx, objectKey)
}

func (s *StorageService) GetURL(objectKey string) string {
	return s.Provider.GetURL(objectKey)
}
