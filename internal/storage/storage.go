package storage

import (
	"fmt"
	"mime/multipart"
	"socialfeed-backend/config"
)

// Storage 抽象了图片文件的存储后端
type Storage interface {
	// UploadFile 保存文件并返回可存入数据库的路径或URL
	UploadFile(file *multipart.FileHeader, path string) (string, error)
	// DeleteFile 删除已存储的文件，文件不存在时不报错
	DeleteFile(path string) error
}

// New 根据配置选择存储后端
func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case "local":
		return NewLocalStorage(cfg.LocalStoragePath)
	case "s3":
		return NewS3Client(cfg.S3Region, cfg.S3Bucket)
	case "gcs":
		return NewGCSClient(cfg.GCSBucketName, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("未知的存储后端: %s", cfg.StorageBackend)
	}
}
