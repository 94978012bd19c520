package util

import (
	"mime/multipart"
	"path/filepath"
	"socialfeed-backend/config"
	"strconv"
	"strings"
	"time"
)

// 允许上传的图片类型
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// MaxImageSize 图片大小上限（5MB）
const MaxImageSize = 5 << 20

// GenerateUniqueFilename 生成唯一的文件名
func GenerateUniqueFilename(originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	name := filepath.Base(originalFilename)
	name = name[:len(name)-len(ext)]

	timestamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	return name + "_" + timestamp + ext
}

// ValidateImageFile 校验上传文件是否为允许的图片类型且不超过大小上限
func ValidateImageFile(file *multipart.FileHeader) bool {
	if file.Size > MaxImageSize {
		return false
	}
	contentType := strings.ToLower(file.Header.Get("Content-Type"))
	return allowedImageTypes[contentType]
}

// FileURL 把存储路径转换为可访问的URL
// 对象存储后端返回的已是完整URL，本地存储返回相对路径
func FileURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return config.AppConfig.BackendURL + "/uploads/" + path
}
