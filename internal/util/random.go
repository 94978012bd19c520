package util

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateResetToken 生成64个字符的随机令牌（32字节的十六进制编码）
func GenerateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
