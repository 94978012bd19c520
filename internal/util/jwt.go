package util

import (
	"errors"
	"socialfeed-backend/config"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// TokenTTL 会话令牌有效期
const TokenTTL = 24 * time.Hour

// GenerateToken 为用户签发会话令牌，iat 用于实现按账号撤销
func GenerateToken(userID int) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	})

	signed, err := token.SignedString([]byte(config.AppConfig.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken 校验令牌并返回用户ID和签发时间
func ValidateToken(tokenString string) (int, time.Time, error) {
	if tokenString == "" {
		return 0, time.Time{}, errors.New("令牌为空")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("无效的签名方法")
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return 0, time.Time{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, time.Time{}, errors.New("无效的令牌")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, time.Time{}, errors.New("无效的用户ID")
	}

	var issuedAt time.Time
	if iat, ok := claims["iat"].(float64); ok {
		issuedAt = time.Unix(int64(iat), 0)
	}
	return int(userID), issuedAt, nil
}
