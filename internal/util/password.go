package util

import "strings"

// 密码必须包含的符号集合
const passwordSymbols = "@$!%*#?&"

// IsPasswordStrong 校验密码策略：至少8位，含大小写字母、数字和指定符号
func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, char := range password {
		switch {
		case char >= 'A' && char <= 'Z':
			hasUpper = true
		case char >= 'a' && char <= 'z':
			hasLower = true
		case char >= '0' && char <= '9':
			hasNumber = true
		case strings.ContainsRune(passwordSymbols, char):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSymbol
}
