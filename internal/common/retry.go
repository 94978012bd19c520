package common

import (
	"net"
	"time"
)

// IsTemporary 判断错误是否自述为临时性错误
func IsTemporary(err error) bool {
	if temp, ok := err.(interface{ Temporary() bool }); ok {
		return temp.Temporary()
	}
	return false
}

// IsRetryable 判断错误是否值得重试
// 网络超时和临时性故障可以重试，其余错误（如认证失败）立即放弃
func IsRetryable(err error) bool {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return true
	}
	return IsTemporary(err)
}

// WithRetry 以递增的间隔重试操作，最后一次失败后不再等待
func WithRetry(operation func() error, maxRetries int) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = operation(); err == nil {
			return nil
		}
		if !IsRetryable(err) || attempt >= maxRetries {
			return err
		}
		time.Sleep(time.Duration(attempt) * time.Second)
	}
}
