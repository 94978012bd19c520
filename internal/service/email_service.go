package service

import (
	"crypto/tls"
	"fmt"
	"socialfeed-backend/config"
	"socialfeed-backend/internal/common"
	"socialfeed-backend/internal/util"
	"time"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// EmailService 负责发送系统邮件
type EmailService struct {
	smtpHost    string
	smtpPort    int
	username    string
	password    string
	frontendURL string
}

func NewEmailService() *EmailService {
	return &EmailService{
		smtpHost:    config.AppConfig.SMTPHost,
		smtpPort:    config.AppConfig.SMTPPort,
		username:    config.AppConfig.SMTPUsername,
		password:    config.AppConfig.SMTPPassword,
		frontendURL: config.AppConfig.FrontendURL,
	}
}

// SendPasswordResetEmail 异步发送密码重置邮件，token 为一次性明文令牌
func (s *EmailService) SendPasswordResetEmail(email, name, token string) {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s&email=%s", s.frontendURL, token, email)

	subject := "重置您的密码"
	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="zh-CN">
	<head>
		<meta charset="UTF-8">
		<title>重置您的密码</title>
	</head>
	<body>
		<p>亲爱的 %s，</p>
		<p>我们收到了您的密码重置请求。如果这不是您本人操作，请忽略此邮件。</p>
		<p>要重置您的密码，请点击以下链接：</p>
		<p><a href="%s">重置密码</a></p>
		<p>此链接将在1小时后过期。</p>
		<p>此邮件由系统自动发送，请勿直接回复。</p>
	</body>
	</html>
	`, name, resetLink)

	s.sendEmailAsync(email, subject, body)
}

func (s *EmailService) sendEmailAsync(to, subject, body string) {
	go func() {
		err := common.WithRetry(func() error {
			return s.sendEmail(to, subject, body)
		}, 3)
		if err != nil {
			util.Logger.Error("异步发送邮件失败", zap.Error(err), zap.String("to", to))
		}
	}()
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	util.Logger.Info("开始发送邮件",
		zap.String("to", to),
		zap.String("subject", subject))

	m := mail.NewMessage()
	m.SetHeader("From", s.username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	d.Timeout = 20 * time.Second
	d.SSL = true
	d.TLSConfig = &tls.Config{ServerName: s.smtpHost}

	if err := d.DialAndSend(m); err != nil {
		util.Logger.Error("发送邮件失败", zap.Error(err))
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	util.Logger.Info("邮件发送成功", zap.String("to", to))
	return nil
}
