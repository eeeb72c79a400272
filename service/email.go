package service

import (
	"fmt"
	"html"
	"time"

	"budget/config"
	"budget/identity"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg  *config.EmailConfig
	send func(*gomail.Message) error
	now  func() time.Time
}

var _ identity.Notifier = (*EmailService)(nil)

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	s := &EmailService{cfg: cfg, now: time.Now}
	s.send = func(m *gomail.Message) error {
		return gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password).DialAndSend(m)
	}
	return s
}

// NotifyPasswordChanged 发送密码已修改提醒
func (s *EmailService) NotifyPasswordChanged(toEmail, username string) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请配置 email.enabled=true")
	}
	subject := "【预算记账】密码已修改"
	return s.sendEmail(toEmail, subject, s.passwordChangedBody(username))
}

func (s *EmailService) passwordChangedBody(username string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>密码已修改</h2>
    <p><strong>%s</strong>，您好！</p>
    <p>您的账号密码已于 %s 修改。</p>
    <p style="color: #856404;">如果这不是您本人的操作，请立即联系管理员。</p>
    <p style="color: #666;">此邮件由系统自动发送，请勿回复</p>
</body>
</html>
`, html.EscapeString(username), s.now().Format("2006-01-02 15:04:05"))
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}
