package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"time"

	"backend/internal/config"
)

// Notifier 通知器接口：投递即忘，不保证送达、不重试
type Notifier interface {
	Send(ctx context.Context, notification *Notification) error
}

// Notification 通知消息
type Notification struct {
	Type    string         // email, sms, websocket
	To      string         // 接收地址（邮箱/手机号/用户ID）
	Subject string         // 主题
	Body    string         // 内容
	Data    map[string]any // 附加数据
}

// MultiNotifier 多通道通知器
type MultiNotifier struct {
	email     *EmailNotifier
	sms       *SMSNotifier
	websocket *WebSocketNotifier
}

// NewMultiNotifier 创建多通道通知器
func NewMultiNotifier(smtpCfg *config.SMTPConfig, smsCfg *config.SMSConfig, hub *WebSocketHub) *MultiNotifier {
	return &MultiNotifier{
		email:     NewEmailNotifier(smtpCfg),
		sms:       NewSMSNotifier(smsCfg),
		websocket: NewWebSocketNotifier(hub),
	}
}

// Send 按类型分发通知
func (m *MultiNotifier) Send(ctx context.Context, notification *Notification) error {
	var notifier Notifier

	switch notification.Type {
	case "email":
		notifier = m.email
	case "sms":
		notifier = m.sms
	case "websocket":
		notifier = m.websocket
	default:
		return fmt.Errorf("不支持的通知类型: %s", notification.Type)
	}

	if notifier == nil {
		return fmt.Errorf("通知器未配置: %s", notification.Type)
	}

	return notifier.Send(ctx, notification)
}

// EmailNotifier 邮件通知器
type EmailNotifier struct {
	config *config.SMTPConfig
}

// NewEmailNotifier 创建邮件通知器
func NewEmailNotifier(cfg *config.SMTPConfig) *EmailNotifier {
	if cfg == nil || cfg.Host == "" {
		return nil
	}
	return &EmailNotifier{config: cfg}
}

// Send 发送邮件
func (e *EmailNotifier) Send(ctx context.Context, notification *Notification) error {
	if e == nil || e.config == nil {
		return fmt.Errorf("邮件未配置")
	}

	var body bytes.Buffer
	body.WriteString(notification.Body)

	message := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		e.config.FromName,
		e.config.From,
		notification.To,
		notification.Subject,
		body.String(),
	)

	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)
	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)

	if err := smtp.SendMail(addr, auth, e.config.From, []string{notification.To}, []byte(message)); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

// SMSNotifier 短信通知器，经由 HTTP 网关发送
type SMSNotifier struct {
	config *config.SMSConfig
	client *http.Client
}

// NewSMSNotifier 创建短信通知器
func NewSMSNotifier(cfg *config.SMSConfig) *SMSNotifier {
	if cfg == nil || cfg.GatewayURL == "" {
		return nil
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMSNotifier{
		config: cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Send 发送短信
func (s *SMSNotifier) Send(ctx context.Context, notification *Notification) error {
	if s == nil || s.config == nil {
		return fmt.Errorf("短信网关未配置")
	}

	payload := map[string]any{
		"sender":  s.config.Sender,
		"to":      notification.To,
		"message": notification.Body,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化短信负载失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.GatewayURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("创建短信请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送短信失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("短信网关返回错误状态: %d", resp.StatusCode)
	}
	return nil
}

// WebSocketNotifier 站内 WebSocket 通知器
type WebSocketNotifier struct {
	hub *WebSocketHub
}

// NewWebSocketNotifier 创建 WebSocket 通知器
func NewWebSocketNotifier(hub *WebSocketHub) *WebSocketNotifier {
	if hub == nil {
		return nil
	}
	return &WebSocketNotifier{hub: hub}
}

// Send 推送站内消息，To 为用户ID
func (ws *WebSocketNotifier) Send(ctx context.Context, notification *Notification) error {
	if ws == nil || ws.hub == nil {
		return fmt.Errorf("WebSocket hub 未配置")
	}
	if notification.To == "" {
		return fmt.Errorf("WebSocket 通知缺少接收用户")
	}
	payload := map[string]any{
		"type":      notification.Type,
		"subject":   notification.Subject,
		"body":      notification.Body,
		"data":      notification.Data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	return ws.hub.SendToUser(notification.To, payload)
}
