package tasks

// Task Types
const (
	TypeNotifySend = "notify:send"
)

// NotifySendPayload 通知发送任务载荷
// Recipients 为用户ID列表，由消费端解析为邮箱地址并同时做站内推送
type NotifySendPayload struct {
	DocID      string   `json:"doc_id"`
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	Template   string   `json:"template"`
}
