package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"backend/internal/notification"
	"backend/internal/worker/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeNotifier 记录投递过的通知
type fakeNotifier struct {
	mu       sync.Mutex
	sent     []*notification.Notification
	failType string
}

func (f *fakeNotifier) Send(ctx context.Context, n *notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.Type == f.failType {
		return errors.New("投递失败")
	}
	f.sent = append(f.sent, n)
	return nil
}

type fakeResolver struct {
	emails map[string]string
}

func (f *fakeResolver) ResolveEmail(ctx context.Context, userID string) string {
	return f.emails[userID]
}

func newNotifyTask(t *testing.T, payload tasks.NotifySendPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(tasks.TypeNotifySend, data)
}

func TestNotifyHandlerSendsWebSocketAndEmail(t *testing.T) {
	notifier := &fakeNotifier{}
	resolver := &fakeResolver{emails: map[string]string{"emp-a": "a@example.com"}}
	h := NewNotifyHandler(notifier, resolver, zap.NewNop())

	task := newNotifyTask(t, tasks.NotifySendPayload{
		DocID:      "doc-1",
		Recipients: []string{"emp-a", "emp-b"},
		Subject:    "[결재요청] 지출결의서",
		Body:       "결재 대기 문서가 있습니다.",
		Template:   "approval_requested",
	})

	require.NoError(t, h.HandleNotifySend(context.Background(), task))

	// emp-a: 站内 + 邮件，emp-b: 仅站内（无邮箱）
	require.Len(t, notifier.sent, 3)

	byType := map[string][]string{}
	for _, n := range notifier.sent {
		byType[n.Type] = append(byType[n.Type], n.To)
	}
	assert.ElementsMatch(t, []string{"emp-a", "emp-b"}, byType["websocket"])
	assert.Equal(t, []string{"a@example.com"}, byType["email"])
}

func TestNotifyHandlerContinuesAfterChannelFailure(t *testing.T) {
	notifier := &fakeNotifier{failType: "websocket"}
	resolver := &fakeResolver{emails: map[string]string{"emp-a": "a@example.com"}}
	h := NewNotifyHandler(notifier, resolver, zap.NewNop())

	task := newNotifyTask(t, tasks.NotifySendPayload{
		DocID:      "doc-1",
		Recipients: []string{"emp-a"},
		Subject:    "[반려] 지출결의서",
		Body:       "문서가 반려되었습니다.",
	})

	// 单通道失败不让任务报错（任务不重试）
	require.NoError(t, h.HandleNotifySend(context.Background(), task))
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "email", notifier.sent[0].Type)
}

func TestNotifyHandlerBadPayload(t *testing.T) {
	h := NewNotifyHandler(&fakeNotifier{}, nil, zap.NewNop())
	task := asynq.NewTask(tasks.TypeNotifySend, []byte("{not json"))
	require.Error(t, h.HandleNotifySend(context.Background(), task))
}
