package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialHub 建立一条已注册到 hub 的测试连接
func dialHub(t *testing.T, hub *WebSocketHub, userID string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register(userID, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestHubSendToUser(t *testing.T) {
	hub := NewWebSocketHub(WithKeepAliveInterval(0))
	client := dialHub(t, hub, "emp-1")

	require.Eventually(t, func() bool {
		return hub.ConnectedCount("emp-1") == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.SendToUser("emp-1", map[string]any{"subject": "[결재요청] 문서"}))

	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "[결재요청] 문서", payload["subject"])
}

func TestHubSendToOfflineUserIsNoop(t *testing.T) {
	hub := NewWebSocketHub(WithKeepAliveInterval(0))
	// 用户不在线时静默成功
	require.NoError(t, hub.SendToUser("emp-offline", map[string]any{"subject": "x"}))
	assert.Equal(t, 0, hub.ConnectedCount("emp-offline"))
}

func TestHubUnregister(t *testing.T) {
	hub := NewWebSocketHub(WithKeepAliveInterval(0))
	client := dialHub(t, hub, "emp-1")

	require.Eventually(t, func() bool {
		return hub.ConnectedCount("emp-1") == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, client.Close())

	// 对已断开连接的写入会触发清理
	require.Eventually(t, func() bool {
		_ = hub.SendToUser("emp-1", map[string]any{"subject": "x"})
		return hub.ConnectedCount("emp-1") == 0
	}, 2*time.Second, 20*time.Millisecond)
}
