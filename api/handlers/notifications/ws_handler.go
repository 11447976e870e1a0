package notifications

import (
	"net/http"

	"backend/internal/auth"
	"backend/internal/common"
	"backend/internal/logger"
	"backend/internal/notification"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 同源校验交给网关层
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler 站内通知 WebSocket 接入点
type WSHandler struct {
	hub *notification.WebSocketHub
}

// NewWSHandler 创建 WebSocket 处理器
func NewWSHandler(hub *notification.WebSocketHub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Connect 建立通知连接
// @Summary 站内通知 WebSocket 连接
// @Tags Notification
// @Security BearerAuth
// @Router /api/ws [get]
func (h *WSHandler) Connect(c *gin.Context) {
	userID := auth.CurrentUserID(c)
	if userID == "" {
		common.ResponseError(c, common.CodeUnauthorized, "")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("WebSocket 升级失败", zap.Error(err))
		return
	}

	h.hub.Register(userID, conn)

	// 读循环只用于感知断开，客户端消息一律忽略
	go func() {
		defer func() {
			h.hub.Unregister(userID, conn)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
