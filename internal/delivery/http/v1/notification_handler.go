package v1

import (
	"net/http"
	"time"

	"go-jobboard-client/internal/delivery/http/response"
	"go-jobboard-client/internal/notify"
	"go-jobboard-client/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type NotificationHandler struct {
	hub      *notify.Hub
	upgrader websocket.Upgrader
}

// NewNotificationHandler exposes the notification channel. checkOrigin may be
// nil to accept any origin.
func NewNotificationHandler(r *gin.RouterGroup, hub *notify.Hub, checkOrigin func(r *http.Request) bool) {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	handler := &NotificationHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}

	r.GET("/notifications", handler.Recent)
	r.GET("/notifications/ws", handler.Stream)
}

// Recent godoc
// @Summary      Recent notifications
// @Description  Returns the last notifications, oldest first
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Notification}
// @Router       /notifications [get]
func (h *NotificationHandler) Recent(c *gin.Context) {
	response.Success(c, http.StatusOK, "Notifications", h.hub.Recent())
}

// Stream godoc
// @Summary      Notification stream
// @Description  Upgrades to a websocket and pushes every notification as a JSON message
// @Tags         notifications
// @Success      101
// @Router       /notifications/ws [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("websocket upgrade failed", "error", err)
		return
	}

	sub := h.hub.Subscribe()
	go writePump(conn, sub)
	go readPump(conn, sub)
}

// writePump forwards notifications until the subscription or the socket closes.
func writePump(conn *websocket.Conn, sub *notify.Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Close()
		conn.Close()
	}()

	for {
		select {
		case n, ok := <-sub.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(n); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and closes the subscription on disconnect.
func readPump(conn *websocket.Conn, sub *notify.Subscription) {
	defer sub.Close()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
