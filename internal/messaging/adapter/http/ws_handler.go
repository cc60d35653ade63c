package http

import (
	"time"

	"edwin/internal/messaging/adapter/realtime"
	"edwin/internal/shared/logger"
	"edwin/internal/shared/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	localsUser = "wsUser"

	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// SocketHandler upgrades /api/ws and streams message events to the caller.
type SocketHandler struct {
	hub *realtime.Hub
	log logger.Logger
}

func NewSocketHandler(hub *realtime.Hub, log logger.Logger) *SocketHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SocketHandler{hub: hub, log: log.WithComponent("messaging-ws")}
}

// RegisterRoutes mounts GET /ws behind protect, which must authenticate the
// caller before the upgrade.
func (h *SocketHandler) RegisterRoutes(api fiber.Router, protect fiber.Handler) {
	api.Get("/ws", protect, h.upgrade, websocket.New(h.serve))
}

func (h *SocketHandler) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	callerID, err := utils.CallerID(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	c.Locals(localsUser, callerID)
	return c.Next()
}

func (h *SocketHandler) serve(conn *websocket.Conn) {
	user, ok := conn.Locals(localsUser).(primitive.ObjectID)
	if !ok {
		return
	}
	log := h.log.WithFields(map[string]interface{}{"user": user.Hex()})
	client := h.hub.Register(user)
	log.Debug("socket connected")

	writerDone := make(chan struct{})
	go h.write(conn, client, writerDone)

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("socket closed unexpectedly: %v", err)
			}
			break
		}
	}

	h.hub.Unregister(client)
	<-writerDone
	log.Debug("socket disconnected")
}

// write is the only goroutine writing to conn.
func (h *SocketHandler) write(conn *websocket.Conn, client *realtime.Client, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-client.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
