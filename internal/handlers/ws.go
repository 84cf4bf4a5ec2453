package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/projectbuddy/projectbuddy/internal/logger"
	"github.com/projectbuddy/projectbuddy/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Frame is the envelope of every message written to a notification socket.
type Frame struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks the open notification sockets of each user. It implements
// services.Pusher.
type Hub struct {
	clients   map[string]map[*client]struct{}
	clientsMu sync.RWMutex
	upgrader  websocket.Upgrader
}

func NewHub(allowedOrigins []string) *Hub {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

// Push queues n on every socket userID has open. Slow clients whose buffer
// is full are dropped rather than blocking delivery.
func (h *Hub) Push(userID string, n *models.Notification) {
	payload, err := json.Marshal(Frame{Type: "notification", Data: n})
	if err != nil {
		logger.Log.WithError(err).Error("failed to encode notification frame")
		return
	}

	var slow []*client

	// Sends happen under the read lock so unregister cannot close a channel
	// mid-send.
	h.clientsMu.RLock()
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.clientsMu.RUnlock()

	for _, c := range slow {
		logger.Log.WithField("user_id", userID).Warn("notification socket is not keeping up, closing it")
		h.unregister(userID, c)
	}
}

// Clients returns the number of open sockets.
func (h *Hub) Clients() int {
	if h == nil {
		return 0
	}

	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) register(userID string, c *client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	h.clients[userID][c] = struct{}{}
}

// unregister is safe to call more than once for the same client.
func (h *Hub) unregister(userID string, c *client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	set, exists := h.clients[userID]
	if !exists {
		return
	}

	if _, ok := set[c]; !ok {
		return
	}

	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, userID)
	}
	close(c.send)
}

// NotificationSocket upgrades the request and streams the caller's
// notifications until the socket closes.
func (h *Handler) NotificationSocket(ctx *gin.Context) {
	id, ok := userID(ctx)

	if !ok {
		return
	}

	conn, err := h.hub.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	log := logger.Log.WithField("user_id", id)
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	welcome, err := json.Marshal(Frame{Type: "connected", Message: "WebSocket connection established"})
	if err == nil {
		c.send <- welcome
	}

	h.hub.register(id, c)
	go c.writePump(log)

	defer func() {
		h.hub.unregister(id, c)
		log.Debug("notification socket closed")
	}()

	c.readPump(log)
}

// readPump only services control frames; clients do not send data.
func (c *client) readPump(log *logrus.Entry) {
	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("websocket error")
			}
			return
		}
	}
}

// writePump owns all writes to the connection and closes it when the send
// channel is closed.
func (c *client) writePump(log *logrus.Entry) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.WithError(err).Warn("failed to write notification")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
