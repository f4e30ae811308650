// internal/handler/websocket_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"thermal-print-service/internal/model"
	"thermal-print-service/internal/utils"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
)

// WebSocketHandler streams dispatch events to WebSocket clients
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	connections *ConnectionManager
	eventBus    *EventBus
	logger      *utils.ServiceLogger
}

// NewWebSocketHandler creates a new WebSocket handler reading from bus
func NewWebSocketHandler(bus *EventBus, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The service listens on localhost for browser pages served elsewhere
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		connections: NewConnectionManager(),
		eventBus:    bus,
		logger:      utils.NewServiceLogger(logger, "websocket-handler"),
	}
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws/attempts", h.HandleAttemptStream)
}

// HandleAttemptStream upgrades the request and streams every dispatch
// event until the client disconnects.
func (h *WebSocketHandler) HandleAttemptStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := newClient(conn, uuid.NewString(), c.Request.UserAgent(), c.Request.RemoteAddr)
	h.connections.Register(client)
	subscriptionID, events := h.eventBus.Subscribe()

	h.logger.Info("Attempt stream client connected",
		zap.String("client_id", client.ID),
		zap.String("remote_addr", client.RemoteAddr),
	)

	h.sendMessage(client, &WebSocketMessage{
		Type:      "connected",
		Data:      map[string]interface{}{"client_id": client.ID},
		Timestamp: time.Now(),
	})

	go h.handleClientWrite(client, events)
	go func() {
		h.handleClientRead(client)
		client.close()
		h.eventBus.Unsubscribe(subscriptionID)
		h.connections.Unregister(client)
		h.logger.Info("Attempt stream client disconnected", zap.String("client_id", client.ID))
	}()
}

// handleClientRead reads control messages until the connection fails
func (h *WebSocketHandler) handleClientRead(client *Client) {
	client.Connection.SetReadDeadline(time.Now().Add(pongWait))
	client.Connection.SetPongHandler(func(string) error {
		return client.Connection.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := client.Connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
			}
			return
		}

		var message WebSocketMessage
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			h.sendError(client, "invalid message")
			continue
		}
		h.handleClientMessage(client, &message)
	}
}

// handleClientWrite is the only writer on the connection
func (h *WebSocketHandler) handleClientWrite(client *Client, events <-chan model.DispatchEvent) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		client.Connection.Close()
	}()

	write := func(messageType int, data []byte) bool {
		client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.Connection.WriteMessage(messageType, data); err != nil {
			h.logger.Debug("WebSocket write error", zap.Error(err), zap.String("client_id", client.ID))
			return false
		}
		return true
	}

	for {
		select {
		case event, ok := <-events:
			if !ok {
				write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if !client.Wants(event.EventType) {
				continue
			}
			messageBytes, err := json.Marshal(&WebSocketMessage{
				Type:      "dispatch_event",
				Data:      event,
				Timestamp: time.Now(),
			})
			if err != nil {
				h.logger.Error("Failed to marshal dispatch event", zap.Error(err))
				continue
			}
			if !write(websocket.TextMessage, messageBytes) {
				return
			}

		case message := <-client.Send:
			if !write(websocket.TextMessage, message) {
				return
			}

		case <-ticker.C:
			if !write(websocket.PingMessage, nil) {
				return
			}

		case <-client.done:
			write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleClientMessage handles incoming client messages
func (h *WebSocketHandler) handleClientMessage(client *Client, message *WebSocketMessage) {
	switch message.Type {
	case "subscribe", "unsubscribe":
		eventType, ok := eventTypeOf(message)
		if !ok {
			h.sendError(client, "data.event_type is required")
			return
		}
		if message.Type == "subscribe" {
			client.Subscribe(eventType)
		} else {
			client.Unsubscribe(eventType)
		}
		h.sendMessage(client, &WebSocketMessage{
			Type:      message.Type + "d",
			Data:      map[string]interface{}{"event_types": client.Subscriptions()},
			Timestamp: time.Now(),
			RequestID: message.RequestID,
		})
	case "ping":
		h.sendMessage(client, &WebSocketMessage{
			Type:      "pong",
			Timestamp: time.Now(),
			RequestID: message.RequestID,
		})
	default:
		h.sendError(client, "unknown message type: "+message.Type)
	}
}

func eventTypeOf(message *WebSocketMessage) (model.EventType, bool) {
	data, ok := message.Data.(map[string]interface{})
	if !ok {
		return "", false
	}
	name, ok := data["event_type"].(string)
	if !ok || name == "" {
		return "", false
	}
	return model.EventType(name), true
}

// sendMessage queues a message for the writer goroutine
func (h *WebSocketHandler) sendMessage(client *Client, message *WebSocketMessage) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal WebSocket message", zap.Error(err))
		return
	}

	select {
	case client.Send <- messageBytes:
	default:
		h.logger.Warn("Client send channel full, dropping message",
			zap.String("client_id", client.ID),
		)
	}
}

func (h *WebSocketHandler) sendError(client *Client, errorMsg string) {
	h.sendMessage(client, &WebSocketMessage{
		Type:      "error",
		Data:      map[string]interface{}{"error": errorMsg},
		Timestamp: time.Now(),
	})
}

// GetConnectionStats returns connection statistics
func (h *WebSocketHandler) GetConnectionStats() *ConnectionStats {
	return h.connections.GetStats()
}

// Shutdown disconnects every client
func (h *WebSocketHandler) Shutdown() {
	h.connections.CloseAll()
}
