package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/Esysc/ansible-ws-logging/internal/common"
	"github.com/Esysc/ansible-ws-logging/internal/interfaces"
	"github.com/Esysc/ansible-ws-logging/internal/models"
	"github.com/Esysc/ansible-ws-logging/internal/services/watcher"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is the frame format for both directions of the channel.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// wsRequest is an inbound client frame with a deferred payload.
type wsRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// HelloMessage is sent to each client on connect. Clients use the
// instance ID to detect a server restart and clear cached state.
type HelloMessage struct {
	ServerInstanceID string `json:"serverInstanceId"`
}

// WebSocketHandler owns the client registry and implements the
// Notifier used by the directory monitor.
type WebSocketHandler struct {
	logger      arbor.ILogger
	clients     map[*websocket.Conn]bool
	clientMutex map[*websocket.Conn]*sync.Mutex
	mu          sync.RWMutex

	catalog interfaces.CatalogService
	content interfaces.ContentService
	logsDir string

	monitor        interfaces.Monitor
	monitorCtx     context.Context
	monitorStarted atomic.Bool

	throttlers       map[string]*rate.Limiter
	serverInstanceID string
}

// NewWebSocketHandler creates the WebSocket handler. The monitor is
// attached later via SetMonitor because it broadcasts through this
// handler.
func NewWebSocketHandler(
	catalog interfaces.CatalogService,
	content interfaces.ContentService,
	logsDir string,
	logger arbor.ILogger,
	config *common.WebSocketConfig,
) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:           logger,
		clients:          make(map[*websocket.Conn]bool),
		clientMutex:      make(map[*websocket.Conn]*sync.Mutex),
		catalog:          catalog,
		content:          content,
		logsDir:          logsDir,
		monitorCtx:       context.Background(),
		throttlers:       make(map[string]*rate.Limiter),
		serverInstanceID: uuid.New().String(),
	}

	// Throttlers are built only for explicitly configured event types;
	// a nil throttler means every event is delivered.
	if config != nil {
		for eventType, intervalStr := range config.ThrottleIntervals {
			duration, err := time.ParseDuration(intervalStr)
			if err != nil {
				logger.Warn().
					Err(err).
					Str("event_type", eventType).
					Str("interval", intervalStr).
					Msg("Failed to parse throttle interval - throttler disabled")
				continue
			}
			h.throttlers[eventType] = rate.NewLimiter(rate.Every(duration), 1)
			logger.Debug().
				Str("event_type", eventType).
				Str("interval", intervalStr).
				Msg("Throttler initialized for event type")
		}
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized")

	return h
}

// SetMonitor attaches the background monitor started on first connect.
// ctx bounds the monitor's lifetime.
func (h *WebSocketHandler) SetMonitor(monitor interfaces.Monitor, ctx context.Context) {
	h.monitor = monitor
	h.monitorCtx = ctx
}

// HandleWebSocket handles WebSocket connections
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = &sync.Mutex{}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Msgf("WebSocket client connected (total: %d)", clientCount)

	h.ensureMonitorStarted()

	// Initial state goes to the connecting client only; list changes
	// after this point arrive as broadcasts from the monitor.
	h.sendToConn(conn, "hello", HelloMessage{ServerInstanceID: h.serverInstanceID})
	h.sendToConn(conn, watcher.EventFileList, h.catalog.List())

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		delete(h.clientMutex, conn)
		remaining := len(h.clients)
		h.mu.Unlock()

		conn.Close()
		h.logger.Debug().Msgf("WebSocket client disconnected (remaining: %d)", remaining)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}

		var req wsRequest
		if err := json.Unmarshal(data, &req); err != nil {
			h.logger.Debug().Err(err).Msg("Ignoring malformed client frame")
			continue
		}
		h.dispatch(req)
	}
}

// ensureMonitorStarted starts the directory monitor exactly once for
// the process lifetime, even under concurrent first connections.
func (h *WebSocketHandler) ensureMonitorStarted() {
	if h.monitor == nil {
		return
	}
	if !h.monitorStarted.CompareAndSwap(false, true) {
		return
	}

	go h.monitor.Run(h.monitorCtx)
	h.logger.Info().Msg("Log monitor started on first client connect")
}

// dispatch routes one inbound client frame.
func (h *WebSocketHandler) dispatch(req wsRequest) {
	switch req.Type {
	case "get_file_content":
		var payload struct {
			Name string `json:"name"`
		}
		if len(req.Payload) > 0 {
			if err := json.Unmarshal(req.Payload, &payload); err != nil {
				h.logger.Debug().Err(err).Msg("Ignoring malformed get_file_content payload")
				return
			}
		}
		h.handleGetFileContent(payload.Name)
	default:
		h.logger.Debug().Str("type", req.Type).Msg("Ignoring unknown client frame type")
	}
}

// handleGetFileContent validates the requested name against the watched
// directory and broadcasts the content to all clients. Content for a
// fetched file intentionally goes to every client, matching the live
// tail behavior.
func (h *WebSocketHandler) handleGetFileContent(name string) {
	if name == "" {
		return
	}

	path, ok := ResolveWithin(h.logsDir, name)
	if !ok {
		h.logger.Warn().Str("name", name).Msg("Rejected file request outside watched directory")
		h.Broadcast(watcher.EventFileContentError, models.ErrorMessage{Message: "Invalid file path"})
		return
	}

	h.Broadcast(watcher.EventFileContent, models.ContentMessage{
		Name:    name,
		Content: h.content.Read(path),
	})
}

// Broadcast sends an event to all connected clients. Transport errors
// are logged per client and never propagate to the caller.
func (h *WebSocketHandler) Broadcast(event string, payload interface{}) {
	if limiter, ok := h.throttlers[event]; ok && !limiter.Allow() {
		return
	}

	data, err := json.Marshal(WSMessage{Type: event, Payload: payload})
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to marshal broadcast message")
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	mutexes := make([]*sync.Mutex, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
		mutexes = append(mutexes, h.clientMutex[conn])
	}
	h.mu.RUnlock()

	for i, conn := range clients {
		mutex := mutexes[i]
		mutex.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutex.Unlock()

		if err != nil {
			h.logger.Warn().Err(err).Str("event", event).Msg("Failed to send event to client")
		}
	}
}

// sendToConn delivers an event to a single client.
func (h *WebSocketHandler) sendToConn(conn *websocket.Conn, event string, payload interface{}) {
	data, err := json.Marshal(WSMessage{Type: event, Payload: payload})
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to marshal message")
		return
	}

	h.mu.RLock()
	mutex, ok := h.clientMutex[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}

	mutex.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	mutex.Unlock()

	if err != nil {
		h.logger.Warn().Err(err).Str("event", event).Msg("Failed to send event to client")
	}
}
