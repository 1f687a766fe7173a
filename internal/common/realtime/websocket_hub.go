package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"

	"github.com/rakasetyo/cvrptw-planner/internal/routing"
)

// WebSocketMessage is the envelope sent to subscribers of a solve run.
type WebSocketMessage struct {
	Type       string      `json:"type"`
	Data       interface{} `json:"data"`
	Timestamp  time.Time   `json:"timestamp"`
	SolveRunID string      `json:"solve_run_id,omitempty"`
}

// Client represents a WebSocket client subscribed to one solve run's progress.
type Client struct {
	ID         string
	SolveRunID string
	Conn       *websocket.Conn
	Send       chan []byte
	Hub        *WebSocketHub
}

// WebSocketHub fans out solve progress events to every client watching a
// given solve run, and mirrors broadcasts across instances via Redis
// pub/sub so a solve running on one replica reaches clients connected to
// another.
type WebSocketHub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	redis *redis.Client

	mutex sync.RWMutex

	config *WebSocketConfig
}

// WebSocketConfig holds WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
	PingPeriod      time.Duration
	PongWait        time.Duration
	WriteWait       time.Duration
	MaxMessageSize  int64
}

// DefaultWebSocketConfig returns default WebSocket configuration
func DefaultWebSocketConfig() *WebSocketConfig {
	return &WebSocketConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		PingPeriod:      54 * time.Second,
		PongWait:        60 * time.Second,
		WriteWait:       10 * time.Second,
		MaxMessageSize:  512,
	}
}

const pubSubChannel = "cvrptw:websocket"

// NewWebSocketHub creates a new WebSocket hub
func NewWebSocketHub(redisClient *redis.Client, config *WebSocketConfig) *WebSocketHub {
	if config == nil {
		config = DefaultWebSocketConfig()
	}

	hub := &WebSocketHub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
		redis:      redisClient,
		config:     config,
	}

	go hub.run()
	go hub.startRedisPubSub()

	return hub
}

// run starts the WebSocket hub
func (h *WebSocketHub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

			client.sendMessage(WebSocketMessage{
				Type:      "connection_established",
				Data:      map[string]string{"message": "subscribed to solve progress"},
				Timestamp: time.Now(),
			})

			log.Printf("client %s connected. total clients: %d", client.ID, len(h.clients))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()

			log.Printf("client %s disconnected. total clients: %d", client.ID, len(h.clients))

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// startRedisPubSub relays messages published by other instances into this
// instance's local broadcast channel.
func (h *WebSocketHub) startRedisPubSub() {
	pubsub := h.redis.Subscribe(context.Background(), pubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for msg := range ch {
		h.broadcast <- []byte(msg.Payload)
	}
}

// HandleWebSocket upgrades the connection and subscribes the client to one
// solve run's progress events.
func (h *WebSocketHub) HandleWebSocket(c *gin.Context) {
	solveRunID := c.Param("id")
	if solveRunID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "solve run id is required"})
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  h.config.ReadBufferSize,
		WriteBufferSize: h.config.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to upgrade to websocket"})
		return
	}

	client := &Client{
		ID:         fmt.Sprintf("%s_%d", solveRunID, time.Now().UnixNano()),
		SolveRunID: solveRunID,
		Conn:       conn,
		Send:       make(chan []byte, 256),
		Hub:        h,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastToSolveRun publishes a message to every client watching
// solveRunID, both locally and via Redis so other instances' clients
// receive it too.
func (h *WebSocketHub) BroadcastToSolveRun(solveRunID string, message WebSocketMessage) {
	message.SolveRunID = solveRunID
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("failed to marshal websocket message: %v", err)
		return
	}

	if err := h.redis.Publish(context.Background(), pubSubChannel, data).Err(); err != nil {
		log.Printf("failed to publish websocket message: %v", err)
	}

	h.mutex.RLock()
	for client := range h.clients {
		if client.SolveRunID == solveRunID {
			select {
			case client.Send <- data:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
	h.mutex.RUnlock()
}

// GetConnectedClients returns the number of connected clients
func (h *WebSocketHub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// GetSolveRunClients returns the number of clients watching a solve run.
func (h *WebSocketHub) GetSolveRunClients(solveRunID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for client := range h.clients {
		if client.SolveRunID == solveRunID {
			count++
		}
	}
	return count
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Hub.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.PongWait))
		return nil
	})

	for {
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(c.Hub.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Hub.config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Hub.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendMessage sends a message to the client
func (c *Client) sendMessage(message WebSocketMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("failed to marshal message for client %s: %v", c.ID, err)
		return
	}

	select {
	case c.Send <- data:
	default:
		close(c.Send)
	}
}

// ProgressSink adapts a WebSocketHub into a routing.ProgressSink scoped to
// one solve run, decoupling the optimization engine from transport.
type ProgressSink struct {
	hub        *WebSocketHub
	solveRunID string
}

// NewProgressSink builds a ProgressSink that broadcasts to clients watching
// solveRunID.
func NewProgressSink(hub *WebSocketHub, solveRunID string) *ProgressSink {
	return &ProgressSink{hub: hub, solveRunID: solveRunID}
}

// Publish implements routing.ProgressSink.
func (s *ProgressSink) Publish(event routing.ProgressEvent) {
	s.hub.BroadcastToSolveRun(s.solveRunID, WebSocketMessage{
		Type:      "solve_progress",
		Data:      event,
		Timestamp: time.Now(),
	})
}
