package connections

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/csrsef/chatbot/pkg/logger"
)

// TimeoutConfig holds the various timeout settings for WebSocket connections
type TimeoutConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// DefaultTimeouts provides sensible default timeout values
var DefaultTimeouts = TimeoutConfig{
	PongWait:   30 * time.Second,
	PingPeriod: 27 * time.Second, // (PongWait * 9) / 10
	WriteWait:  10 * time.Second,
}

// Client is one registered relay socket. Writes go through Client so the
// reply loop and the ping loop never write concurrently.
type Client struct {
	ID          string
	SessionID   string
	ConnectedAt time.Time

	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Conn returns the underlying socket.
func (c *Client) Conn() *websocket.Conn {
	return c.conn
}

// WriteJSON sends one frame with a write deadline.
func (c *Client) WriteJSON(v interface{}, wait time.Duration) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(wait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// Ping sends a ping control frame.
func (c *Client) Ping(wait time.Duration) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(wait))
}

// Manager handles WebSocket connection lifecycle
type Manager struct {
	clients  sync.Map
	mu       sync.RWMutex
	timeouts TimeoutConfig
}

// NewManager creates a new connection manager with the specified timeouts
func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		timeouts: timeouts,
	}
}

// Register tracks conn and returns its client handle.
func (m *Manager) Register(conn *websocket.Conn, sessionID string) *Client {
	client := &Client{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		ConnectedAt: time.Now(),
		conn:        conn,
	}
	m.clients.Store(client.ID, client)
	logger.Debug(logger.WEBSOCKET, "Registered connection %s (active: %d)", client.ID, m.Count())
	return client
}

// Unregister stops tracking client.
func (m *Manager) Unregister(client *Client) {
	m.clients.Delete(client.ID)
	logger.Debug(logger.WEBSOCKET, "Unregistered connection %s after %s", client.ID, time.Since(client.ConnectedAt).Round(time.Millisecond))
}

// Count returns the current number of active connections
func (m *Manager) Count() int {
	count := 0
	m.clients.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}

// Has checks if a connection with the given id is registered
func (m *Manager) Has(id string) bool {
	_, exists := m.clients.Load(id)
	return exists
}

// CloseAll sends a going-away close frame to every connection and drops it.
func (m *Manager) CloseAll() {
	wait := m.Timeouts().WriteWait
	m.clients.Range(func(key, value interface{}) bool {
		client := value.(*Client)
		client.writeMu.Lock()
		_ = client.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(wait),
		)
		client.writeMu.Unlock()
		_ = client.conn.Close()
		m.clients.Delete(key)
		return true
	})
}

// Timeouts returns the current timeout configuration
func (m *Manager) Timeouts() TimeoutConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timeouts
}

// SetTimeouts updates the timeout configuration
func (m *Manager) SetTimeouts(timeouts TimeoutConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts = timeouts
}
