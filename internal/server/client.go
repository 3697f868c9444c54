package server

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shithead-online/server/internal/logger"
	"github.com/shithead-online/server/internal/protocol"
	"github.com/shithead-online/server/internal/session"
)

const (
	// Write timeout
	writeWait = 10 * time.Second

	// Read timeout (pong wait)
	pongWait = 60 * time.Second

	// Ping interval; must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size
	maxMessageSize = 4096
)

// Client is one websocket connection. A connection may subscribe to any
// number of games; it implements session.Conn for their broadcasts.
type Client struct {
	server *Server
	conn   *websocket.Conn
	send   chan []byte

	mu       sync.Mutex
	closed   bool
	sessions map[string]*session.Session // subscribed games by ID
}

// NewClient wraps an upgraded connection.
func NewClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		server:   s,
		conn:     conn,
		send:     make(chan []byte, 256),
		sessions: make(map[string]*session.Session),
	}
}

// ReadPump reads messages off the socket until it dies.
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.handleDisconnect()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("read error: %v", err)
			}
			break
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			log.Printf("message decode error: %v", err)
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		c.server.handleMessage(c, msg)
	}
}

// WritePump drains the send channel onto the socket and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage queues a message for the connection. A client whose buffer
// is full is dropped rather than allowed to stall broadcasts.
func (c *Client) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	data, err := msg.Encode()
	if err != nil {
		log.Printf("message encode error: %v", err)
		return
	}

	select {
	case c.send <- data:
	default:
		log.Printf("client send buffer full, dropping connection")
		c.Close()
	}
}

// trackSession remembers a joined game for disconnect cleanup.
func (c *Client) trackSession(s *session.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s.GameID] = s
}

// handleDisconnect removes the connection from every session's broadcast
// set. The player itself stays in its games and can still time out.
func (c *Client) handleDisconnect() {
	c.mu.Lock()
	sessions := make([]*session.Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		sessions = append(sessions, s)
	}
	c.sessions = make(map[string]*session.Session)
	c.mu.Unlock()

	for _, s := range sessions {
		s.Leave(c)
	}
	c.server.unregisterClient(c)
	log.Printf("❌ client disconnected")
}

// Close shuts the send channel down once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
