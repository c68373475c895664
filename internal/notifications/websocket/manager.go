package websocket

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Message is one event pushed to connected clients.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

// client pairs a connection with its send queue. All writes to the
// connection happen on its write pump; nothing else may write.
type client struct {
	conn *websocket.Conn
	send chan Message
}

// Manager handles WebSocket connections and fan-out of event messages.
type Manager struct {
	clients    map[*client]bool
	mu         sync.RWMutex
	register   chan *client
	unregister chan *client
	broadcast  chan Message
	upgrader   websocket.Upgrader
}

// NewManager creates a new WebSocket manager
func NewManager() *Manager {
	m := &Manager{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Message, 256),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	go m.run()
	return m
}

// run owns the client set. Send channels are only ever closed here, so a
// broadcast can never race a close.
func (m *Manager) run() {
	for {
		select {
		case cl := <-m.register:
			m.mu.Lock()
			m.clients[cl] = true
			m.mu.Unlock()

		case cl := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[cl]; ok {
				delete(m.clients, cl)
				close(cl.send)
			}
			m.mu.Unlock()

		case msg := <-m.broadcast:
			m.mu.Lock()
			for cl := range m.clients {
				select {
				case cl.send <- msg:
				default:
					delete(m.clients, cl)
					close(cl.send)
				}
			}
			m.mu.Unlock()
		}
	}
}

// HandleConnection upgrades the request and starts the read and write
// pumps for the new client.
func (m *Manager) HandleConnection(c *gin.Context) {
	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	cl := &client{conn: conn, send: make(chan Message, sendBuffer)}
	m.register <- cl

	go m.writePump(cl)
	go m.readPump(cl)
}

// readPump drains the connection until the peer goes away, keeping the
// read deadline alive on pongs.
func (m *Manager) readPump(cl *client) {
	defer func() {
		m.unregister <- cl
		cl.conn.Close()
	}()

	cl.conn.SetReadLimit(512)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		cl.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the connection's single writer: queued messages and pings
// both go out here.
func (m *Manager) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast queues a message for every connected client. It is safe to
// call from any goroutine and never blocks the caller.
func (m *Manager) Broadcast(msg Message) {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}

	select {
	case m.broadcast <- msg:
	default:
		log.Printf("broadcast queue full, dropping %s", msg.Type)
	}
}

// ConnectionCount returns the number of live connections.
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
