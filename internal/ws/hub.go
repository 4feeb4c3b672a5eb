package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one WebSocket connection to a frontend. SessionID is the
// topic the client joined; empty means firehose (every session).
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Events queued for this client. The write goroutine drains it.
	send chan WsEvent

	// SessionID scopes which events this client receives.
	SessionID string
}

// Hub keeps all active clients and fans events out to the ones
// subscribed to the event's session topic.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	broadcast chan WsEvent

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan WsEvent, 256),
	}
}

// Run must be started in its own goroutine. It owns the client set:
// registrations, disconnects and broadcasts all go through this loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.SessionID != "" && client.SessionID != event.SessionID {
					continue
				}
				select {
				case client.send <- event:
				default:
					// Slow consumer, drop the connection.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish implements RealtimePublisher. Delivery is best-effort: events
// for topics nobody joined are simply dropped.
func (h *Hub) Publish(event WsEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	h.broadcast <- event
}

// RealtimePublisher is what the session registry and the blaster hold,
// so they never depend on the concrete hub (or on any subscriber).
type RealtimePublisher interface {
	Publish(event WsEvent)
}

// MultiPublisher fans one Publish out to several sinks, e.g. the hub
// plus the blast log file.
type MultiPublisher []RealtimePublisher

func (m MultiPublisher) Publish(event WsEvent) {
	for _, p := range m {
		p.Publish(event)
	}
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan WsEvent, 256),
	}
}

// Enqueue delivers an event to this client only. Used for the
// status/QR replay a client gets right after joining a topic.
func (c *Client) Enqueue(event WsEvent) {
	select {
	case c.send <- event:
	default:
	}
}

// WritePump drains the send channel into the connection. Run as a
// goroutine by the /ws handler.
func (c *Client) WritePump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for event := range c.send {
		payload, err := json.Marshal(event)
		if err != nil {
			log.Printf("ws: failed to marshal event: %v", err)
			continue
		}

		_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// ReadPump consumes (and discards) client frames so pings and closes
// are processed; it unregisters the client when the connection drops.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)

	_ = c.conn.SetReadDeadline(time.Now().Add(15 * time.Minute))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(15 * time.Minute))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
