// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/run_tracker/internal/panel"
)

const (
	wsWriteWait  = 5 * time.Second
	wsSendBuffer = 8
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsClient is one browser tab. Only its writer goroutine touches conn for
// writing.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans screens out to websocket clients and turns their messages into
// commands. It also remembers the last screen for /api/state.
type Hub struct {
	submit func(panel.Command)

	mu       sync.RWMutex
	clients  map[*wsClient]struct{}
	last     panel.Screen
	haveLast bool
}

func NewHub(submit func(panel.Command)) *Hub {
	return &Hub{
		submit:  submit,
		clients: map[*wsClient]struct{}{},
	}
}

// Show broadcasts s. Slow clients miss frames rather than stall the loop.
func (h *Hub) Show(s panel.Screen) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.last = s
	h.last.Notice = ""
	h.last.Help = ""
	h.haveLast = true
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			log.Printf("web: client %s too slow, dropping frame", c.id)
		}
	}
	h.mu.Unlock()
	return nil
}

// Last returns the most recent screen.
func (h *Hub) Last() (panel.Screen, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.haveLast
}

// ClientCount reports connected websocket clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWS upgrades the request and serves one client until it leaves.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	c := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.haveLast {
		if payload, err := json.Marshal(h.last); err == nil {
			c.send <- payload
		}
	}
	h.mu.Unlock()
	log.Printf("web: client %s connected", c.id)

	go c.writeLoop()

	for {
		var cmd panel.Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("web: client %s read error: %v", c.id, err)
			}
			break
		}
		if cmd.Action == "" {
			log.Printf("web: client %s sent a message without action", c.id)
			continue
		}
		h.submit(cmd)
	}

	h.mu.Lock()
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()
	log.Printf("web: client %s disconnected", c.id)
}

func (c *wsClient) writeLoop() {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.write(websocket.TextMessage, payload); err != nil {
			log.Printf("web: client %s write error: %v", c.id, err)
			return
		}
	}
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.write(websocket.CloseMessage, closeMsg); err != nil {
		log.Printf("web: client %s close frame error: %v", c.id, err)
	}
}

func (c *wsClient) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	return c.conn.WriteMessage(messageType, data)
}
