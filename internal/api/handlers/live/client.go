package live

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"Snapgram/internal/core/querycache"
)

type client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	watched map[querycache.Key]struct{}
	mu      sync.Mutex
	closed  bool
}

// enqueue reports false when the client's buffer is full
func (c *client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *client) staleKeys(prefixes []querycache.Key) []querycache.Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stale []querycache.Key
	for key := range c.watched {
		for _, prefix := range prefixes {
			if key.Matches(prefix) {
				stale = append(stale, key)
				break
			}
		}
	}
	return stale
}

func (c *client) watch(keys []querycache.Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A rejected batch leaves the watch set unchanged
	added := make(map[querycache.Key]struct{}, len(keys))
	for _, key := range keys {
		if key.Kind == "" {
			return fmt.Errorf("key kind is required")
		}
		if _, ok := c.watched[key]; !ok {
			added[key] = struct{}{}
		}
	}
	if len(c.watched)+len(added) > MaxWatchedKeys {
		return fmt.Errorf("too many watched keys (max %d)", MaxWatchedKeys)
	}
	for key := range added {
		c.watched[key] = struct{}{}
	}
	return nil
}

func (c *client) unwatch(keys []querycache.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.watched, key)
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("[LIVE] connection closed unexpectedly", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(Message{Type: TypeError, Error: "invalid message"})
			continue
		}

		switch msg.Type {
		case TypeWatch:
			if err := c.watch(msg.Keys); err != nil {
				c.reply(Message{Type: TypeError, Error: err.Error()})
				continue
			}
			c.reply(Message{Type: TypeWatching, Keys: msg.Keys})
		case TypeUnwatch:
			c.unwatch(msg.Keys)
		default:
			c.reply(Message{Type: TypeError, Error: fmt.Sprintf("unknown message type %q", msg.Type)})
		}
	}
}

func (c *client) reply(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if !c.enqueue(payload) {
		c.hub.unregister(c)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
