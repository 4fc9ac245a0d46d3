package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// client pairs a websocket connection with its metadata and serializes
// writes: broadcasts and protocol acks may come from different goroutines
// and gorilla/websocket permits one concurrent writer per connection.
type client struct {
	conn *websocket.Conn
	info ConnInfo

	writeMu sync.Mutex
}

func newClient(conn *websocket.Conn, info ConnInfo) *client {
	return &client{conn: conn, info: info}
}

func (c *client) write(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *client) writeJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(payload)
}

func (c *client) close() {
	c.conn.Close()
}
