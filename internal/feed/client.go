package feed

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

type client struct {
	id        uint64
	conn      *websocket.Conn
	out       chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
	log       *zap.Logger
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		c.conn.Close()
	})
}

// writeLoop drains the out queue onto the connection.
func (c *client) writeLoop() {
	defer c.close()
	for {
		select {
		case <-c.closeCh:
			return
		case data := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debug("spectator write failed", zap.Uint64("id", c.id), zap.Error(err))
				return
			}
		}
	}
}

// readLoop discards anything the spectator sends; it returns once the
// connection closes.
func (c *client) readLoop() {
	defer c.close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
