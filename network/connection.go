// network/connection.go
package network

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Connection interface {
	SendEvent(evt Event) error
	Close() error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
	ReadEnvelope() (*Envelope, error)
	IsOpen() bool
}

type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	heartbeat time.Duration
	closed    bool
	stateMux  sync.RWMutex
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

func (c *WSConnection) SendEvent(evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// ReadEnvelope blocks until the next frame and decodes the {type, data}
// envelope. A decode failure is returned as-is so the gateway can reply with
// an invalid-format error without tearing the connection down.
func (c *WSConnection) ReadEnvelope() (*Envelope, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.markClosed()
		return nil, err
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrInvalidFormat
	}
	if env.Type == "" {
		return nil, ErrInvalidFormat
	}
	return &env, nil
}

func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.heartbeat = interval
	c.conn.SetReadDeadline(time.Now().Add(interval * 2))
}

func (c *WSConnection) IsOpen() bool {
	c.stateMux.RLock()
	defer c.stateMux.RUnlock()
	return !c.closed
}

func (c *WSConnection) markClosed() {
	c.stateMux.Lock()
	c.closed = true
	c.stateMux.Unlock()
}

func (c *WSConnection) Close() error {
	c.markClosed()
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
