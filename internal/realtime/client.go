package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendQueueSize  = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Boards are shared by link; the socket is as origin-agnostic as the page.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one live websocket connection speaking the board session protocol.
type Client struct {
	id       string
	conn     *websocket.Conn
	protocol *Protocol
	send     chan Message
}

var _ Subscriber = (*Client)(nil)

func (c *Client) ID() string { return c.id }

// Deliver queues a frame for the write pump. A client whose queue is full is
// too far behind; the frame is dropped and the client catches up on rejoin.
func (c *Client) Deliver(msg Message) {
	select {
	case c.send <- msg:
	default:
		log.Printf("⚠️  Dropping %s frame for slow connection %s", msg.Event, c.id)
	}
}

// ServeWS upgrades an HTTP request into a live session connection and runs its
// read/write pumps.
func ServeWS(protocol *Protocol, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ Websocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		id:       uuid.NewString(),
		conn:     conn,
		protocol: protocol,
		send:     make(chan Message, sendQueueSize),
	}
	log.Printf("Connection opened: %s", client.id)

	go client.writePump()
	client.readPump(r.Context())
}

// readPump decodes inbound frames and feeds them to the protocol one at a
// time, so events from a single connection never interleave with each other.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.protocol.Disconnect(c)
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️  Read error on connection %s: %v", c.id, err)
			}
			return
		}

		var frame Envelope
		if err := json.Unmarshal(raw, &frame); err != nil || frame.Event == "" {
			c.Deliver(Message{Event: EventError, Data: "Invalid message format."})
			continue
		}

		c.protocol.HandleFrame(ctx, c, frame)
	}
}

// writePump owns all writes to the socket: queued frames plus keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
