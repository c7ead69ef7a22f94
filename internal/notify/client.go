package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
)

type inboundMessage struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

// Client is a WebSocket connection subscribed to its user's topic.
// A single goroutine writes to the connection, fed by a bounded queue.
type Client struct {
	id       string
	userID   string
	conn     *websocket.Conn
	registry *Registry
	logger   zerolog.Logger

	send      chan Event
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	mu         sync.Mutex
	subscribed bool
}

var _ Subscriber = (*Client)(nil)

func NewClient(
	logger zerolog.Logger,
	registry *Registry,
	conn *websocket.Conn,
	userID string,
	sendBuffer int,
) *Client {
	id := uuid.NewString()
	return &Client{
		id:       id,
		userID:   userID,
		conn:     conn,
		registry: registry,
		logger: logger.With().
			Str("client_id", id).
			Str("user_id", userID).
			Logger(),
		send:    make(chan Event, sendBuffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (c *Client) Topic() string {
	return c.userID
}

func (c *Client) Deliver(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- ev:
		return true
	default:
		c.logger.Warn().
			Str("kind", ev.Kind).
			Msg("send buffer full, dropping event")
		return false
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Serve subscribes the client and blocks until the connection is closed
// by the peer, by Close or by the registry shutting down.
func (c *Client) Serve() {
	err := c.subscribe()
	if err != nil {
		c.logger.Error().
			Err(err).
			Msg("failed to subscribe client")
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(writeWait),
		)
		_ = c.conn.Close()
		return
	}
	c.logger.Info().Msg("client connected")

	go c.writePump()
	c.Deliver(Event{Kind: KindSubscribed, Message: c.userID})

	c.readPump()

	c.unsubscribe()
	c.Close()
	<-c.stopped
	c.logger.Info().Msg("client disconnected")
}

func (c *Client) subscribe() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subscribed {
		return nil
	}
	err := c.registry.Add(c)
	if err != nil {
		return err
	}
	c.subscribed = true
	return nil
}

func (c *Client) unsubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subscribed {
		c.registry.Remove(c)
		c.subscribed = false
	}
}

func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error().
					Err(err).
					Msg("unexpected close")
			}
			return
		}

		var msg inboundMessage
		err = json.Unmarshal(data, &msg)
		if err != nil {
			c.Deliver(Event{Kind: KindError, Message: "invalid message"})
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg inboundMessage) {
	switch msg.Action {
	case actionSubscribe, actionUnsubscribe:
	default:
		c.Deliver(Event{Kind: KindError, Message: "unknown action"})
		return
	}

	// A connection may only listen on its own user's topic.
	if msg.Topic != c.userID {
		c.logger.Warn().
			Str("topic", msg.Topic).
			Msg("rejected foreign topic")
		c.Deliver(Event{Kind: KindError, Message: "forbidden topic"})
		return
	}

	if msg.Action == actionUnsubscribe {
		c.unsubscribe()
		c.Deliver(Event{Kind: KindUnsubscribed, Message: c.userID})
		return
	}

	err := c.subscribe()
	if err != nil {
		c.Deliver(Event{Kind: KindError, Message: err.Error()})
		return
	}
	c.Deliver(Event{Kind: KindSubscribed, Message: c.userID})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		close(c.stopped)
	}()

	for {
		select {
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteJSON(ev)
			if err != nil {
				c.logger.Error().
					Err(err).
					Msg("failed to write event")
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				c.Close()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait),
			)
			return
		}
	}
}
