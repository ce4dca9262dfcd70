// Package gateway maintains the bot's WebSocket connection to the chat
// platform and feeds dispatch events to the reaction consumer.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 20
	sendBufferSize = 64

	minBackoff = time.Second
	maxBackoff = time.Minute
)

// Intents for the identify payload: guilds, guild messages, reactions.
const defaultIntents = 1<<0 | 1<<9 | 1<<10

// Handler receives every DISPATCH event from the gateway.
type Handler func(ctx context.Context, event string, data json.RawMessage)

// Client is a reconnecting gateway client.
type Client struct {
	url     string
	token   string
	handler Handler
	logger  *slog.Logger
	dialer  *websocket.Dialer

	sequence  atomic.Int64
	sessionID string
}

// NewClient creates a gateway client. The handler is called from the read
// loop, one event at a time.
func NewClient(url, token string, handler Handler, logger *slog.Logger) *Client {
	return &Client{
		url:     url,
		token:   token,
		handler: handler,
		logger:  logger,
		dialer:  websocket.DefaultDialer,
	}
}

// Run connects and processes events until the context is cancelled,
// reconnecting with exponential backoff on failure. A dropped session is
// resumed from the last seen sequence when the server allows it.
func (c *Client) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		err := c.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("gateway connection lost", "error", err, "retry_in", backoff)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (c *Client) runOnce(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	hello, err := readPayload(conn)
	if err != nil {
		return err
	}
	if hello.Op != OpHello {
		return errors.New("expected HELLO as first payload")
	}
	var helloData HelloData
	if err := json.Unmarshal(hello.Data, &helloData); err != nil {
		return err
	}

	send := make(chan []byte, sendBufferSize)
	done := make(chan struct{})
	var closeOnce sync.Once
	closeDone := func() { closeOnce.Do(func() { close(done) }) }

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer conn.Close()
		c.writePump(conn, send, done, time.Duration(helloData.HeartbeatInterval)*time.Millisecond)
	}()
	// Closing done stops the write pump; wait for it before returning so
	// the connection is torn down exactly once per attempt.
	defer wg.Wait()
	defer closeDone()

	// Cancelling the context tears the connection down, which unblocks the
	// read loop.
	stop := context.AfterFunc(ctx, func() {
		closeDone()
		_ = conn.Close()
	})
	defer stop()

	if err := c.handshake(send); err != nil {
		return err
	}

	for {
		payload, err := readPayload(conn)
		if err != nil {
			return err
		}
		switch payload.Op {
		case OpDispatch:
			if payload.Sequence != nil {
				c.sequence.Store(*payload.Sequence)
			}
			c.handleDispatch(ctx, payload)

		case OpHeartbeat:
			c.queueHeartbeat(send)

		case OpHeartbeatAck:
			// Nothing to track; the server closes dead connections.

		case OpReconnect:
			return errors.New("server requested reconnect")

		case OpInvalidSession:
			// The session cannot be resumed; reconnect with a fresh
			// IDENTIFY.
			c.sessionID = ""
			c.sequence.Store(0)
			return errors.New("server invalidated session")
		}
	}
}

func (c *Client) handleDispatch(ctx context.Context, payload Payload) {
	if payload.Event == nil {
		return
	}
	event := *payload.Event

	if event == EventReady {
		var ready ReadyData
		if err := json.Unmarshal(payload.Data, &ready); err != nil {
			c.logger.Error("invalid READY payload", "error", err)
			return
		}
		c.sessionID = ready.SessionID
		c.logger.Info("gateway ready",
			"session_id", ready.SessionID,
			"bot_user", ready.User.Username)
	}

	c.handler(ctx, event, payload.Data)
}

// handshake opens the session: RESUME when a previous session can be
// continued, IDENTIFY otherwise.
func (c *Client) handshake(send chan<- []byte) error {
	if c.sessionID != "" {
		data, err := json.Marshal(ResumeData{
			Token:     c.token,
			SessionID: c.sessionID,
			Sequence:  c.sequence.Load(),
		})
		if err != nil {
			return err
		}
		return queuePayload(send, OpResume, data)
	}

	data, err := json.Marshal(IdentifyData{Token: c.token, Intents: defaultIntents})
	if err != nil {
		return err
	}
	return queuePayload(send, OpIdentify, data)
}

func queuePayload(send chan<- []byte, op int, data json.RawMessage) error {
	payload, err := json.Marshal(Payload{Op: op, Data: data})
	if err != nil {
		return err
	}
	select {
	case send <- payload:
		return nil
	default:
		return errors.New("send buffer full during handshake")
	}
}

func (c *Client) queueHeartbeat(send chan<- []byte) {
	seq := c.sequence.Load()
	data, _ := json.Marshal(seq)
	payload, err := json.Marshal(Payload{Op: OpHeartbeat, Data: data})
	if err != nil {
		return
	}
	select {
	case send <- payload:
	default:
		c.logger.Warn("send buffer full, dropping heartbeat")
	}
}

// writePump serializes all writes to the connection and sends heartbeats
// on the interval the server announced.
func (c *Client) writePump(conn *websocket.Conn, send <-chan []byte, done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case message := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			seq := c.sequence.Load()
			data, _ := json.Marshal(seq)
			payload, _ := json.Marshal(Payload{Op: OpHeartbeat, Data: data})
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-done:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func readPayload(conn *websocket.Conn) (Payload, error) {
	var payload Payload
	_, message, err := conn.ReadMessage()
	if err != nil {
		return payload, err
	}
	if err := json.Unmarshal(message, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
