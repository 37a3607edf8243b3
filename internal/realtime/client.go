package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256
	maxRunIDLength = 64
)

// Client is one WebSocket connection following any number of runs
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// incomingMsg is a command from the client: "subscribe" or "unsubscribe"
type incomingMsg struct {
	Action string `json:"action"`
	RunID  string `json:"runId"`
}

// outgoingMsg is the envelope sent to the client
type outgoingMsg struct {
	Type    string          `json:"type"`
	RunID   string          `json:"runId"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var errUnknownAction = errors.New("unknown action")

// decodeCommand parses a client message into a hub command. The run id must
// be usable as a single NATS subject token.
func decodeCommand(c *Client, data []byte) (command, error) {
	var msg incomingMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return command{}, fmt.Errorf("malformed message: %w", err)
	}
	cmd := command{client: c, runID: msg.RunID}
	switch msg.Action {
	case "subscribe":
		cmd.op = opSubscribe
	case "unsubscribe":
		cmd.op = opUnsubscribe
	default:
		return cmd, fmt.Errorf("%w %q", errUnknownAction, msg.Action)
	}
	if err := validRunID(msg.RunID); err != nil {
		return cmd, err
	}
	return cmd, nil
}

func validRunID(runID string) error {
	switch {
	case runID == "":
		return errors.New("runId is required")
	case len(runID) > maxRunIDLength:
		return fmt.Errorf("runId longer than %d characters", maxRunIDLength)
	case strings.ContainsAny(runID, ".*> \t\r\n"):
		return fmt.Errorf("runId %q is not a subject token", runID)
	}
	return nil
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
}

// ReadPump turns client messages into hub commands until the connection drops
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn().Err(err).Msg("ws read error")
			}
			return
		}
		cmd, err := decodeCommand(c, data)
		if err != nil {
			c.hub.logger.Debug().Err(err).Msg("ws command rejected")
			cmd = command{client: c, op: opReject, runID: cmd.runID, reason: err.Error()}
		}
		if !c.hub.dispatch(cmd) {
			return
		}
	}
}

// WritePump delivers queued messages and keeps the connection alive with pings.
// A closed send channel means the hub dropped the client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
