package realtime

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
)

// maxSubscriptions bounds the runs a single client may follow
const maxSubscriptions = 32

type commandOp int

const (
	opSubscribe commandOp = iota
	opUnsubscribe
	opReject
)

// command is a client request handled on the hub goroutine
type command struct {
	client *Client
	op     commandOp
	runID  string
	reason string
}

type broadcastMsg struct {
	runID   string
	payload []byte
}

// Hub routes run progress to the clients subscribed to that run. All state is
// owned by the Run goroutine; the exported methods only queue work for it.
type Hub struct {
	// client -> runs it follows
	clients map[*Client]map[string]bool

	// runID -> subscribed clients
	subscriptions map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	commands   chan command
	broadcast  chan broadcastMsg
	done       chan struct{}

	logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:       make(map[*Client]map[string]bool),
		subscriptions: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		commands:      make(chan command),
		broadcast:     make(chan broadcastMsg, 256),
		done:          make(chan struct{}),
		logger:        logger,
	}
}

// Register adds a client; it reports false once the hub has stopped
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister drops a client and its subscriptions
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) dispatch(cmd command) bool {
	select {
	case h.commands <- cmd:
		return true
	case <-h.done:
		return false
	}
}

// Broadcast queues payload for the subscribers of runID. It is a no-op once
// the hub has stopped.
func (h *Hub) Broadcast(runID string, payload []byte) {
	select {
	case h.broadcast <- broadcastMsg{runID: runID, payload: payload}:
	case <-h.done:
	}
}

// Run routes messages until ctx is done, then disconnects every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
			}
			h.clients = map[*Client]map[string]bool{}
			h.subscriptions = map[string]map[*Client]bool{}
			return

		case client := <-h.register:
			h.clients[client] = map[string]bool{}
			h.logger.Debug().Int("clients", len(h.clients)).Msg("client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				h.logger.Debug().Int("clients", len(h.clients)).Msg("client unregistered")
			}

		case cmd := <-h.commands:
			h.apply(cmd)

		case msg := <-h.broadcast:
			for client := range h.subscriptions[msg.runID] {
				select {
				case client.send <- msg.payload:
				default:
					h.logger.Warn().Str("runId", msg.runID).Msg("dropping slow client")
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) apply(cmd command) {
	runs, ok := h.clients[cmd.client]
	if !ok {
		return
	}
	switch cmd.op {
	case opSubscribe:
		if !runs[cmd.runID] && len(runs) >= maxSubscriptions {
			h.reply(cmd.client, "error", cmd.runID, "too many subscriptions")
			return
		}
		runs[cmd.runID] = true
		if _, ok := h.subscriptions[cmd.runID]; !ok {
			h.subscriptions[cmd.runID] = make(map[*Client]bool)
		}
		h.subscriptions[cmd.runID][cmd.client] = true
		h.logger.Debug().Str("runId", cmd.runID).Int("subscribers", len(h.subscriptions[cmd.runID])).Msg("client subscribed")
		h.reply(cmd.client, "subscribed", cmd.runID, "")
	case opUnsubscribe:
		h.leave(cmd.client, cmd.runID)
		h.reply(cmd.client, "unsubscribed", cmd.runID, "")
	case opReject:
		h.reply(cmd.client, "error", cmd.runID, cmd.reason)
	}
}

// reply queues an acknowledgement or error without blocking the hub
func (h *Hub) reply(client *Client, kind, runID, reason string) {
	msg := outgoingMsg{Type: kind, RunID: runID}
	if reason != "" {
		msg.Payload, _ = json.Marshal(map[string]string{"message": reason})
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

func (h *Hub) leave(client *Client, runID string) {
	delete(h.clients[client], runID)
	subs, ok := h.subscriptions[runID]
	if !ok {
		return
	}
	delete(subs, client)
	if len(subs) == 0 {
		delete(h.subscriptions, runID)
	}
}

func (h *Hub) remove(client *Client) {
	for runID := range h.clients[client] {
		h.leave(client, runID)
	}
	delete(h.clients, client)
	close(client.send)
}
