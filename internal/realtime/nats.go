package realtime

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/manarouei/agent-skills-sub004/internal/batch"
)

// NATSBridge subscribes to run progress subjects and pushes messages into the Hub.
type NATSBridge struct {
	conn   *nats.Conn
	hub    *Hub
	logger zerolog.Logger
}

func NewNATSBridge(natsURL string, hub *Hub, logger zerolog.Logger) (*NATSBridge, error) {
	nc, err := nats.Connect(natsURL, nats.Name("codeconvert-realtime"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSBridge{conn: nc, hub: hub, logger: logger}, nil
}

// Subscribe listens for progress messages of every run
func (b *NATSBridge) Subscribe() error {
	subject := batch.ProgressSubject("*")
	if _, err := b.conn.Subscribe(subject, b.handle); err != nil {
		return fmt.Errorf("nats subscribe %q: %w", subject, err)
	}
	b.logger.Info().Str("subject", subject).Msg("NATS bridge subscribed")
	return nil
}

func (b *NATSBridge) handle(msg *nats.Msg) {
	runID, err := parseRunIDFromSubject(msg.Subject)
	if err != nil {
		b.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("nats: bad subject")
		return
	}
	if !json.Valid(msg.Data) {
		b.logger.Warn().Str("runId", runID).Msg("nats: progress payload is not JSON")
		return
	}

	// Wrap the raw progress payload in the outgoing envelope
	data, err := json.Marshal(outgoingMsg{
		Type:    "run.progress",
		RunID:   runID,
		Payload: json.RawMessage(msg.Data),
	})
	if err != nil {
		b.logger.Warn().Err(err).Msg("nats: marshal envelope")
		return
	}
	b.hub.Broadcast(runID, data)
}

// Close drains the NATS connection
func (b *NATSBridge) Close() {
	if err := b.conn.Drain(); err != nil {
		b.logger.Warn().Err(err).Msg("nats drain")
	}
}

// parseRunIDFromSubject extracts the run id from "codeconvert.run.<runID>.progress"
func parseRunIDFromSubject(subject string) (string, error) {
	parts := strings.Split(subject, ".")
	if len(parts) != 4 || parts[0] != "codeconvert" || parts[1] != "run" || parts[3] != "progress" {
		return "", fmt.Errorf("expected codeconvert.run.<id>.progress, got %q", subject)
	}
	if parts[2] == "" {
		return "", fmt.Errorf("empty run id in %q", subject)
	}
	return parts[2], nil
}
