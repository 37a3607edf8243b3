package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manarouei/agent-skills-sub004/pkg"
)

const secret = "relay-secret"

func startRelay(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, secret, w, r)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	token, err := pkg.GenerateToken("admin", "admin", secret, 5)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) outgoingMsg {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg outgoingMsg
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func subscribe(t *testing.T, conn *websocket.Conn, runID string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(incomingMsg{Action: "subscribe", RunID: runID}))
	ack := readMsg(t, conn)
	require.Equal(t, "subscribed", ack.Type)
	require.Equal(t, runID, ack.RunID)
}

func TestServeWS_RejectsMissingOrBadToken(t *testing.T) {
	_, url := startRelay(t)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	other, err := pkg.GenerateToken("admin", "admin", "another-secret", 5)
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(url+"?token="+other, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWS_BearerHeader(t *testing.T) {
	_, url := startRelay(t)
	token, err := pkg.GenerateToken("admin", "admin", secret, 5)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer " + token}})
	require.NoError(t, err)
	defer conn.Close()
	subscribe(t, conn, "run1")
}

func TestHub_RoutesByRunID(t *testing.T) {
	hub, url := startRelay(t)
	a := dial(t, url)
	b := dial(t, url)
	subscribe(t, a, "run-a")
	subscribe(t, b, "run-b")

	hub.Broadcast("run-a", []byte(`{"type":"run.progress","runId":"run-a"}`))
	hub.Broadcast("run-b", []byte(`{"type":"run.progress","runId":"run-b"}`))

	assert.Equal(t, "run-a", readMsg(t, a).RunID)
	assert.Equal(t, "run-b", readMsg(t, b).RunID)
}

func TestHub_Unsubscribe(t *testing.T) {
	hub, url := startRelay(t)
	conn := dial(t, url)
	subscribe(t, conn, "run1")
	subscribe(t, conn, "run2")

	require.NoError(t, conn.WriteJSON(incomingMsg{Action: "unsubscribe", RunID: "run1"}))
	assert.Equal(t, "unsubscribed", readMsg(t, conn).Type)

	hub.Broadcast("run1", []byte(`{"type":"run.progress","runId":"run1"}`))
	hub.Broadcast("run2", []byte(`{"type":"run.progress","runId":"run2"}`))
	assert.Equal(t, "run2", readMsg(t, conn).RunID)
}

func TestHub_RejectsBadCommands(t *testing.T) {
	_, url := startRelay(t)
	conn := dial(t, url)

	for _, raw := range []string{
		`{"action":"subscribe","runId":""}`,
		`{"action":"subscribe","runId":"run.*"}`,
		`{"action":"follow","runId":"run1"}`,
		`not json`,
	} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
		msg := readMsg(t, conn)
		assert.Equal(t, "error", msg.Type, raw)
		assert.Contains(t, string(msg.Payload), "message", raw)
	}
	subscribe(t, conn, "run1")
}

func TestHub_SubscriptionLimit(t *testing.T) {
	_, url := startRelay(t)
	conn := dial(t, url)
	for i := 0; i < maxSubscriptions; i++ {
		subscribe(t, conn, fmt.Sprintf("run%d", i))
	}

	require.NoError(t, conn.WriteJSON(incomingMsg{Action: "subscribe", RunID: "one-more"}))
	msg := readMsg(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "one-more", msg.RunID)

	// renewing an existing subscription stays allowed
	subscribe(t, conn, "run0")
}

func TestHub_StoppedHubDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		hub.Broadcast("run1", []byte(`{}`))
		hub.Unregister(&Client{})
		assert.False(t, hub.Register(&Client{send: make(chan []byte, 1)}))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("hub calls blocked after Run returned")
	}
}

func TestDecodeCommand(t *testing.T) {
	c := &Client{}
	cmd, err := decodeCommand(c, []byte(`{"action":"unsubscribe","runId":"01J9Z"}`))
	require.NoError(t, err)
	assert.Equal(t, opUnsubscribe, cmd.op)
	assert.Equal(t, "01J9Z", cmd.runID)
	assert.Same(t, c, cmd.client)

	_, err = decodeCommand(c, []byte(`{"action":"watch","runId":"01J9Z"}`))
	assert.ErrorIs(t, err, errUnknownAction)
	_, err = decodeCommand(c, []byte(`{"action":"subscribe","runId":"`+strings.Repeat("x", maxRunIDLength+1)+`"}`))
	assert.Error(t, err)
	_, err = decodeCommand(c, []byte(`{"action":"subscribe","runId":"a b"}`))
	assert.Error(t, err)
}

func TestNATSBridge_HandleWrapsPayload(t *testing.T) {
	hub, url := startRelay(t)
	conn := dial(t, url)
	subscribe(t, conn, "01J9Z")

	bridge := &NATSBridge{hub: hub, logger: zerolog.Nop()}
	bridge.handle(&nats.Msg{Subject: "codeconvert.run.other.progress", Data: []byte(`{"status":"running"}`)})
	bridge.handle(&nats.Msg{Subject: "codeconvert.run.01J9Z.progress", Data: []byte(`not json`)})
	bridge.handle(&nats.Msg{Subject: "bogus", Data: []byte(`{}`)})
	bridge.handle(&nats.Msg{Subject: "codeconvert.run.01J9Z.progress", Data: []byte(`{"status":"completed","file":"redis.json"}`)})

	msg := readMsg(t, conn)
	assert.Equal(t, "run.progress", msg.Type)
	assert.Equal(t, "01J9Z", msg.RunID)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "completed", payload["status"])
	assert.Equal(t, "redis.json", payload["file"])
}

func TestParseRunIDFromSubject(t *testing.T) {
	id, err := parseRunIDFromSubject("codeconvert.run.01HZX.progress")
	require.NoError(t, err)
	assert.Equal(t, "01HZX", id)

	for _, subject := range []string{
		"codeconvert.run..progress",
		"codeconvert.run.a.b.progress",
		"tenant.x.job.1.progress",
		"codeconvert.job.1.progress",
	} {
		_, err := parseRunIDFromSubject(subject)
		assert.Error(t, err, subject)
	}
}
