package nodekit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func botServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &path
}

func TestBotClient_UnwrapsResult(t *testing.T) {
	srv, path := botServer(t, http.StatusOK, `{"ok":true,"result":{"message_id":7}}`)
	c, err := NewBotClient(Credentials{"accessToken": "123:abc", "baseUrl": srv.URL}, TelegramBaseURL, srv.Client())
	require.NoError(t, err)

	res, err := c.Call(context.Background(), "sendMessage", map[string]any{"chat_id": 1, "text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"message_id": float64(7)}, res)
	assert.Equal(t, "/bot123:abc/sendMessage", *path)
}

func TestBotClient_OkFalseRaisesDescription(t *testing.T) {
	srv, _ := botServer(t, http.StatusOK, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	c, err := NewBotClient(Credentials{"accessToken": "t", "baseUrl": srv.URL}, BaleBaseURL, srv.Client())
	require.NoError(t, err)

	_, err = c.Call(context.Background(), "sendMessage", nil)
	var botErr *BotAPIError
	require.ErrorAs(t, err, &botErr)
	assert.Equal(t, "Bad Request: chat not found", err.Error())
	assert.Equal(t, 400, botErr.ErrorCode)
}

func TestBotClient_ErrorStatusWithEnvelope(t *testing.T) {
	srv, _ := botServer(t, http.StatusUnauthorized, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
	c, err := NewBotClient(Credentials{"accessToken": "t", "baseUrl": srv.URL}, TelegramBaseURL, srv.Client())
	require.NoError(t, err)

	_, err = c.Call(context.Background(), "getMe", nil)
	var botErr *BotAPIError
	require.ErrorAs(t, err, &botErr)
	assert.Equal(t, "Unauthorized", botErr.Description)
}

func TestNewBotClient_RequiresToken(t *testing.T) {
	_, err := NewBotClient(Credentials{}, TelegramBaseURL, nil)
	var missing *MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "accessToken", missing.Name)
}

func TestUnwrapBotEnvelope_PassesThroughNonEnvelope(t *testing.T) {
	res, err := UnwrapBotEnvelope("x", []any{1})
	require.NoError(t, err)
	assert.Equal(t, []any{1}, res)
}

func TestSupabaseClient_Select(t *testing.T) {
	var gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/todos", r.URL.Path)
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("apikey")
		_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	defer srv.Close()

	c, err := NewSupabaseClient(Credentials{"host": srv.URL, "serviceRole": "key"}, srv.Client())
	require.NoError(t, err)
	rows, err := c.Select(context.Background(), "todos", map[string]any{"done": false, "id": "gt.0"}, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "key", gotKey)
	assert.Equal(t, "done=eq.false&id=gt.0&limit=10&select=%2A", gotQuery)
}

func TestGenericClient_BuildsFromInitParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/things", r.URL.Path)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	params := BuildInitParams(Credentials{"url": srv.URL, "key": "secret", "unused": 1}, map[string]string{
		"base_url": "url",
		"api_key":  "key",
		"region":   "region",
	})
	assert.Equal(t, map[string]any{"base_url": srv.URL, "api_key": "secret"}, params)

	c, err := NewGenericClient(params, srv.Client())
	require.NoError(t, err)
	res, err := c.Call(context.Background(), http.MethodGet, "/v1/things", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, res)
}
