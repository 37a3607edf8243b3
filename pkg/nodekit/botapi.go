package nodekit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Bot API URL templates; %s is replaced by the bot token
const (
	TelegramBaseURL = "https://api.telegram.org/bot%s"
	BaleBaseURL     = "https://tapi.bale.ai/bot%s"
)

// BotClient calls a Telegram-compatible bot API
type BotClient struct {
	baseURL string
	client  *http.Client
}

// NewBotClient formats the token from the credential into urlTemplate.
// A credential "baseUrl" replaces the host part of the template.
func NewBotClient(creds Credentials, urlTemplate string, httpClient *http.Client) (*BotClient, error) {
	token := creds.String("", "accessToken", "token", "botToken")
	if token == "" {
		return nil, &MissingParameterError{Name: "accessToken"}
	}
	if custom := creds.String("", "baseUrl"); custom != "" {
		urlTemplate = strings.TrimRight(custom, "/") + "/bot%s"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &BotClient{baseURL: fmt.Sprintf(urlTemplate, token), client: httpClient}, nil
}

// Call posts params to method and unwraps the {ok, result, description} envelope.
// ok=false becomes a *BotAPIError carrying the API description.
func (c *BotClient) Call(ctx context.Context, method string, params map[string]any) (any, error) {
	res, err := DoJSON(ctx, c.client, Request{
		Method: http.MethodPost,
		URL:    JoinURL(c.baseURL, method),
		Body:   params,
	})
	if err != nil {
		var herr *HTTPError
		if errors.As(err, &herr) {
			var env map[string]any
			if json.Unmarshal([]byte(herr.Body), &env) == nil && env["ok"] != nil {
				return nil, botError(method, env)
			}
		}
		return nil, err
	}
	return UnwrapBotEnvelope(method, res)
}

// UnwrapBotEnvelope returns the "result" of a bot API answer
func UnwrapBotEnvelope(method string, res any) (any, error) {
	env, ok := res.(map[string]any)
	if !ok {
		return res, nil
	}
	if okv, present := env["ok"]; present && !IsTruthy(okv) {
		return nil, botError(method, env)
	}
	if r, present := env["result"]; present {
		return r, nil
	}
	return env, nil
}

func botError(method string, env map[string]any) error {
	code := 0
	if f, ok := ToFloat(env["error_code"]); ok {
		code = int(f)
	}
	desc, _ := env["description"].(string)
	return &BotAPIError{Method: method, ErrorCode: code, Description: desc}
}
