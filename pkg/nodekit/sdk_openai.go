package nodekit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// SDKTimeout bounds vendor SDK calls, which are slower than plain REST calls
const SDKTimeout = 60 * time.Second

// DeepSeekBaseURL is the OpenAI-compatible endpoint of DeepSeek
const DeepSeekBaseURL = "https://api.deepseek.com"

// NewOpenAIClient builds an OpenAI-compatible client from an api credential.
// baseURL wins over the credential "url" field; both may be empty.
func NewOpenAIClient(creds Credentials, baseURL string, httpClient *http.Client) openai.Client {
	if baseURL == "" {
		baseURL = creds.String("", "url", "baseUrl", "baseURL")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: SDKTimeout}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(creds.String("", "apiKey", "api_key", "token")),
		option.WithHTTPClient(httpClient),
		option.WithRequestTimeout(SDKTimeout),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if org := creds.String("", "organizationId", "organization"); org != "" {
		opts = append(opts, option.WithOrganization(org))
	}
	return openai.NewClient(opts...)
}

// ChatRequest is a single chat completion call
type ChatRequest struct {
	Model       string
	System      string
	Messages    []Message
	Temperature *float64
	MaxTokens   int
}

// ChatCompletion runs req and returns the first choice as item data
func ChatCompletion(ctx context.Context, client openai.Client, req ChatRequest) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, SDKTimeout)
	defer cancel()

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	if len(msgs) == 0 {
		return nil, &MissingParameterError{Name: "prompt"}
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(req.Model),
		Messages: msgs,
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}
	choice := resp.Choices[0]
	return map[string]any{
		"id":           resp.ID,
		"model":        resp.Model,
		"content":      choice.Message.Content,
		"finishReason": string(choice.FinishReason),
		"usage": map[string]any{
			"promptTokens":     resp.Usage.PromptTokens,
			"completionTokens": resp.Usage.CompletionTokens,
			"totalTokens":      resp.Usage.TotalTokens,
		},
	}, nil
}
