package nodekit

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// NewGeminiClient builds a Gemini API client from an api credential
func NewGeminiClient(ctx context.Context, creds Credentials, httpClient *http.Client) (*genai.Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: SDKTimeout}
	}
	key := creds.String("", "apiKey", "api_key")
	if key == "" {
		return nil, &MissingParameterError{Name: "apiKey"}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// GeminiGenerate sends prompt (with an optional system instruction) and joins the text parts of the first candidate
func GeminiGenerate(ctx context.Context, client *genai.Client, model, prompt, system string) (map[string]any, error) {
	if prompt == "" {
		return nil, &MissingParameterError{Name: "prompt"}
	}
	ctx, cancel := context.WithTimeout(ctx, SDKTimeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	var config *genai.GenerateContentConfig
	if system != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	var text string
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
	}
	out := map[string]any{"model": model, "content": text}
	if len(resp.Candidates) > 0 {
		out["finishReason"] = string(resp.Candidates[0].FinishReason)
	}
	return out, nil
}
