package nodekit

import (
	"context"
	"net/http"
	"sort"
)

// BuildInitParams maps SDK parameter names to credential fields.
// Fields absent from the credential are left out.
func BuildInitParams(creds Credentials, mapping map[string]string) map[string]any {
	out := make(map[string]any, len(mapping))
	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if v, ok := creds[mapping[name]]; ok && v != nil {
			out[name] = v
		}
	}
	return out
}

// GenericClient is the fallback client for SDKs without a dedicated binding:
// a JSON-over-HTTP client configured from init params.
type GenericClient struct {
	Params  map[string]any
	baseURL string
	token   string
	client  *http.Client
}

// NewGenericClient reads base_url/baseUrl/host and api_key/apiKey/token from params
func NewGenericClient(params map[string]any, httpClient *http.Client) (*GenericClient, error) {
	c := Credentials(params)
	base := c.String("", "base_url", "baseUrl", "host", "url")
	if base == "" {
		return nil, &MissingParameterError{Name: "base_url"}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &GenericClient{
		Params:  params,
		baseURL: base,
		token:   c.String("", "api_key", "apiKey", "token", "accessToken"),
		client:  httpClient,
	}, nil
}

// Call sends one JSON request to endpoint
func (c *GenericClient) Call(ctx context.Context, method, endpoint string, body any, query map[string]any) (any, error) {
	headers := map[string]string{}
	if c.token != "" {
		headers["Authorization"] = AuthorizationHeader(AuthBearer, c.token)
	}
	return DoJSON(ctx, c.client, Request{
		Method:  method,
		URL:     JoinURL(c.baseURL, endpoint),
		Body:    body,
		Query:   query,
		Headers: headers,
	})
}
