package nodekit

import (
	"context"
	"net/http"
	"strings"
)

// SupabaseClient talks to the PostgREST endpoint of a Supabase project
type SupabaseClient struct {
	host   string
	key    string
	client *http.Client
}

// NewSupabaseClient reads "host" and "serviceRole" from a supabase credential
func NewSupabaseClient(creds Credentials, httpClient *http.Client) (*SupabaseClient, error) {
	host := creds.String("", "host", "url")
	if host == "" {
		return nil, &MissingParameterError{Name: "host"}
	}
	key := creds.String("", "serviceRole", "apiKey", "serviceKey")
	if key == "" {
		return nil, &MissingParameterError{Name: "serviceRole"}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &SupabaseClient{host: strings.TrimRight(host, "/"), key: key, client: httpClient}, nil
}

func (c *SupabaseClient) do(ctx context.Context, method, table string, query map[string]any, body any, prefer string) (any, error) {
	headers := map[string]string{
		"apikey":        c.key,
		"Authorization": AuthorizationHeader(AuthBearer, c.key),
	}
	if prefer != "" {
		headers["Prefer"] = prefer
	}
	return DoJSON(ctx, c.client, Request{
		Method:  method,
		URL:     JoinURL(c.host, "/rest/v1/"+table),
		Query:   query,
		Body:    body,
		Headers: headers,
	})
}

// Select reads rows of table. filters maps column to a PostgREST
// expression ("eq.5"); a bare value is treated as equality.
func (c *SupabaseClient) Select(ctx context.Context, table string, filters map[string]any, limit int) ([]Item, error) {
	q := postgrestFilters(filters)
	q["select"] = "*"
	if limit > 0 {
		q["limit"] = limit
	}
	res, err := c.do(ctx, http.MethodGet, table, q, nil, "")
	if err != nil {
		return nil, err
	}
	return ItemsFromResult(res), nil
}

// Insert creates rows and returns them as stored
func (c *SupabaseClient) Insert(ctx context.Context, table string, rows []map[string]any) ([]Item, error) {
	res, err := c.do(ctx, http.MethodPost, table, nil, rows, "return=representation")
	if err != nil {
		return nil, err
	}
	return ItemsFromResult(res), nil
}

// Update patches the rows matching filters
func (c *SupabaseClient) Update(ctx context.Context, table string, filters map[string]any, fields map[string]any) ([]Item, error) {
	res, err := c.do(ctx, http.MethodPatch, table, postgrestFilters(filters), fields, "return=representation")
	if err != nil {
		return nil, err
	}
	return ItemsFromResult(res), nil
}

// Delete removes the rows matching filters
func (c *SupabaseClient) Delete(ctx context.Context, table string, filters map[string]any) ([]Item, error) {
	res, err := c.do(ctx, http.MethodDelete, table, postgrestFilters(filters), nil, "return=representation")
	if err != nil {
		return nil, err
	}
	return ItemsFromResult(res), nil
}

func postgrestFilters(filters map[string]any) map[string]any {
	q := make(map[string]any, len(filters)+2)
	for col, v := range filters {
		s := stringify(v)
		if i := strings.Index(s, "."); i > 0 && isPostgrestOperator(s[:i]) {
			q[col] = s
			continue
		}
		q[col] = "eq." + s
	}
	return q
}

func isPostgrestOperator(op string) bool {
	switch op {
	case "eq", "neq", "gt", "gte", "lt", "lte", "like", "ilike", "is", "in", "cs", "cd", "fts", "not":
		return true
	}
	return false
}
