package nodekit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DefaultRequestTimeout bounds every HTTP call made by generated adapters
const DefaultRequestTimeout = 30 * time.Second

// AuthStyle is how a credential token is placed in the Authorization header
type AuthStyle string

const (
	AuthBearer AuthStyle = "bearer"
	AuthToken  AuthStyle = "token"
)

// ParseAuthStyle returns AuthToken for "token" and AuthBearer otherwise
func ParseAuthStyle(s string) AuthStyle {
	if strings.EqualFold(strings.TrimSpace(s), string(AuthToken)) {
		return AuthToken
	}
	return AuthBearer
}

// AuthorizationHeader formats the header value for token
func AuthorizationHeader(style AuthStyle, token string) string {
	if style == AuthToken {
		return "token " + token
	}
	return "Bearer " + token
}

// Endpoint is the REST call behind one converted operation. Path may hold
// ${name} placeholders resolved from node parameters. An empty Path marks an
// operation that was not converted.
type Endpoint struct {
	Method string
	Path   string
	// All is set when the source paginated this call
	All bool
}

// Request describes one JSON HTTP call
type Request struct {
	Method  string
	URL     string
	Body    any
	Query   map[string]any
	Headers map[string]string
	Timeout time.Duration
}

// DoJSON performs req with a bounded timeout and decodes the JSON response.
// An empty body yields an empty object; non-2xx statuses yield *HTTPError.
func DoJSON(ctx context.Context, client *http.Client, req Request) (any, error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultRequestTimeout}
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	target, err := MergeQuery(req.URL, req.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if !noBody(req.Body) && method != http.MethodGet {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read response: %w", method, target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Method:     method,
			URL:        target,
			Body:       string(raw),
		}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		// non-JSON answers are wrapped under "data"
		return map[string]any{"data": string(raw)}, nil
	}
	return out, nil
}

// noBody reports whether body is nil, including typed nil maps, slices and pointers
func noBody(body any) bool {
	if body == nil {
		return true
	}
	switch v := reflect.ValueOf(body); v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// JoinURL concatenates base and endpoint with exactly one slash between them
func JoinURL(base, endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	base = strings.TrimRight(base, "/")
	if endpoint == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(endpoint, "/")
}

// MergeQuery appends query parameters to rawURL. Nil values are skipped and
// slices become repeated keys. Keys are written in sorted order.
func MergeQuery(rawURL string, query map[string]any) (string, error) {
	if len(query) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	values := u.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := query[k].(type) {
		case nil:
		case []any:
			for _, el := range v {
				values.Add(k, stringify(el))
			}
		case []string:
			for _, el := range v {
				values.Add(k, el)
			}
		default:
			values.Set(k, stringify(v))
		}
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

var placeholderRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandPath fills "${name}" placeholders in an endpoint template using
// resolve. Values are path-escaped; names may carry a "this.getNodeParameter"
// style prefix, only the last identifier is used.
func ExpandPath(template string, resolve func(name string) string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		name := strings.TrimSpace(m[2 : len(m)-1])
		if i := strings.LastIndexAny(name, ". "); i >= 0 {
			name = name[i+1:]
		}
		return url.PathEscape(resolve(name))
	})
}

// PlaceholderNames lists the placeholder names used in template in order of appearance
func PlaceholderNames(template string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		name := strings.TrimSpace(m[1])
		if i := strings.LastIndexAny(name, ". "); i >= 0 {
			name = name[i+1:]
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
