package nodekit

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MissingParameterError is returned when a required node parameter is empty
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("parameter %q is required", e.Name)
}

// InvalidJSONParameterError is returned when a parameter holding JSON text cannot be parsed
type InvalidJSONParameterError struct {
	Name string
	Err  error
}

func (e *InvalidJSONParameterError) Error() string {
	return fmt.Sprintf("parameter %q is not valid JSON: %v", e.Name, e.Err)
}

func (e *InvalidJSONParameterError) Unwrap() error { return e.Err }

// UnknownOperationError is returned when an adapter receives an operation it does not implement
type UnknownOperationError struct {
	Node      string
	Operation string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("%s: unknown operation %q", e.Node, e.Operation)
}

// UnknownOperation builds an UnknownOperationError
func UnknownOperation(node, operation string) error {
	return &UnknownOperationError{Node: node, Operation: operation}
}

// HTTPError is returned for non-2xx responses
type HTTPError struct {
	StatusCode int
	Status     string
	Method     string
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 512 {
		cut := 512
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.URL, e.Status, body)
}

// BotAPIError is returned when a bot API answers with ok=false
type BotAPIError struct {
	Method      string
	ErrorCode   int
	Description string
}

func (e *BotAPIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("bot api %s failed (code %d)", e.Method, e.ErrorCode)
	}
	return e.Description
}

// ManualReviewError marks an operation the converter could not translate
type ManualReviewError struct {
	Node      string
	Operation string
}

func (e *ManualReviewError) Error() string {
	return fmt.Sprintf("%s: operation %q was not converted and needs manual review", e.Node, e.Operation)
}
