package nodekit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// Credentials is the decrypted credential object of one credential type
type Credentials map[string]any

// String returns the first non-empty string value among keys, or def
func (c Credentials) String(def string, keys ...string) string {
	for _, k := range keys {
		v, ok := c[k]
		if !ok || v == nil {
			continue
		}
		s := fmt.Sprint(v)
		if s != "" {
			return s
		}
	}
	return def
}

// Int returns the first integer-convertible value among keys, or def
func (c Credentials) Int(def int, keys ...string) int {
	for _, k := range keys {
		if f, ok := ToFloat(c[k]); ok {
			return int(f)
		}
	}
	return def
}

// Bool returns the first boolean-convertible value among keys, or def
func (c Credentials) Bool(def bool, keys ...string) bool {
	for _, k := range keys {
		switch v := c[k].(type) {
		case bool:
			return v
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
	}
	return def
}

// CredentialStore resolves a credential type name to its values.
// Implementations must not cache: adapters call it once per operation.
type CredentialStore interface {
	GetCredentials(ctx context.Context, typeName string) (Credentials, error)
}

// CredentialNotFoundError is returned when no credentials exist for a type
type CredentialNotFoundError struct {
	Type string
}

func (e *CredentialNotFoundError) Error() string {
	return fmt.Sprintf("no credentials of type %q", e.Type)
}

// MemoryCredentials is an in-process credential store
type MemoryCredentials struct {
	mu    sync.RWMutex
	creds map[string]Credentials
}

// NewMemoryCredentials creates a store seeded with the given credentials
func NewMemoryCredentials(seed map[string]Credentials) *MemoryCredentials {
	m := &MemoryCredentials{creds: make(map[string]Credentials, len(seed))}
	for k, v := range seed {
		m.creds[k] = v
	}
	return m
}

// Set stores credentials for a type
func (m *MemoryCredentials) Set(typeName string, c Credentials) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[typeName] = c
}

// GetCredentials returns a copy of the stored credentials
func (m *MemoryCredentials) GetCredentials(_ context.Context, typeName string) (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.creds[typeName]
	if !ok {
		return nil, &CredentialNotFoundError{Type: typeName}
	}
	out := make(Credentials, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out, nil
}
