package nodekit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message is one chat message kept by a memory node
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatMemory stores session-keyed conversation history
type ChatMemory interface {
	Append(ctx context.Context, sessionID string, msgs ...Message) error
	Messages(ctx context.Context, sessionID string) ([]Message, error)
	Clear(ctx context.Context, sessionID string) error
}

// DefaultMemoryWindow is how many messages a memory returns when unset
const DefaultMemoryWindow = 10

// BufferMemory keeps history in process memory. The store is shared by every
// adapter in the process, hence the lock.
type BufferMemory struct {
	mu       sync.Mutex
	sessions map[string][]Message
	window   int
}

// NewBufferMemory keeps at most window messages per session (DefaultMemoryWindow when <= 0)
func NewBufferMemory(window int) *BufferMemory {
	if window <= 0 {
		window = DefaultMemoryWindow
	}
	return &BufferMemory{sessions: map[string][]Message{}, window: window}
}

var (
	sharedBufferOnce sync.Once
	sharedBuffer     *BufferMemory
)

// SharedBufferMemory returns the process-wide buffer used by generated adapters
func SharedBufferMemory() *BufferMemory {
	sharedBufferOnce.Do(func() { sharedBuffer = NewBufferMemory(DefaultMemoryWindow) })
	return sharedBuffer
}

func (m *BufferMemory) Append(_ context.Context, sessionID string, msgs ...Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := append(m.sessions[sessionID], msgs...)
	if len(history) > m.window {
		history = append([]Message(nil), history[len(history)-m.window:]...)
	}
	m.sessions[sessionID] = history
	return nil
}

func (m *BufferMemory) Messages(_ context.Context, sessionID string) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sessions[sessionID]))
	copy(out, m.sessions[sessionID])
	return out, nil
}

func (m *BufferMemory) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// DefaultMemoryTTL is the expiry applied to redis chat histories
const DefaultMemoryTTL = time.Hour

// RedisMemory keeps history in a redis list per session. Every append
// refreshes the key TTL, so an active session does not expire.
type RedisMemory struct {
	client    redis.UniversalClient
	ttl       time.Duration
	window    int
	keyPrefix string
}

// NewRedisMemory builds a RedisMemory; zero ttl or window take the defaults
func NewRedisMemory(client redis.UniversalClient, ttl time.Duration, window int) *RedisMemory {
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	if window <= 0 {
		window = DefaultMemoryWindow
	}
	return &RedisMemory{client: client, ttl: ttl, window: window, keyPrefix: "chat_history:"}
}

func (m *RedisMemory) key(sessionID string) string {
	return m.keyPrefix + sessionID
}

func (m *RedisMemory) Append(ctx context.Context, sessionID string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]any, 0, len(msgs))
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("marshal message failed: %w", err)
		}
		values = append(values, string(data))
	}
	key := m.key(sessionID)
	pipe := m.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-m.window), -1)
	pipe.Expire(ctx, key, m.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append chat history failed: %w", err)
	}
	return nil
}

func (m *RedisMemory) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	raw, err := m.client.LRange(ctx, m.key(sessionID), int64(-m.window), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read chat history failed: %w", err)
	}
	out := make([]Message, 0, len(raw))
	for _, r := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(r), &msg); err != nil {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (m *RedisMemory) Clear(ctx context.Context, sessionID string) error {
	if err := m.client.Del(ctx, m.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear chat history failed: %w", err)
	}
	return nil
}

// MemoryItems renders a history as output items
func MemoryItems(sessionID string, msgs []Message) []Item {
	list := make([]any, 0, len(msgs))
	for _, msg := range msgs {
		list = append(list, map[string]any{"role": msg.Role, "content": msg.Content})
	}
	return []Item{NewItem(map[string]any{"sessionId": sessionID, "messages": list})}
}
