package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinicdesk/appointment-ai/internal/booking"
)

// SessionState is the persisted half of the turn state machine: where the
// session sits and which confirmation offers, if any, are outstanding.
type SessionState struct {
	State  State                  `json:"state"`
	Offers []booking.Confirmation `json:"offers,omitempty"`
}

// SessionStore persists per-session transcript and state. The transcript is
// append-only; no turn is ever removed or rewritten.
type SessionStore interface {
	AppendHistory(ctx context.Context, sessionID string, msgs ...Message) error
	History(ctx context.Context, sessionID string) ([]Message, error)
	SaveState(ctx context.Context, sessionID string, state *SessionState) error
	LoadState(ctx context.Context, sessionID string) (*SessionState, error)
}

// RedisSessionStore keeps session transcripts and state in Redis with a TTL,
// so an abandoned chat expires instead of accumulating forever.
type RedisSessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore wires the store. A zero ttl keeps sessions for a day.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisSessionStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if tracer == nil {
		tracer = otel.Tracer("appointment-ai.internal.conversation.sessions")
	}
	return &RedisSessionStore{redis: client, ttl: ttl, tracer: tracer}
}

func historyKey(sessionID string) string {
	return fmt.Sprintf("history:%s", sessionID)
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// AppendHistory appends messages to the session transcript. Turns are
// processed one at a time per session, so read-modify-write is safe here.
func (s *RedisSessionStore) AppendHistory(ctx context.Context, sessionID string, msgs ...Message) error {
	ctx, span := s.tracer.Start(ctx, "conversation.append_history")
	defer span.End()

	history, err := s.History(ctx, sessionID)
	if err != nil {
		return err
	}
	history = append(history, msgs...)

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal history: %w", err)
	}
	if err := s.redis.Set(ctx, historyKey(sessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist history: %w", err)
	}
	return nil
}

// History returns the session transcript, empty for a fresh session.
func (s *RedisSessionStore) History(ctx context.Context, sessionID string) ([]Message, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_history")
	defer span.End()

	data, err := s.redis.Get(ctx, historyKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return []Message{}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load history: %w", err)
	}

	var history []Message
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode history: %w", err)
	}
	return history, nil
}

// SaveState persists the session state; nil deletes it.
func (s *RedisSessionStore) SaveState(ctx context.Context, sessionID string, state *SessionState) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_session_state")
	defer span.End()

	if state == nil {
		if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
			span.RecordError(err)
			return fmt.Errorf("conversation: failed to delete session state: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal session state: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist session state: %w", err)
	}
	return nil
}

// LoadState retrieves the session state, nil when none is stored.
func (s *RedisSessionStore) LoadState(ctx context.Context, sessionID string) (*SessionState, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_session_state")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load session state: %w", err)
	}

	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode session state: %w", err)
	}
	return &state, nil
}
