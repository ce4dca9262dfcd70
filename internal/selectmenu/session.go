// Package selectmenu tracks short-lived selection sessions. When a search
// returns multiple quotes the results are presented as a select menu; the
// session remembers which quote each option maps to until the requester
// picks one or the session expires.
package selectmenu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shihanqu/discord-quote-bot/internal/redis"
)

var (
	ErrSessionNotFound = errors.New("selection session not found")
	ErrNotRequester    = errors.New("selection belongs to another user")
	ErrBadChoice       = errors.New("choice out of range")
)

// Session is the stored state behind one select menu.
type Session struct {
	ID          string    `json:"id"`
	RequesterID int64     `json:"requester_id,string"`
	ChannelID   int64     `json:"channel_id,string"`
	Kind        string    `json:"kind"`
	Query       string    `json:"query"`
	MessageIDs  []int64   `json:"message_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// Manager stores selection sessions in Redis with an expiry.
type Manager struct {
	redis *redis.Client
	ttl   time.Duration
}

const defaultTTL = 5 * time.Minute

func NewManager(rdb *redis.Client, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{redis: rdb, ttl: ttl}
}

// Begin creates a session for the given search results and returns it with
// a fresh id.
func (m *Manager) Begin(ctx context.Context, requesterID, channelID int64, kind, query string, messageIDs []int64) (*Session, error) {
	if len(messageIDs) == 0 {
		return nil, fmt.Errorf("selection session needs at least one option")
	}
	sess := &Session{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		ChannelID:   channelID,
		Kind:        kind,
		Query:       query,
		MessageIDs:  messageIDs,
		CreatedAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encoding selection session: %w", err)
	}
	if err := m.redis.StoreSession(ctx, sess.ID, payload, m.ttl); err != nil {
		return nil, fmt.Errorf("storing selection session: %w", err)
	}
	return sess, nil
}

// Get loads a session. Absent or expired sessions yield ErrSessionNotFound.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := m.redis.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading selection session: %w", err)
	}
	if payload == nil {
		return nil, ErrSessionNotFound
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decoding selection session: %w", err)
	}
	return &sess, nil
}

// Pick resolves a menu choice to its message id and ends the session. Only
// the user who started the session may pick from it.
func (m *Manager) Pick(ctx context.Context, id string, requesterID int64, choice int) (int64, error) {
	sess, err := m.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if sess.RequesterID != requesterID {
		return 0, ErrNotRequester
	}
	if choice < 0 || choice >= len(sess.MessageIDs) {
		return 0, ErrBadChoice
	}
	if err := m.redis.DeleteSession(ctx, id); err != nil {
		return 0, fmt.Errorf("ending selection session: %w", err)
	}
	return sess.MessageIDs[choice], nil
}

// End discards a session without a pick.
func (m *Manager) End(ctx context.Context, id string) error {
	return m.redis.DeleteSession(ctx, id)
}
