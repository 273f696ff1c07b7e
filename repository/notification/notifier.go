package notificationrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	feedCap     = 100
	pushTimeout = 2 * time.Second
)

// Event is a user-facing notice pushed on workflow transitions.
type Event struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	TaarufID  int64     `json:"taaruf_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Notifier interface {
	// Push is best-effort: callers log the error and continue, a failed
	// notification must never roll back the transition that caused it.
	Push(ctx context.Context, userID int64, ev Event) error
	List(ctx context.Context, userID int64, n int64) ([]Event, error)
}

type redisNotifier struct {
	rdb *redis.Client
}

// New returns a Redis-backed notifier, or a no-op one when addr is empty.
func New(addr string) Notifier {
	if addr == "" {
		return noopNotifier{}
	}
	return &redisNotifier{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func feedKey(userID int64) string { return fmt.Sprintf("notif:{%d}", userID) }

func (n *redisNotifier) Push(ctx context.Context, userID int64, ev Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	key := feedKey(userID)
	pipe := n.rdb.Pipeline()
	pipe.LPush(ctx, key, b)
	pipe.LTrim(ctx, key, 0, feedCap-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (n *redisNotifier) List(ctx context.Context, userID int64, limit int64) ([]Event, error) {
	if limit <= 0 || limit > feedCap {
		limit = feedCap
	}
	raw, err := n.rdb.LRange(ctx, feedKey(userID), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(raw))
	for _, s := range raw {
		var ev Event
		if err := json.Unmarshal([]byte(s), &ev); err != nil {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

type noopNotifier struct{}

func (noopNotifier) Push(context.Context, int64, Event) error          { return nil }
func (noopNotifier) List(context.Context, int64, int64) ([]Event, error) { return nil, nil }
