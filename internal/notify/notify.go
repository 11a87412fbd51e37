package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// Severities for user-facing notifications.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notification is one transient user-facing message.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier is the single notification contract every feature uses.
type Notifier interface {
	Notify(ctx context.Context, userID, message, severity string) error
}

// Store holds recent notifications per user.
type Store interface {
	Append(ctx context.Context, n Notification) error
	Recent(ctx context.Context, userID string) ([]Notification, error)
}

// Service fans a notification out to the store and any live websocket
// subscribers. Delivery is best-effort; a failed push never fails the
// triggering action.
type Service struct {
	store  Store
	hub    *Hub
	logger *logging.Logger
	now    func() time.Time
}

// NewService creates the shared notification service. hub may be nil when no
// live stream is wanted.
func NewService(store Store, hub *Hub, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:  store,
		hub:    hub,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Notify records and pushes one message.
func (s *Service) Notify(ctx context.Context, userID, message, severity string) error {
	switch severity {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError:
	default:
		severity = SeverityInfo
	}
	n := Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		Severity:  severity,
		CreatedAt: s.now(),
	}
	if err := s.store.Append(ctx, n); err != nil {
		return fmt.Errorf("notify: store notification: %w", err)
	}
	if s.hub != nil {
		s.hub.Publish(n)
	}
	return nil
}

// Recent returns the stored notifications, newest first.
func (s *Service) Recent(ctx context.Context, userID string) ([]Notification, error) {
	return s.store.Recent(ctx, userID)
}

var _ Notifier = (*Service)(nil)

// RedisStore keeps a capped per-user list of recent notifications.
type RedisStore struct {
	client *redis.Client
	limit  int64
	ttl    time.Duration
}

// NewRedisStore wraps a redis client. limit caps the retained history; ttl
// expires idle lists.
func NewRedisStore(client *redis.Client, limit int, ttl time.Duration) *RedisStore {
	if limit <= 0 {
		limit = 50
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, limit: int64(limit), ttl: ttl}
}

func listKey(userID string) string {
	return "notifications:" + userID
}

// Append pushes the notification and trims the list to the cap.
func (s *RedisStore) Append(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("notify: encode notification: %w", err)
	}
	key := listKey(n.UserID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, s.limit-1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("notify: push notification: %w", err)
	}
	return nil
}

// Recent returns stored notifications, newest first.
func (s *RedisStore) Recent(ctx context.Context, userID string) ([]Notification, error) {
	raw, err := s.client.LRange(ctx, listKey(userID), 0, s.limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("notify: read notifications: %w", err)
	}
	out := make([]Notification, 0, len(raw))
	for _, item := range raw {
		var n Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			// Skip a corrupt entry rather than failing the whole list.
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

var _ Store = (*RedisStore)(nil)
