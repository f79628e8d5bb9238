package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"order-timeline/internal/config"
	"order-timeline/internal/domain"
	"order-timeline/internal/infra"
)

const sessionKeyPrefix = "shopify:session:offline_"

// SessionStore reads the offline Admin API sessions the install flow keeps
// in Redis, one key per shop.
type SessionStore struct {
	rdb *redis.Client
}

var _ infra.SessionStoreInterface = (*SessionStore)(nil)

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(shop string) string {
	return sessionKeyPrefix + shop
}

// Get returns nil, nil when the shop has no stored session.
func (s *SessionStore) Get(ctx context.Context, shop string) (*domain.AdminSession, error) {
	b, err := s.rdb.Get(ctx, sessionKey(shop)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var sess domain.AdminSession
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Shop == "" {
		sess.Shop = shop
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, session *domain.AdminSession) error {
	if session == nil || session.Shop == "" {
		return errors.New("session shop is required")
	}
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(session.Shop), b, 0).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}
