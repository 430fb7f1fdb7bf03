package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"backoffice/internal/history/models"
	"backoffice/pkg/platform/sentinel"
)

const (
	keyPrefix = "history:session:"

	// defaultTokenTTL keeps generation counters around longer than any session.
	defaultTokenTTL = 24 * time.Hour
)

var errStale = errors.New("stale session token")

// RedisStore shares sessions across instances.
// Tokens come from INCR on the generation key; commits run under WATCH on
// that key so a concurrent NextToken aborts the write.
type RedisStore struct {
	client   *redis.Client
	tokenTTL time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTokenTTL sets how long an idle generation counter survives.
func WithTokenTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// NewRedis constructs a Redis-backed session store.
func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, tokenTTL: defaultTokenTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func dataKey(id uuid.UUID) string  { return keyPrefix + id.String() }
func tokenKey(id uuid.UUID) string { return keyPrefix + id.String() + ":gen" }

func (s *RedisStore) NextToken(ctx context.Context, id uuid.UUID) (uint64, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, tokenKey(id))
		p.Expire(ctx, tokenKey(id), s.tokenTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("next token: %w", err)
	}
	return uint64(incr.Val()), nil
}

// Commit writes the session if its token is current. A WATCH conflict means a
// newer token was issued mid-commit, which is reported as not applied.
func (s *RedisStore) Commit(ctx context.Context, sess *models.Session, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(sess)
	if err != nil {
		return false, fmt.Errorf("encode session: %w", err)
	}

	gen := tokenKey(sess.ID)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, gen).Uint64()
		if errors.Is(err, redis.Nil) {
			return errStale
		}
		if err != nil {
			return err
		}
		if current != sess.Token {
			return errStale
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, dataKey(sess.ID), payload, ttl)
			p.Expire(ctx, gen, max(ttl, s.tokenTTL))
			return nil
		})
		return err
	}, gen)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("commit session: %w", err)
	}
}

func (s *RedisStore) Find(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	raw, err := s.client.Get(ctx, dataKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}
