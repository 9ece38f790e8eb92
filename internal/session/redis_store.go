package session

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore keeps each session under two keys written together:
//
//	otpdash:session:<sid>:token
//	otpdash:session:<sid>:user
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(rdb *goredis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb:    rdb,
		prefix: "otpdash:session:",
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *RedisStore) tokenKey(sid string) string { return s.prefix + sid + ":token" }
func (s *RedisStore) userKey(sid string) string  { return s.prefix + sid + ":user" }

func (s *RedisStore) Load(ctx context.Context, sid string) (Record, error) {
	if s.rdb == nil {
		return Record{}, ErrStoreNotConfigured
	}

	vals, err := s.rdb.MGet(ctx, s.tokenKey(sid), s.userKey(sid)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return Record{}, nil
		}
		return Record{}, err
	}

	var rec Record
	if v, ok := vals[0].(string); ok {
		rec.Token = v
	}
	if v, ok := vals[1].(string); ok {
		rec.User = []byte(v)
	}
	return rec, nil
}

func (s *RedisStore) Save(ctx context.Context, sid string, rec Record) error {
	if s.rdb == nil {
		return ErrStoreNotConfigured
	}

	ttl := recordTTL(rec.Token, s.ttl, s.now())
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(sid), rec.Token, ttl)
		pipe.Set(ctx, s.userKey(sid), rec.User, ttl)
		return nil
	})
	return err
}

func (s *RedisStore) Clear(ctx context.Context, sid string) error {
	if s.rdb == nil {
		return ErrStoreNotConfigured
	}
	return s.rdb.Del(ctx, s.tokenKey(sid), s.userKey(sid)).Err()
}

// Ping is used by readiness checks.
func (s *RedisStore) Ping(ctx context.Context) error {
	if s.rdb == nil {
		return ErrStoreNotConfigured
	}
	return s.rdb.Ping(ctx).Err()
}
