package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"unihub-board/pkg/redis"
)

// RedisKey 登录态固定键
const RedisKey = "unihub:session:token"

// RedisStore 登录态存于 Redis，TTL 跟随 Token 过期时间
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

func (r *RedisStore) Load(ctx context.Context) (*Session, error) {
	v, err := r.rdb.Get(ctx, RedisKey)
	if errors.Is(err, redis.ErrKeyNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("读取登录态失败: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(v), &s); err != nil || s.Token == "" {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return errors.New("登录态缺少 token")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("序列化登录态失败: %w", err)
	}

	var ttl time.Duration
	if !s.ExpiresAt.IsZero() {
		ttl = s.ExpiresAt.Sub(r.now())
		if ttl <= 0 {
			return r.Clear(ctx)
		}
	}
	return r.rdb.Set(ctx, RedisKey, string(data), ttl)
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.rdb.Del(ctx, RedisKey)
}
