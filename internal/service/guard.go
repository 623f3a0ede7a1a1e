package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"unihub-board/pkg/redis"
)

// ErrDuplicateSubmission 同一操作仍在处理中
var ErrDuplicateSubmission = errors.New("操作正在处理中，请勿重复提交")

// Guard 非幂等操作的在途锁
// 同一个 key 在上一次提交完成前再次提交会直接失败，不会发出第二个请求
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// guardKey 在途锁按调用者隔离：不同 token（或登录邮箱）之间互不阻塞
// 调用者标识只保留摘要前缀，避免 token 明文写入 redis
func guardKey(op, caller string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(caller))))
	return op + ":" + hex.EncodeToString(sum[:4])
}

// ── 内存实现 ──

type memoryGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewMemoryGuard 单进程使用
func NewMemoryGuard() Guard {
	return &memoryGuard{active: make(map[string]struct{})}
}

func (g *memoryGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.active[key]; ok {
		return nil, ErrDuplicateSubmission
	}
	g.active[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, key)
			g.mu.Unlock()
		})
	}, nil
}

// ── Redis 实现 ──

type redisGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisGuard 多实例共享锁，ttl 兜底防止进程崩溃后锁不释放
func NewRedisGuard(rdb *redis.Client, ttl time.Duration) Guard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisGuard{rdb: rdb, ttl: ttl}
}

func (g *redisGuard) Acquire(ctx context.Context, key string) (func(), error) {
	ok, err := g.rdb.AcquireInFlight(ctx, key, g.ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDuplicateSubmission
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// 请求 ctx 可能已取消，释放使用独立超时
			rctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = g.rdb.ReleaseInFlight(rctx, key)
		})
	}, nil
}
