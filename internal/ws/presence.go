package ws

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// PresenceRegistry tracks which users currently hold at least one open
// WebSocket connection. Presence is best-effort: registry failures are
// logged, never surfaced to clients.
type PresenceRegistry interface {
	Add(ctx context.Context, userID int64) error
	Remove(ctx context.Context, userID int64) error
	Online(ctx context.Context) ([]int64, error)
}

// MemoryPresence is the single-instance default.
type MemoryPresence struct {
	mu     sync.Mutex
	online map[int64]struct{}
}

func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{online: make(map[int64]struct{})}
}

var _ PresenceRegistry = (*MemoryPresence)(nil)

func (p *MemoryPresence) Add(ctx context.Context, userID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = struct{}{}
	return nil
}

func (p *MemoryPresence) Remove(ctx context.Context, userID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, userID)
	return nil
}

func (p *MemoryPresence) Online(ctx context.Context) ([]int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]int64, 0, len(p.online))
	for id := range p.online {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

const presenceKey = "unichat:online"

// RedisPresence shares the online set across instances through a Redis set.
type RedisPresence struct {
	client *redis.Client
}

func NewRedisPresence(client *redis.Client) *RedisPresence {
	return &RedisPresence{client: client}
}

var _ PresenceRegistry = (*RedisPresence)(nil)

func (p *RedisPresence) Add(ctx context.Context, userID int64) error {
	return p.client.SAdd(ctx, presenceKey, userID).Err()
}

func (p *RedisPresence) Remove(ctx context.Context, userID int64) error {
	return p.client.SRem(ctx, presenceKey, userID).Err()
}

func (p *RedisPresence) Online(ctx context.Context) ([]int64, error) {
	members, err := p.client.SMembers(ctx, presenceKey).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
