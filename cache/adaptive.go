// Package cache 提供推荐结果的进程内自适应缓存：
// 热 key 自动延长驻留（TTL 翻倍），容量超限时先清过期、再淘汰最老的一批。
// 状态完全进程本地、不跨实例同步、不持久化；冷启动即空缓存。
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rushteam/cinekit/core"
)

// 默认参数；构造时传 0 使用默认值。
const (
	DefaultCapacity     = 1000
	DefaultTTL          = 10 * time.Minute
	DefaultHitThreshold = 3
)

// evictOldestFraction 是容量仍超限时按创建时间淘汰的比例。
const evictOldestFraction = 0.2

type entry struct {
	data      []*core.Item
	createdAt time.Time
	expiresAt time.Time
}

// Stats 是缓存的观测快照，用于调参（容量、TTL、命中阈值）。
type Stats struct {
	Size      int
	HitCounts map[string]int64
}

// AdaptiveCache 是进程级结果缓存。
//
// 行为约定：
//   - Get 作为读取的副作用递增 key 的命中计数（过期导致的逻辑 miss 也计数），
//     过期条目在读取时被物理删除。
//   - Set 时若该 key 的累计命中数达到阈值，本次写入的有效 TTL 翻倍。
//   - 写入后若总条数超过容量：先删除所有已过期条目，仍超限则按创建时间
//     淘汰最老的 20%。
//
// 单把互斥锁足够：条目很小，只有淘汰扫描是 O(容量) 的。
type AdaptiveCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	hits    map[string]int64

	capacity     int
	defaultTTL   time.Duration
	hitThreshold int64

	now func() time.Time // 可注入时钟（测试用）
}

// New 创建缓存实例；capacity/defaultTTL/hitThreshold 传 0 使用默认值。
// 每个进程构造一次并注入编排层；测试可各自构造隔离实例。
func New(capacity int, defaultTTL time.Duration, hitThreshold int) *AdaptiveCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if hitThreshold <= 0 {
		hitThreshold = DefaultHitThreshold
	}
	return &AdaptiveCache{
		entries:      make(map[string]*entry),
		hits:         make(map[string]int64),
		capacity:     capacity,
		defaultTTL:   defaultTTL,
		hitThreshold: int64(hitThreshold),
		now:          time.Now,
	}
}

// Get 读取 key；命中计数无条件递增，过期条目被删除并返回 miss。
func (c *AdaptiveCache) Get(key string) ([]*core.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hits[key]++

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.data, true
}

// Set 写入 key；热 key（命中数达到阈值）本次写入 TTL 翻倍。
// 写入后超容量时触发淘汰。
func (c *AdaptiveCache) Set(key string, data []*core.Item, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hits[key] >= c.hitThreshold {
		ttl *= 2
	}

	now := c.now()
	c.entries[key] = &entry{
		data:      data,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}

	if len(c.entries) > c.capacity {
		c.evictLocked(now)
	}
}

// evictLocked 先清掉所有已过期条目；仍超容量时按创建时间淘汰最老的 20%。
func (c *AdaptiveCache) evictLocked(now time.Time) {
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) <= c.capacity {
		return
	}

	type aged struct {
		key       string
		createdAt time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{key: k, createdAt: e.createdAt})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].createdAt.Before(all[j].createdAt)
	})

	drop := int(float64(len(all)) * evictOldestFraction)
	if drop < 1 {
		drop = 1
	}
	for i := 0; i < drop && i < len(all); i++ {
		delete(c.entries, all[i].key)
	}
}

// Invalidate 删除所有包含子串 pattern 的 key，返回删除条数。
func (c *AdaptiveCache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k := range c.entries {
		if strings.Contains(k, pattern) {
			delete(c.entries, k)
			delete(c.hits, k)
			removed++
		}
	}
	return removed
}

// Clear 清空全部条目与命中计数。
func (c *AdaptiveCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.hits = make(map[string]int64)
}

// Len 返回当前条目数。
func (c *AdaptiveCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats 返回当前大小与各 key 的命中计数快照。
func (c *AdaptiveCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	hits := make(map[string]int64, len(c.hits))
	for k, v := range c.hits {
		hits[k] = v
	}
	return Stats{Size: len(c.entries), HitCounts: hits}
}
