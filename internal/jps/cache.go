package jps

import (
	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"

	"github.com/voxelpath/pathd/internal/core/vec"
)

// DefaultCacheSize bounds the reachability cache of a search.
const DefaultCacheSize = 100000

type reachKey struct {
	from, to vec.Vec3
}

// ReachabilityCache memoizes Oracle.IsReachable for one search. Pairs that are
// not neighbours are refused without asking the oracle.
type ReachabilityCache struct {
	oracle  Oracle
	entries *lru.Cache
	log     *zap.Logger

	queries int
	faults  int
}

func NewReachabilityCache(oracle Oracle, size int, log *zap.Logger) *ReachabilityCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReachabilityCache{
		oracle:  oracle,
		entries: lru.New(size),
		log:     log,
	}
}

func (c *ReachabilityCache) IsReachable(from, to vec.Vec3) bool {
	if !from.Adjacent(to) {
		return false
	}
	key := reachKey{from, to}
	if v, ok := c.entries.Get(key); ok {
		return v.(bool)
	}
	c.queries++
	ok, err := c.oracle.IsReachable(from, to)
	if err != nil {
		c.faults++
		c.log.Warn("可達性查詢失敗",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.Error(err))
		ok = false
	}
	c.entries.Add(key, ok)
	return ok
}

// Queries is the number of times the oracle was consulted.
func (c *ReachabilityCache) Queries() int { return c.queries }

func (c *ReachabilityCache) Faults() int { return c.faults }

func (c *ReachabilityCache) Len() int { return c.entries.Len() }

func (c *ReachabilityCache) Clear() {
	c.entries.Clear()
	c.queries = 0
	c.faults = 0
}
