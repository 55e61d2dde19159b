package http

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// ReportCache memoises report responses until the next ledger change or
// until the TTL runs out.
type ReportCache struct {
	c *cache.Cache
}

// NewReportCache returns a cache; ttl <= 0 disables caching.
func NewReportCache(ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		return &ReportCache{}
	}
	return &ReportCache{c: cache.New(ttl, 2*ttl)}
}

func (rc *ReportCache) Get(key string) (any, bool) {
	if rc == nil || rc.c == nil {
		return nil, false
	}
	return rc.c.Get(key)
}

func (rc *ReportCache) Set(key string, v any) {
	if rc == nil || rc.c == nil {
		return
	}
	rc.c.SetDefault(key, v)
}

// Flush drops every cached report. Registered as a ledger change hook.
func (rc *ReportCache) Flush() {
	if rc == nil || rc.c == nil {
		return
	}
	rc.c.Flush()
}

func (rc *ReportCache) Len() int {
	if rc == nil || rc.c == nil {
		return 0
	}
	return rc.c.ItemCount()
}
