package resolver

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"marquee/internal/metrics"
	"marquee/internal/omdb"
)

// sweepThreshold is the entry count above which expired entries are purged on write.
const sweepThreshold = 512

type searchEntry struct {
	matches []omdb.Match
	expires time.Time
}

type detailEntry struct {
	details omdb.Details
	expires time.Time
}

// CachingClient memoizes successful search and fetch responses for a fixed TTL.
type CachingClient struct {
	next     MetadataClient
	ttl      time.Duration
	now      func() time.Time
	mu       sync.Mutex
	searches map[string]searchEntry
	details  map[string]detailEntry
}

// NewCachingClient wraps next with an in-memory TTL cache. A non-positive ttl
// returns next unchanged.
func NewCachingClient(next MetadataClient, ttl time.Duration) MetadataClient {
	if ttl <= 0 || next == nil {
		return next
	}
	return &CachingClient{
		next:     next,
		ttl:      ttl,
		now:      time.Now,
		searches: make(map[string]searchEntry),
		details:  make(map[string]detailEntry),
	}
}

// Search serves a fresh cached page or asks the wrapped client.
func (c *CachingClient) Search(ctx context.Context, term string, page int) ([]omdb.Match, error) {
	key := strings.ToLower(strings.TrimSpace(term)) + "|" + strconv.Itoa(page)

	c.mu.Lock()
	if entry, ok := c.searches[key]; ok && c.now().Before(entry.expires) {
		c.mu.Unlock()
		metrics.CacheHitsTotal.WithLabelValues("search").Inc()
		return append([]omdb.Match(nil), entry.matches...), nil
	}
	c.mu.Unlock()
	metrics.CacheMissesTotal.WithLabelValues("search").Inc()

	matches, err := c.next.Search(ctx, term, page)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.sweepLocked()
	c.searches[key] = searchEntry{matches: append([]omdb.Match(nil), matches...), expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return matches, nil
}

// FetchByID serves fresh cached details or asks the wrapped client.
func (c *CachingClient) FetchByID(ctx context.Context, id string) (omdb.Details, error) {
	key := strings.TrimSpace(id)

	c.mu.Lock()
	if entry, ok := c.details[key]; ok && c.now().Before(entry.expires) {
		c.mu.Unlock()
		metrics.CacheHitsTotal.WithLabelValues("fetch").Inc()
		return entry.details, nil
	}
	c.mu.Unlock()
	metrics.CacheMissesTotal.WithLabelValues("fetch").Inc()

	details, err := c.next.FetchByID(ctx, id)
	if err != nil {
		return omdb.Details{}, err
	}

	c.mu.Lock()
	c.sweepLocked()
	c.details[key] = detailEntry{details: details, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return details, nil
}

func (c *CachingClient) sweepLocked() {
	if len(c.searches)+len(c.details) < sweepThreshold {
		return
	}
	now := c.now()
	for key, entry := range c.searches {
		if !now.Before(entry.expires) {
			delete(c.searches, key)
		}
	}
	for key, entry := range c.details {
		if !now.Before(entry.expires) {
			delete(c.details, key)
		}
	}
}
