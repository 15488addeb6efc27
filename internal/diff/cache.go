package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/undopad/internal/log"
)

// renderCache holds rendered diffs keyed by the snapshot pair. Entries
// expire so an editing session does not keep every intermediate buffer.
type renderCache struct {
	store        *gocache.Cache
	ttl          time.Duration
	hits, misses int
}

func newRenderCache(ttl time.Duration) *renderCache {
	return &renderCache{
		store: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// lookup returns the cached rendering of before→after, calling render and
// storing the result on a miss.
func (c *renderCache) lookup(before, after string, render func() string) string {
	key := pairKey(before, after)
	if v, ok := c.store.Get(key); ok {
		if s, ok := v.(string); ok {
			c.hits++
			return s
		}
		log.Error(log.CatCache, "Unexpected value in diff cache", "key", key)
	}
	c.misses++
	s := render()
	c.store.Set(key, s, c.ttl)
	return s
}

func (c *renderCache) flush() {
	n := c.store.ItemCount()
	c.store.Flush()
	log.Debug(log.CatCache, "diff cache flushed", "entries", n, "hits", c.hits, "misses", c.misses)
}

// size counts entries, including expired ones the janitor has not swept.
func (c *renderCache) size() int {
	return c.store.ItemCount()
}

// pairKey hashes both snapshots. The length prefix keeps ("ab","c") and
// ("a","bc") apart.
func pairKey(before, after string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d:", len(before))
	h.Write([]byte(before))
	h.Write([]byte(after))
	return hex.EncodeToString(h.Sum(nil))
}
