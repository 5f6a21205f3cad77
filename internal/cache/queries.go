package cache

import "time"

const (
	defaultMemoryTTL = time.Hour
	// Qnode candidate lists change rarely; keep disk entries for a month.
	defaultDiskTTL = 30 * 24 * time.Hour
)

// Queries is the qnode query cache the linking client reads through. Raw
// query strings are hashed into keys, and entries live in memory with a
// disk layer underneath.
type Queries struct {
	inner Cache
}

// NewQueries creates a query cache persisted under dir. Zero TTLs fall back
// to the defaults.
func NewQueries(dir string, memoryTTL, diskTTL time.Duration) *Queries {
	if memoryTTL == 0 {
		memoryTTL = defaultMemoryTTL
	}
	if diskTTL == 0 {
		diskTTL = defaultDiskTTL
	}
	return &Queries{inner: NewLayeredCache(memoryTTL, dir, diskTTL)}
}

// Get returns the cached response for a query, if present.
func (q *Queries) Get(query string) ([]byte, bool) {
	return q.inner.Get(Key(query))
}

// Set caches a query response. Write errors are swallowed: a failed cache
// write only costs a repeat lookup later.
func (q *Queries) Set(query string, value []byte) {
	_ = q.inner.Set(Key(query), value, 0)
}

// Clear drops every cached query.
func (q *Queries) Clear() error {
	return q.inner.Clear()
}
