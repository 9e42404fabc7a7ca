package cache

import "time"

// Item is a single cached value with its expiry and access metadata.
type Item struct {
	Value any

	// TTL of zero or less means the item never expires.
	TTL            time.Duration
	CreatedAt      time.Time
	AccessCount    int64
	LastAccessedAt time.Time
}

func newItem(value any, ttl time.Duration, now time.Time) Item {
	return Item{
		Value:          value,
		TTL:            ttl,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

// IsExpired reports whether the item is past its TTL at now.
func (i *Item) IsExpired(now time.Time) bool {
	return i.TTL > 0 && now.After(i.CreatedAt.Add(i.TTL))
}

// ExpiresAt returns the expiry instant and false for items that never expire.
func (i *Item) ExpiresAt() (time.Time, bool) {
	if i.TTL <= 0 {
		return time.Time{}, false
	}
	return i.CreatedAt.Add(i.TTL), true
}

func (i *Item) touch(now time.Time) {
	i.AccessCount++
	i.LastAccessedAt = now
}

// entry is what the LRU list stores.
type entry struct {
	key  string
	item Item
}
