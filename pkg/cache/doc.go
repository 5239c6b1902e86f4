// Package cache provides an in-memory LRU cache with optional expiry.
//
//	c := cache.NewLRU[string, int](1024, cache.WithTTL[string, int](5*time.Minute))
//	c.Put("group1/M00/00/00/a.jpg", 42)
//	v, ok := c.Get("group1/M00/00/00/a.jpg")
//
// Expired entries are dropped lazily by Get, or eagerly by Purge.
package cache
