// Package cache provides a byte-bounded LRU cache of immutable blobs.
//
// Entries are charged against a resource.Controller when one is given, so
// cached checkpoints and arena commits share one memory budget. A value
// the budget refuses is simply not cached.
package cache
