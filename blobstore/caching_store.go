package blobstore

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/nucleus/internal/cache"
	"github.com/hupe1980/nucleus/resource"
)

// CachingStore wraps a BlobStore and keeps whole blobs in a byte-bounded
// LRU. It is meant for remote stores where checkpoints are read more often
// than they are written. Concurrent misses on the same name share one read.
type CachingStore struct {
	inner BlobStore
	cache *cache.LRU
	group singleflight.Group

	// gen counts committed writes. A read-through fills the cache only if
	// no write committed while it was reading, so it never restores bytes
	// a write has replaced.
	mu  sync.Mutex
	gen uint64
}

// NewCachingStore creates a CachingStore holding at most capacity bytes.
// Cached bytes are charged against rc when it is non-nil.
func NewCachingStore(inner BlobStore, capacity int64, rc *resource.Controller) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: cache.NewLRU(capacity, rc),
	}
}

// Open returns the cached blob or reads it through from the inner store.
// The returned blob is Mappable; its bytes are shared and must not be
// modified.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	if data, ok := s.cache.Get(name); ok {
		return &memoryBlob{data: data}, nil
	}

	gen := s.generation()

	// Reads started after a write never join a flight that began before it.
	key := strconv.FormatUint(gen, 10) + "/" + name
	v, err, _ := s.group.Do(key, func() (any, error) {
		data, err := ReadAll(ctx, s.inner, name)
		if err != nil {
			return nil, err
		}
		s.fill(name, data, gen)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return &memoryBlob{data: v.([]byte)}, nil
}

func (s *CachingStore) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *CachingStore) fill(name string, data []byte, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.cache.Set(name, data)
	}
}

func (s *CachingStore) invalidate(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cache.Remove(name)
}

// Create starts a write on the inner store. The cached copy is dropped when
// the write is committed.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	w, err := s.inner.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &invalidatingBlob{WritableBlob: w, store: s, name: name}, nil
}

// Put writes through and drops the cached copy.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	defer s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete deletes through and drops the cached copy.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	defer s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List is not cached.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns cache hits and misses.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}

// Purge drops every cached blob.
func (s *CachingStore) Purge() {
	s.cache.Purge()
}

type invalidatingBlob struct {
	WritableBlob
	store *CachingStore
	name  string
}

func (w *invalidatingBlob) Close() error {
	defer w.store.invalidate(w.name)
	return w.WritableBlob.Close()
}
