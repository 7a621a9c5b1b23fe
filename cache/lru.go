// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// LRU a LRU cache extends golang-lru with hit statistics.
type LRU struct {
	cache *lru.Cache
	hit   atomic.Int64
	miss  atomic.Int64
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU(maxSize int) (*LRU, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: cache}, nil
}

// Get returns the cached value.
func (l *LRU) Get(key string) ([]byte, bool) {
	v, ok := l.cache.Get(key)
	if !ok {
		l.miss.Add(1)
		return nil, false
	}
	l.hit.Add(1)
	return v.([]byte), true
}

// Add caches the value, a nil value caches the absence of the key.
func (l *LRU) Add(key string, val []byte) {
	l.cache.Add(key, val)
}

// Remove drops the key.
func (l *LRU) Remove(key string) {
	l.cache.Remove(key)
}

// Purge drops all keys.
func (l *LRU) Purge() {
	l.cache.Purge()
}

// Len returns the number of cached keys.
func (l *LRU) Len() int {
	return l.cache.Len()
}

// Loader loads the value of a missed key.
type Loader func(key string) ([]byte, error)

// GetOrLoad first try to get from cache, do load if missed.
func (l *LRU) GetOrLoad(key string, loader Loader) ([]byte, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := loader(key)
	if err != nil {
		return nil, err
	}

	l.Add(key, v)
	return v, nil
}

// Stats returns hit and miss counts.
func (l *LRU) Stats() (hit, miss int64) {
	return l.hit.Load(), l.miss.Load()
}
