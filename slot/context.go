// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/kv"
)

// Position is the base storage position of a slot.
type Position [32]byte

// NameToPosition derives a slot position from a human readable name.
func NameToPosition(name string) Position {
	return Position(crypto.Keccak256Hash([]byte(name)))
}

// Bytes returns the position as byte slice.
func (p Position) Bytes() []byte {
	return p[:]
}

// Key is implemented by mapping keys.
type Key interface {
	Bytes() []byte
}

// Context stages writes over a kv store until Commit.
// Reads see staged writes. A Context is not safe for concurrent use.
type Context struct {
	store kv.Store
	cache *cache.LRU
	dirty map[string][]byte
}

// NewContext creates a context. The cache is optional.
func NewContext(store kv.Store, cache *cache.LRU) *Context {
	return &Context{
		store: store,
		cache: cache,
		dirty: make(map[string][]byte),
	}
}

func (c *Context) get(key []byte) ([]byte, error) {
	if val, ok := c.dirty[string(key)]; ok {
		return val, nil
	}
	if c.cache != nil {
		if val, ok := c.cache.Get(string(key)); ok {
			return val, nil
		}
	}
	val, err := c.store.Get(key)
	if err != nil {
		if !c.store.IsNotFound(err) {
			return nil, errors.Wrap(err, "read storage")
		}
		val = nil
	}
	if c.cache != nil {
		c.cache.Add(string(key), val)
	}
	return val, nil
}

// put stages a write, a nil value deletes the key.
func (c *Context) put(key []byte, val []byte) {
	c.dirty[string(key)] = val
}

// Dirty returns the number of staged keys.
func (c *Context) Dirty() int {
	return len(c.dirty)
}

// Commit writes all staged changes atomically.
func (c *Context) Commit() error {
	if len(c.dirty) == 0 {
		return nil
	}
	bulk := c.store.Bulk()
	for k, v := range c.dirty {
		var err error
		if v == nil {
			err = bulk.Delete([]byte(k))
		} else {
			err = bulk.Put([]byte(k), v)
		}
		if err != nil {
			return errors.Wrap(err, "stage storage write")
		}
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "commit storage")
	}
	if c.cache != nil {
		for k, v := range c.dirty {
			c.cache.Add(k, v)
		}
	}
	c.dirty = make(map[string][]byte)
	return nil
}

// Revert drops all staged changes.
func (c *Context) Revert() {
	if len(c.dirty) > 0 {
		c.dirty = make(map[string][]byte)
	}
}
