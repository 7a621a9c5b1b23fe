// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

type index uint64

func (i index) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(i))
	return b[:]
}

// Array is an ordered vector with 1-based indexes.
type Array[V any] struct {
	length *Value[uint64]
	items  *Mapping[index, V]
}

func NewArray[V any](context *Context, name string) *Array[V] {
	return &Array[V]{
		length: NewValue[uint64](context, NameToPosition(name+"-length")),
		items:  NewMapping[index, V](context, NameToPosition(name)),
	}
}

func (a *Array[V]) Len() (uint64, error) {
	return a.length.Get()
}

// Get returns the item at the 1-based index i.
func (a *Array[V]) Get(i uint64) (value V, err error) {
	n, err := a.Len()
	if err != nil {
		return value, err
	}
	if i < 1 || i > n {
		return value, errors.Errorf("index %d out of range [1, %d]", i, n)
	}
	return a.items.Get(index(i))
}

func (a *Array[V]) Set(i uint64, value V) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if i < 1 || i > n {
		return errors.Errorf("index %d out of range [1, %d]", i, n)
	}
	return a.items.Set(index(i), value)
}

func (a *Array[V]) Push(value V) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if err := a.items.Set(index(n+1), value); err != nil {
		return err
	}
	return a.length.Set(n + 1)
}

// Remove deletes the item at index i, shifting later items down.
func (a *Array[V]) Remove(i uint64) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if i < 1 || i > n {
		return errors.Errorf("index %d out of range [1, %d]", i, n)
	}
	for j := i; j < n; j++ {
		next, err := a.items.Get(index(j + 1))
		if err != nil {
			return err
		}
		if err := a.items.Set(index(j), next); err != nil {
			return err
		}
	}
	a.items.Delete(index(n))
	return a.length.Set(n - 1)
}

func (a *Array[V]) Clear() error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	for i := uint64(1); i <= n; i++ {
		a.items.Delete(index(i))
	}
	return a.length.Set(0)
}

// Iter visits items in order until fn returns false or an error occurs.
func (a *Array[V]) Iter(fn func(i uint64, value V) bool) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	for i := uint64(1); i <= n; i++ {
		value, err := a.items.Get(index(i))
		if err != nil {
			return err
		}
		if !fn(i, value) {
			return nil
		}
	}
	return nil
}
