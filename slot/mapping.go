// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import "github.com/pkg/errors"

// Mapping is a key/value storage abstraction, similar to the mapping in Solidity.
type Mapping[K Key, V any] struct {
	context *Context
	basePos Position
}

func NewMapping[K Key, V any](context *Context, pos Position) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

// Get returns the value of key, or the zero value if never set.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	raw, err := m.context.get(location(m.basePos, key.Bytes()))
	if err != nil {
		return value, err
	}
	value, err = decode[V](raw)
	if err != nil {
		return value, errors.Wrap(err, "decode mapping value")
	}
	return value, nil
}

// Has returns whether the key was set.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	raw, err := m.context.get(location(m.basePos, key.Bytes()))
	if err != nil {
		return false, err
	}
	return raw != nil, nil
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	raw, err := encode(value)
	if err != nil {
		return errors.Wrap(err, "encode mapping value")
	}
	m.context.put(location(m.basePos, key.Bytes()), raw)
	return nil
}

func (m *Mapping[K, V]) Delete(key K) {
	m.context.put(location(m.basePos, key.Bytes()), nil)
}
