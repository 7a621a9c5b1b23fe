// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"math/big"

	"github.com/pkg/errors"
)

// Value stores a single rlp encodable value at a position.
type Value[V any] struct {
	context *Context
	pos     Position
}

func NewValue[V any](context *Context, pos Position) *Value[V] {
	return &Value[V]{context: context, pos: pos}
}

// Get returns the stored value, or the zero value if never set.
func (v *Value[V]) Get() (value V, err error) {
	raw, err := v.context.get(v.pos[:])
	if err != nil {
		return value, err
	}
	value, err = decode[V](raw)
	if err != nil {
		return value, errors.Wrap(err, "decode value")
	}
	return value, nil
}

// IsSet returns whether the value was ever written.
func (v *Value[V]) IsSet() (bool, error) {
	raw, err := v.context.get(v.pos[:])
	if err != nil {
		return false, err
	}
	return raw != nil, nil
}

func (v *Value[V]) Set(value V) error {
	raw, err := encode(value)
	if err != nil {
		return errors.Wrap(err, "encode value")
	}
	v.context.put(v.pos[:], raw)
	return nil
}

// Uint is a non-negative arbitrary precision integer.
type Uint struct {
	name  string
	value *Value[*big.Int]
}

func NewUint(context *Context, name string) *Uint {
	return &Uint{name: name, value: NewValue[*big.Int](context, NameToPosition(name))}
}

func (u *Uint) Get() (*big.Int, error) {
	return u.value.Get()
}

func (u *Uint) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return errors.Errorf("%s cannot be negative", u.name)
	}
	return u.value.Set(value)
}

func (u *Uint) Add(delta *big.Int) error {
	current, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(current.Add(current, delta))
}

func (u *Uint) Sub(delta *big.Int) error {
	current, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(current.Sub(current, delta))
}

// signed is the rlp form of a signed integer, rlp only encodes non-negative big ints.
type signed struct {
	Neg bool
	Abs *big.Int
}

// Int is a signed arbitrary precision integer.
type Int struct {
	value *Value[*signed]
}

func NewInt(context *Context, name string) *Int {
	return &Int{value: NewValue[*signed](context, NameToPosition(name))}
}

func (i *Int) Get() (*big.Int, error) {
	s, err := i.value.Get()
	if err != nil {
		return nil, err
	}
	if s.Abs == nil {
		return new(big.Int), nil
	}
	if s.Neg {
		return new(big.Int).Neg(s.Abs), nil
	}
	return new(big.Int).Set(s.Abs), nil
}

func (i *Int) Set(value *big.Int) error {
	return i.value.Set(&signed{Neg: value.Sign() < 0, Abs: new(big.Int).Abs(value)})
}

func (i *Int) Add(delta *big.Int) error {
	current, err := i.Get()
	if err != nil {
		return err
	}
	return i.Set(current.Add(current, delta))
}
