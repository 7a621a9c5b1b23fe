// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"reflect"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

func location(base Position, key []byte) []byte {
	return crypto.Keccak256(key, base[:])
}

// decode returns the zero value for an empty raw value. Pointer types are
// allocated so callers never receive a nil pointer.
func decode[V any](raw []byte) (value V, err error) {
	if reflect.ValueOf(value).Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	if len(raw) == 0 {
		return value, nil
	}
	err = rlp.DecodeBytes(raw, &value)
	return
}

func encode(value any) ([]byte, error) {
	return rlp.EncodeToBytes(value)
}
