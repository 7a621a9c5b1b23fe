// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lsd

import (
	"encoding/binary"
	"math/big"
)

// FeeDenominator is the denominator of the service fee, expressed in parts per thousand.
const FeeDenominator = 1000

// DefaultRateScale returns the default fixed-point denominator of the exchange rate (10^18).
func DefaultRateScale() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
}

// Epoch is a discrete accounting period, identified by an increasing number.
type Epoch uint64

// Bytes returns the big-endian encoding of the epoch, usable as a storage key.
func (e Epoch) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(e))
	return b[:]
}

// ToWei converts whole units into base units (10^18).
func ToWei(units uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(units), DefaultRateScale())
}

// FromWei converts base units into whole units, rounding toward zero.
func FromWei(wei *big.Int) *big.Int {
	return new(big.Int).Quo(wei, DefaultRateScale())
}
