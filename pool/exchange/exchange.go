// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package exchange holds the fixed-point arithmetic of the pool. All divisions
// are integer divisions rounding toward zero.
package exchange

import (
	"math/big"

	"github.com/vechain/stakepool/lsd"
)

var one = big.NewInt(1)

func atLeastOne(x *big.Int) *big.Int {
	if x.Cmp(one) < 0 {
		return one
	}
	return x
}

// Rate returns supply*scale / max(stake, 1).
func Rate(supply, stake, scale *big.Int) *big.Int {
	rate := new(big.Int).Mul(supply, scale)
	return rate.Quo(rate, atLeastOne(stake))
}

// ClaimForDeposit returns the claim tokens minted for a deposit of value.
func ClaimForDeposit(value, rate, scale *big.Int) *big.Int {
	claim := new(big.Int).Mul(value, rate)
	return claim.Quo(claim, scale)
}

// BaseForClaim returns the base asset redeemable for claim tokens.
func BaseForClaim(claim, rate, scale *big.Int) *big.Int {
	base := new(big.Int).Mul(claim, scale)
	return base.Quo(base, atLeastOne(rate))
}

// Revenue returns the protocol cut of rewards, feePPT in parts per thousand.
func Revenue(rewards *big.Int, feePPT uint64) *big.Int {
	revenue := new(big.Int).Mul(rewards, new(big.Int).SetUint64(feePPT))
	return revenue.Quo(revenue, big.NewInt(lsd.FeeDenominator))
}

// RevenueMint returns the claim tokens minted when distributing revenue.
func RevenueMint(revenue, rate, scale *big.Int) *big.Int {
	return ClaimForDeposit(revenue, rate, scale)
}
