// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package transport defines the outbound calls the pool makes to validators.
// Every call resolves exactly once, asynchronously or not, by invoking its
// callback with either an amount or an error.
package transport

import (
	"math/big"

	"github.com/vechain/stakepool/lsd"
)

// Result is the outcome of an outbound call.
type Result struct {
	Amount *big.Int
	Err    error
}

// Ok returns a successful result. Calls without a value resolve with zero.
func Ok(amount *big.Int) Result {
	if amount == nil {
		amount = new(big.Int)
	}
	return Result{Amount: amount}
}

// Fail returns a failed result.
func Fail(err error) Result {
	return Result{Err: err}
}

func (r Result) Succeeded() bool {
	return r.Err == nil
}

// Callback receives the result of an outbound call.
type Callback func(Result)

// Transport issues calls to named validators.
type Transport interface {
	QueryActiveStake(validator lsd.Address, cb Callback)
	QueryClaimableRewards(validator lsd.Address, cb Callback)
	RequestWithdraw(validator lsd.Address, cb Callback)
	RequestRedelegateRewards(validator lsd.Address, cb Callback)
	Delegate(validator lsd.Address, amount *big.Int, cb Callback)
	Undelegate(validator lsd.Address, amount *big.Int, cb Callback)
}
