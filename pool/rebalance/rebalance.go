// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rebalance

import (
	"math/big"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool/accumulator"
	"github.com/vechain/stakepool/pool/reverts"
)

// Direction of a rebalance action.
type Direction uint8

const (
	None Direction = iota
	Delegate
	Undelegate
)

func (d Direction) String() string {
	switch d {
	case Delegate:
		return "delegate"
	case Undelegate:
		return "undelegate"
	default:
		return "none"
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Decision is a single rebalance action.
type Decision struct {
	Direction Direction
	Validator lsd.Address
	Amount    *big.Int
}

// Select picks the validator to act on for the given delta: the smallest known
// stake receives net deposits, the largest one gives back net withdrawals.
// Ties go to the first validator in the given order.
func Select(delta *big.Int, stakes []accumulator.Stake) (*Decision, error) {
	if delta.Sign() == 0 {
		return &Decision{Direction: None, Amount: new(big.Int)}, nil
	}
	if len(stakes) == 0 {
		return nil, reverts.New("no validator stake known")
	}

	want := -1
	direction := Delegate
	if delta.Sign() < 0 {
		want = 1
		direction = Undelegate
	}

	best := stakes[0]
	for _, s := range stakes[1:] {
		if s.Amount.Cmp(best.Amount) == want {
			best = s
		}
	}
	return &Decision{
		Direction: direction,
		Validator: best.Validator,
		Amount:    new(big.Int).Abs(delta),
	}, nil
}
