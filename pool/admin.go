// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool/reverts"
)

// AddValidator appends a validator to the registry.
func (p *Pool) AddValidator(validator lsd.Address) error {
	err := p.invoke(func(s *state) error {
		return s.registry.Add(validator)
	})
	if err == nil {
		logger.Info("validator added", "validator", validator)
	}
	return err
}

// RemoveValidator drops a validator and its last known stake, and clamps the
// phase cursors into the smaller registry.
func (p *Pool) RemoveValidator(validator lsd.Address) error {
	err := p.invoke(func(s *state) error {
		if err := s.registry.Remove(validator); err != nil {
			return err
		}
		if err := s.acc.ForgetValidator(validator); err != nil {
			return err
		}
		n, err := s.registry.Len()
		if err != nil {
			return err
		}
		return s.cursors.Clamp(n)
	})
	if err == nil {
		logger.Info("validator removed", "validator", validator)
	}
	return err
}

// ClearValidators empties the registry.
func (p *Pool) ClearValidators() error {
	return p.invoke(func(s *state) error {
		validators, err := s.registry.All()
		if err != nil {
			return err
		}
		for _, v := range validators {
			if err := s.acc.ForgetValidator(v); err != nil {
				return err
			}
		}
		if err := s.registry.Clear(); err != nil {
			return err
		}
		return s.cursors.Clamp(0)
	})
}

// SetServiceFee sets the protocol cut of rewards in parts per thousand.
func (p *Pool) SetServiceFee(fee uint64) error {
	return p.invoke(func(s *state) error {
		return s.globals.SetServiceFee(fee)
	})
}

// SetDelta overwrites the unrebalanced delta.
func (p *Pool) SetDelta(delta *big.Int) error {
	return p.invoke(func(s *state) error {
		return s.globals.SetDelta(delta)
	})
}

// SetValidatorStake overwrites the last known stake of a validator.
func (p *Pool) SetValidatorStake(validator lsd.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return reverts.New("stake cannot be negative")
	}
	return p.invoke(func(s *state) error {
		return s.acc.SetValidatorStake(validator, amount)
	})
}
