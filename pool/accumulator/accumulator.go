// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accumulator

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/slot"
)

var (
	slotTotals = slot.NameToPosition("epoch-totals")
	slotStakes = slot.NameToPosition("validator-stakes")
)

// Totals are the amounts folded in during one epoch.
type Totals struct {
	Stake   *big.Int
	Rewards *big.Int
}

func (t *Totals) normalize() *Totals {
	if t.Stake == nil {
		t.Stake = new(big.Int)
	}
	if t.Rewards == nil {
		t.Rewards = new(big.Int)
	}
	return t
}

// Stake is the last known stake of a validator.
type Stake struct {
	Validator lsd.Address
	Amount    *big.Int
}

// Service accumulates queried stake and rewards per epoch, and keeps the
// latest stake observed for every validator regardless of epoch.
type Service struct {
	totals *slot.Mapping[lsd.Epoch, *Totals]
	stakes *slot.Mapping[lsd.Address, *big.Int]
	order  *linkedList
}

func New(sctx *slot.Context) *Service {
	return &Service{
		totals: slot.NewMapping[lsd.Epoch, *Totals](sctx, slotTotals),
		stakes: slot.NewMapping[lsd.Address, *big.Int](sctx, slotStakes),
		order:  newLinkedList(sctx, "validator-stakes-order"),
	}
}

// Totals returns the totals of the epoch, zero when untouched.
func (s *Service) Totals(epoch lsd.Epoch) (*Totals, error) {
	t, err := s.totals.Get(epoch)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get epoch totals")
	}
	return t.normalize(), nil
}

func (s *Service) update(epoch lsd.Epoch, fn func(*Totals)) error {
	t, err := s.Totals(epoch)
	if err != nil {
		return err
	}
	fn(t)
	if err := s.totals.Set(epoch, t); err != nil {
		return errors.Wrap(err, "failed to set epoch totals")
	}
	return nil
}

// Touch creates the epoch entry if missing. It records a zero contribution.
func (s *Service) Touch(epoch lsd.Epoch) error {
	return s.update(epoch, func(*Totals) {})
}

// AddStake folds a queried stake into the epoch total and records it as the
// validator's last known stake.
func (s *Service) AddStake(epoch lsd.Epoch, validator lsd.Address, amount *big.Int) error {
	if err := s.AddStakeTotal(epoch, amount); err != nil {
		return err
	}
	return s.SetValidatorStake(validator, amount)
}

// AddStakeTotal folds a queried stake into the epoch total only.
func (s *Service) AddStakeTotal(epoch lsd.Epoch, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("stake cannot be negative")
	}
	return s.update(epoch, func(t *Totals) { t.Stake.Add(t.Stake, amount) })
}

// AddRewards folds queried rewards into the epoch total.
func (s *Service) AddRewards(epoch lsd.Epoch, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("rewards cannot be negative")
	}
	return s.update(epoch, func(t *Totals) { t.Rewards.Add(t.Rewards, amount) })
}

func (s *Service) StakeTotal(epoch lsd.Epoch) (*big.Int, error) {
	t, err := s.Totals(epoch)
	if err != nil {
		return nil, err
	}
	return t.Stake, nil
}

func (s *Service) RewardsTotal(epoch lsd.Epoch) (*big.Int, error) {
	t, err := s.Totals(epoch)
	if err != nil {
		return nil, err
	}
	return t.Rewards, nil
}

// SetValidatorStake overwrites the last known stake of the validator.
func (s *Service) SetValidatorStake(validator lsd.Address, amount *big.Int) error {
	if err := s.stakes.Set(validator, new(big.Int).Set(amount)); err != nil {
		return errors.Wrap(err, "failed to set validator stake")
	}
	return s.order.add(validator)
}

// ValidatorStake returns the last known stake and whether it is known.
func (s *Service) ValidatorStake(validator lsd.Address) (*big.Int, bool, error) {
	known, err := s.stakes.Has(validator)
	if err != nil || !known {
		return new(big.Int), false, err
	}
	amount, err := s.stakes.Get(validator)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get validator stake")
	}
	return amount, true, nil
}

// ForgetValidator marks the validator's stake as unknown.
func (s *Service) ForgetValidator(validator lsd.Address) error {
	s.stakes.Delete(validator)
	return s.order.remove(validator)
}

// Stakes returns the known stakes in first-observation order.
func (s *Service) Stakes() ([]Stake, error) {
	n, err := s.order.len()
	if err != nil {
		return nil, err
	}
	stakes := make([]Stake, 0, n)
	err = s.order.iter(func(v lsd.Address) error {
		amount, err := s.stakes.Get(v)
		if err != nil {
			return err
		}
		stakes = append(stakes, Stake{Validator: v, Amount: amount})
		return nil
	})
	return stakes, err
}
