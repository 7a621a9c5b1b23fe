// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool/pending"
	"github.com/vechain/stakepool/pool/rebalance"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/transport"
)

// Rebalance issues a single delegate or undelegate action netting the
// unrebalanced delta against the validator with the smallest or largest known
// stake. A zero delta is a no-op returning a nil handle.
func (p *Pool) Rebalance() (*pending.Handle, error) {
	epoch := p.clock.Epoch()

	var h *pending.Handle
	err := p.invoke(func(s *state) error {
		delta, err := s.globals.Delta()
		if err != nil {
			return err
		}
		if delta.Sign() == 0 {
			return nil
		}
		stakes, err := s.acc.Stakes()
		if err != nil {
			return err
		}
		decision, err := rebalance.Select(delta, stakes)
		if err != nil {
			return err
		}
		h = pending.NewRebalance(epoch, decision)
		return s.pending.Open(h)
	})
	if err != nil || h == nil {
		return nil, err
	}

	logger.Debug("rebalance issued", "direction", h.Direction, "validator", h.Validator, "amount", h.Amount)
	p.dispatch(h)
	return h, nil
}

// DelegateDirect delegates amount to the validator, bypassing selection.
func (p *Pool) DelegateDirect(validator lsd.Address, amount *big.Int) (*pending.Handle, error) {
	return p.direct(rebalance.Delegate, validator, amount)
}

// UndelegateDirect undelegates amount from the validator, bypassing selection.
func (p *Pool) UndelegateDirect(validator lsd.Address, amount *big.Int) (*pending.Handle, error) {
	return p.direct(rebalance.Undelegate, validator, amount)
}

func (p *Pool) direct(direction rebalance.Direction, validator lsd.Address, amount *big.Int) (*pending.Handle, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, reverts.New("amount must be positive")
	}
	epoch := p.clock.Epoch()

	var h *pending.Handle
	err := p.invoke(func(s *state) error {
		registered, err := s.registry.Contains(validator)
		if err != nil {
			return err
		}
		if !registered {
			return reverts.New("validator not registered")
		}
		h = pending.NewRebalance(epoch, &rebalance.Decision{
			Direction: direction,
			Validator: validator,
			Amount:    amount,
		})
		return s.pending.Open(h)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("direct delegation issued", "direction", direction, "validator", validator, "amount", amount)
	p.dispatch(h)
	return h, nil
}

// resolveRebalance clears the delta on success, including amounts that
// arrived while the action was in flight. On failure the validator's stake
// becomes unknown, so the next rebalance picks another one.
func (p *Pool) resolveRebalance(s *state, h *pending.Handle, r transport.Result) error {
	if !r.Succeeded() {
		logger.Warn("rebalance failed, forgetting validator stake",
			"direction", h.Direction, "validator", h.Validator, "err", r.Err)
		return s.acc.ForgetValidator(h.Validator)
	}
	if err := s.globals.SetDelta(new(big.Int)); err != nil {
		return err
	}
	logger.Info("rebalance done", "direction", h.Direction, "validator", h.Validator, "amount", h.Amount)
	return nil
}
