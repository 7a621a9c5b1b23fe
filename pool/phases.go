// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool/exchange"
	"github.com/vechain/stakepool/pool/pending"
	"github.com/vechain/stakepool/pool/phase"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/transport"
)

// AdvanceStakeQuery queries the active stake of the next validator.
func (p *Pool) AdvanceStakeQuery() (*pending.Handle, error) {
	return p.Advance(phase.StakeQuery)
}

// AdvanceRewardsQuery queries the claimable rewards of the next validator.
func (p *Pool) AdvanceRewardsQuery() (*pending.Handle, error) {
	return p.Advance(phase.RewardsQuery)
}

// AdvanceWithdraw withdraws the unbonded funds of the next validator.
func (p *Pool) AdvanceWithdraw() (*pending.Handle, error) {
	return p.Advance(phase.Withdraw)
}

// AdvanceRedelegate redelegates the rewards of the next validator.
func (p *Pool) AdvanceRedelegate() (*pending.Handle, error) {
	return p.Advance(phase.Redelegate)
}

// Advance issues one step of the phase for the current epoch: it picks the
// next validator of the phase cursor, commits the step as in flight and then
// dispatches its outbound call.
func (p *Pool) Advance(ph phase.Phase) (*pending.Handle, error) {
	if !ph.Valid() {
		return nil, reverts.Newf("unknown phase %d", ph)
	}
	epoch := p.clock.Epoch()

	var h *pending.Handle
	err := p.invoke(func(s *state) error {
		inflight, err := s.pending.Phase(ph)
		if err != nil {
			return err
		}
		if inflight != nil {
			return reverts.Newf("%s step already in flight", ph)
		}

		n, err := s.registry.Len()
		if err != nil {
			return err
		}
		if n == 0 {
			return reverts.New("registry is empty")
		}

		first, err := s.phases.Begin(epoch, ph, n)
		if err != nil {
			return err
		}
		if first {
			if err := s.cursors.Reset(ph); err != nil {
				return err
			}
		} else if rec, err := s.phases.Get(epoch); err != nil {
			return err
		} else if rec.Size[ph] != n {
			// the cycle length is fixed when the phase starts
			logger.Warn("registry changed during phase", "phase", ph, "epoch", epoch, "started", rec.Size[ph], "now", n)
			return reverts.New("registry changed during phase")
		}

		validator, position, wrapped, err := s.cursors.Advance(ph, s.registry)
		if err != nil {
			return err
		}
		h = pending.NewPhaseStep(ph, epoch, validator, position, wrapped)
		return s.pending.Open(h)
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("phase step issued",
		"phase", ph, "epoch", epoch, "validator", h.Validator, "position", h.Position, "wrapped", h.Wrapped)
	p.dispatch(h)
	return h, nil
}

// resolveStep folds a phase step result and reports whether it finished the phase.
func (p *Pool) resolveStep(s *state, h *pending.Handle, r transport.Result) (bool, error) {
	if !r.Succeeded() {
		logger.Warn("step failed, counted as zero",
			"phase", h.Phase, "epoch", h.Epoch, "validator", h.Validator, "err", r.Err)
	}

	var err error
	switch h.Phase {
	case phase.StakeQuery:
		if !r.Succeeded() {
			err = s.acc.Touch(h.Epoch)
			break
		}
		// a validator removed while its query was in flight is not a rebalance target
		var registered bool
		if registered, err = s.registry.Contains(h.Validator); err != nil {
			break
		}
		if registered {
			err = s.acc.AddStake(h.Epoch, h.Validator, r.Amount)
		} else {
			err = s.acc.AddStakeTotal(h.Epoch, r.Amount)
		}
	case phase.RewardsQuery:
		if r.Succeeded() {
			err = s.acc.AddRewards(h.Epoch, r.Amount)
		} else {
			err = s.acc.Touch(h.Epoch)
		}
	}
	if err != nil {
		return false, err
	}

	if !h.Wrapped {
		return false, nil
	}
	if err := s.phases.Finish(h.Epoch, h.Phase); err != nil {
		return false, err
	}
	if h.Phase == phase.Redelegate {
		if err := p.accrueRevenue(s, h.Epoch); err != nil {
			return false, err
		}
	}
	return true, nil
}

// accrueRevenue adds the protocol cut of the epoch rewards, once per epoch.
func (p *Pool) accrueRevenue(s *state, epoch lsd.Epoch) error {
	fresh, err := s.phases.MarkRevenueAccrued(epoch)
	if err != nil || !fresh {
		return err
	}
	rewards, err := s.acc.RewardsTotal(epoch)
	if err != nil {
		return err
	}
	fee, err := s.globals.ServiceFee()
	if err != nil {
		return err
	}
	revenue := exchange.Revenue(rewards, fee)
	if err := s.globals.AddRevenue(revenue); err != nil {
		return err
	}
	logger.Info("protocol revenue accrued", "epoch", epoch, "rewards", rewards, "revenue", revenue)
	return nil
}

// UpdateExchangeRate derives the exchange rate from the stake queried this
// epoch. It runs once per epoch, after stake, rewards and withdraw finished.
func (p *Pool) UpdateExchangeRate() (*big.Int, error) {
	epoch := p.clock.Epoch()

	var rate *big.Int
	err := p.invoke(func(s *state) error {
		rec, err := s.phases.Get(epoch)
		if err != nil {
			return err
		}
		if err := rec.CheckRateUpdate(); err != nil {
			return err
		}
		supply, err := s.globals.Supply()
		if err != nil {
			return err
		}
		stake, err := s.acc.StakeTotal(epoch)
		if err != nil {
			return err
		}
		scale, err := s.globals.Scale()
		if err != nil {
			return err
		}
		rate = exchange.Rate(supply, stake, scale)
		if err := s.globals.SetRate(rate); err != nil {
			return err
		}
		return s.phases.MarkRateUpdated(epoch)
	})
	if err != nil {
		return nil, err
	}

	metricRateUpdates().Add(1)
	logger.Info("exchange rate updated", "epoch", epoch, "rate", rate)
	return rate, nil
}

// DistributeProtocolRevenue mints the accrued revenue, converted at the
// current rate, to the owner and resets the accrued revenue.
func (p *Pool) DistributeProtocolRevenue() (*big.Int, error) {
	var (
		minted *big.Int
		supply *big.Int
	)
	err := p.invoke(func(s *state) error {
		rate, err := s.globals.Rate()
		if err != nil {
			return err
		}
		scale, err := s.globals.Scale()
		if err != nil {
			return err
		}
		revenue, err := s.globals.TakeRevenue()
		if err != nil {
			return err
		}
		minted = exchange.RevenueMint(revenue, rate, scale)
		if minted.Sign() > 0 {
			owner, err := s.globals.Owner()
			if err != nil {
				return err
			}
			if owner.IsZero() {
				return reverts.New("owner not set")
			}
			if err := s.tokens.Mint(owner, minted); err != nil {
				return err
			}
			if err := s.globals.Mint(minted); err != nil {
				return err
			}
		}
		supply, err = s.globals.Supply()
		return err
	})
	if err != nil {
		return nil, err
	}

	reportSupply(supply)
	logger.Info("protocol revenue distributed", "minted", minted)
	return minted, nil
}
