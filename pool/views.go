// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool/accumulator"
	"github.com/vechain/stakepool/pool/pending"
	"github.com/vechain/stakepool/pool/phase"
	"github.com/vechain/stakepool/token"
)

// Summary is the pool-wide state at a point in time.
type Summary struct {
	Epoch       lsd.Epoch
	Supply      *big.Int
	Delta       *big.Int
	Rate        *big.Int
	Scale       *big.Int
	Revenue     *big.Int
	ServiceFee  uint64
	Owner       lsd.Address
	Validators  uint64
	InFlight    int
	TokenSupply *big.Int
}

// PhaseReport is the progress of one phase within an epoch.
type PhaseReport struct {
	Phase    phase.Phase
	Status   phase.Status
	Size     uint64
	Position uint64
}

// EpochReport is the audit record of an epoch.
type EpochReport struct {
	Epoch lsd.Epoch
	// Touched is false for an epoch no phase step was ever issued in.
	Touched        bool
	Phases         []PhaseReport
	RateUpdated    bool
	RevenueAccrued bool
	StakeTotal     *big.Int
	RewardsTotal   *big.Int
}

func (p *Pool) Summary() (*Summary, error) {
	var sum *Summary
	err := p.view(func(s *state) error {
		stats, err := s.globals.Stats()
		if err != nil {
			return err
		}
		n, err := s.registry.Len()
		if err != nil {
			return err
		}
		inflight, err := s.pending.All()
		if err != nil {
			return err
		}
		tokenSupply, err := s.tokens.TotalSupply()
		if err != nil {
			return err
		}
		sum = &Summary{
			Epoch:       p.clock.Epoch(),
			Supply:      stats.Supply,
			Delta:       stats.Delta,
			Rate:        stats.Rate,
			Scale:       stats.Scale,
			Revenue:     stats.Revenue,
			ServiceFee:  stats.ServiceFee,
			Owner:       stats.Owner,
			Validators:  n,
			InFlight:    len(inflight),
			TokenSupply: tokenSupply,
		}
		return nil
	})
	return sum, err
}

// Record returns the phase markers of the epoch.
func (p *Pool) Record(epoch lsd.Epoch) (*phase.Record, error) {
	var rec *phase.Record
	err := p.view(func(s *state) (err error) {
		rec, err = s.phases.Get(epoch)
		return
	})
	return rec, err
}

func (p *Pool) EpochReport(epoch lsd.Epoch) (*EpochReport, error) {
	var report *EpochReport
	err := p.view(func(s *state) error {
		rec, err := s.phases.Get(epoch)
		if err != nil {
			return err
		}
		touched, err := s.phases.Exists(epoch)
		if err != nil {
			return err
		}
		totals, err := s.acc.Totals(epoch)
		if err != nil {
			return err
		}
		report = &EpochReport{
			Epoch:          epoch,
			Touched:        touched,
			Phases:         make([]PhaseReport, 0, phase.Count),
			RateUpdated:    rec.RateUpdated,
			RevenueAccrued: rec.RevenueAccrued,
			StakeTotal:     totals.Stake,
			RewardsTotal:   totals.Rewards,
		}
		for _, ph := range phase.All() {
			pos, err := s.cursors.Position(ph)
			if err != nil {
				return err
			}
			report.Phases = append(report.Phases, PhaseReport{
				Phase:    ph,
				Status:   rec.Status(ph),
				Size:     rec.Size[ph],
				Position: pos,
			})
		}
		return nil
	})
	return report, err
}

// Validators returns the registry in order.
func (p *Pool) Validators() ([]lsd.Address, error) {
	var all []lsd.Address
	err := p.view(func(s *state) (err error) {
		all, err = s.registry.All()
		return
	})
	return all, err
}

// Stakes returns the last known validator stakes in first-observation order.
func (p *Pool) Stakes() ([]accumulator.Stake, error) {
	var stakes []accumulator.Stake
	err := p.view(func(s *state) (err error) {
		stakes, err = s.acc.Stakes()
		return
	})
	return stakes, err
}

// InFlight returns the steps awaiting their outbound call result.
func (p *Pool) InFlight() ([]*pending.Handle, error) {
	var handles []*pending.Handle
	err := p.view(func(s *state) (err error) {
		handles, err = s.pending.All()
		return
	})
	return handles, err
}

// Balance returns the claim token balance of the account.
func (p *Pool) Balance(account lsd.Address) (*big.Int, error) {
	var bal *big.Int
	err := p.view(func(s *state) (err error) {
		bal, err = s.tokens.BalanceOf(account)
		return
	})
	return bal, err
}

// Receipt returns a withdrawal receipt.
func (p *Pool) Receipt(id uint64) (*token.Receipt, error) {
	var r *token.Receipt
	err := p.view(func(s *state) (err error) {
		r, err = s.tokens.Receipt(id)
		return
	})
	return r, err
}
