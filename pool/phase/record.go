// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package phase

import (
	"github.com/vechain/stakepool/pool/reverts"
)

// Record holds the markers of one epoch. Records are created on first
// touch and never pruned.
type Record struct {
	Started        [Count]bool
	Finished       [Count]bool
	RateUpdated    bool
	RevenueAccrued bool
	// Size is the registry size captured when the phase started.
	Size [Count]uint64
}

// Status describes a phase within a record.
type Status uint8

const (
	NotStarted Status = iota
	Started
	Finished
)

func (s Status) String() string {
	switch s {
	case Started:
		return "started"
	case Finished:
		return "finished"
	default:
		return "not-started"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (r *Record) Status(p Phase) Status {
	switch {
	case r.Finished[p]:
		return Finished
	case r.Started[p]:
		return Started
	default:
		return NotStarted
	}
}

// CheckBegin returns a revert if a step of phase p may not be issued.
func (r *Record) CheckBegin(p Phase) error {
	if r.Finished[p] {
		return reverts.Newf("%s already completed this epoch", p)
	}
	switch p {
	case Redelegate:
		if !r.Finished[RewardsQuery] {
			return reverts.New("must query rewards first")
		}
	case StakeQuery:
		if !r.Finished[RewardsQuery] {
			return reverts.New("must query rewards first")
		}
		if !r.Finished[Redelegate] {
			return reverts.New("must redelegate rewards first")
		}
	}
	return nil
}

// CheckRateUpdate returns a revert if the exchange rate may not be updated.
func (r *Record) CheckRateUpdate() error {
	if r.RateUpdated {
		return reverts.New("exchange rate already updated this epoch")
	}
	if !r.Finished[StakeQuery] {
		return reverts.New("must query stake first")
	}
	if !r.Finished[RewardsQuery] {
		return reverts.New("must query rewards first")
	}
	if !r.Finished[Withdraw] {
		return reverts.New("must withdraw first")
	}
	return nil
}
