// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cursor

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool/phase"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/slot"
)

var slotPositions = slot.NameToPosition("cursor-positions")

// Registry is the view of the validator registry a cursor walks.
type Registry interface {
	Len() (uint64, error)
	Get(i uint64) (lsd.Address, error)
}

// Service holds one round-robin cursor per phase. Positions are 1-based, an
// unset position reads as 1.
type Service struct {
	positions *slot.Mapping[phase.Phase, uint64]
}

func New(sctx *slot.Context) *Service {
	return &Service{
		positions: slot.NewMapping[phase.Phase, uint64](sctx, slotPositions),
	}
}

// Position returns the position of the next validator to visit.
func (s *Service) Position(p phase.Phase) (uint64, error) {
	pos, err := s.positions.Get(p)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get cursor position")
	}
	if pos == 0 {
		return 1, nil
	}
	return pos, nil
}

func (s *Service) set(p phase.Phase, pos uint64) error {
	if err := s.positions.Set(p, pos); err != nil {
		return errors.Wrap(err, "failed to set cursor position")
	}
	return nil
}

// Reset moves the cursor of the phase back to position 1.
func (s *Service) Reset(p phase.Phase) error {
	return s.set(p, 1)
}

// Advance returns the validator at the cursor and its position, then moves the
// cursor on. Wrapped reports that the returned validator was the last one of
// the cycle, the cursor is back at 1.
func (s *Service) Advance(p phase.Phase, reg Registry) (validator lsd.Address, position uint64, wrapped bool, err error) {
	n, err := reg.Len()
	if err != nil {
		return
	}
	if n == 0 {
		err = reverts.New("registry is empty")
		return
	}
	if position, err = s.Position(p); err != nil {
		return
	}
	if position > n {
		err = reverts.Newf("%s cursor out of range: %d > %d", p, position, n)
		return
	}
	if validator, err = reg.Get(position); err != nil {
		return
	}

	next := position + 1
	if next > n {
		next = 1
		wrapped = true
	}
	err = s.set(p, next)
	return
}

// Clamp brings every cursor back into [1, n] after the registry shrank.
func (s *Service) Clamp(n uint64) error {
	for p := phase.Phase(0); p < phase.Count; p++ {
		pos, err := s.Position(p)
		if err != nil {
			return err
		}
		switch {
		case n == 0:
			pos = 1
		case pos > n:
			pos = n
		default:
			continue
		}
		if err := s.set(p, pos); err != nil {
			return err
		}
	}
	return nil
}
