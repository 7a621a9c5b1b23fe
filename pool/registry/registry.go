// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/slot"
)

// Service is the ordered validator registry. Indexes are 1-based.
type Service struct {
	validators *slot.Array[lsd.Address]
}

func New(sctx *slot.Context) *Service {
	return &Service{
		validators: slot.NewArray[lsd.Address](sctx, "validators"),
	}
}

func (s *Service) Len() (uint64, error) {
	n, err := s.validators.Len()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get registry size")
	}
	return n, nil
}

// Get returns the validator at 1-based index i.
func (s *Service) Get(i uint64) (lsd.Address, error) {
	return s.validators.Get(i)
}

// IndexOf returns the 1-based index of the validator, 0 if not registered.
func (s *Service) IndexOf(validator lsd.Address) (uint64, error) {
	var found uint64
	err := s.validators.Iter(func(i uint64, v lsd.Address) bool {
		if v == validator {
			found = i
			return false
		}
		return true
	})
	return found, err
}

func (s *Service) Contains(validator lsd.Address) (bool, error) {
	i, err := s.IndexOf(validator)
	return i > 0, err
}

// All returns the validators in registry order.
func (s *Service) All() ([]lsd.Address, error) {
	all := make([]lsd.Address, 0)
	err := s.validators.Iter(func(_ uint64, v lsd.Address) bool {
		all = append(all, v)
		return true
	})
	return all, err
}

func (s *Service) Add(validator lsd.Address) error {
	if validator.IsZero() {
		return reverts.New("validator address is zero")
	}
	exists, err := s.Contains(validator)
	if err != nil {
		return err
	}
	if exists {
		return reverts.New("validator already registered")
	}
	return s.validators.Push(validator)
}

// Remove deletes the validator keeping the order of the others.
func (s *Service) Remove(validator lsd.Address) error {
	i, err := s.IndexOf(validator)
	if err != nil {
		return err
	}
	if i == 0 {
		return reverts.New("validator not registered")
	}
	return s.validators.Remove(i)
}

func (s *Service) Clear() error {
	return s.validators.Clear()
}
