// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package phase

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/slot"
)

var slotRecords = slot.NameToPosition("epoch-records")

// Service is the epoch phase tracker.
type Service struct {
	records *slot.Mapping[lsd.Epoch, *Record]
}

func New(sctx *slot.Context) *Service {
	return &Service{
		records: slot.NewMapping[lsd.Epoch, *Record](sctx, slotRecords),
	}
}

// Get returns the record of the epoch, an untouched epoch has all markers false.
func (s *Service) Get(epoch lsd.Epoch) (*Record, error) {
	rec, err := s.records.Get(epoch)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get epoch record")
	}
	return rec, nil
}

// Exists returns whether the epoch was ever touched.
func (s *Service) Exists(epoch lsd.Epoch) (bool, error) {
	return s.records.Has(epoch)
}

func (s *Service) set(epoch lsd.Epoch, rec *Record) error {
	if err := s.records.Set(epoch, rec); err != nil {
		return errors.Wrap(err, "failed to set epoch record")
	}
	return nil
}

// Begin validates that a step of phase p may be issued for the epoch, and marks
// the phase started. It returns true on the first step of the phase, when the
// caller has to reset the phase cursor.
func (s *Service) Begin(epoch lsd.Epoch, p Phase, size uint64) (bool, error) {
	rec, err := s.Get(epoch)
	if err != nil {
		return false, err
	}
	if err := rec.CheckBegin(p); err != nil {
		return false, err
	}
	if rec.Started[p] {
		return false, nil
	}
	rec.Started[p] = true
	rec.Size[p] = size
	return true, s.set(epoch, rec)
}

// Finish marks the phase finished for the epoch.
func (s *Service) Finish(epoch lsd.Epoch, p Phase) error {
	rec, err := s.Get(epoch)
	if err != nil {
		return err
	}
	if !rec.Started[p] {
		return errors.Errorf("%s finished before it started in epoch %d", p, epoch)
	}
	rec.Finished[p] = true
	return s.set(epoch, rec)
}

// MarkRateUpdated records the single exchange rate update of the epoch.
func (s *Service) MarkRateUpdated(epoch lsd.Epoch) error {
	rec, err := s.Get(epoch)
	if err != nil {
		return err
	}
	if err := rec.CheckRateUpdate(); err != nil {
		return err
	}
	rec.RateUpdated = true
	return s.set(epoch, rec)
}

// MarkRevenueAccrued records the revenue accrual of the epoch. It returns false
// if revenue was already accrued.
func (s *Service) MarkRevenueAccrued(epoch lsd.Epoch) (bool, error) {
	rec, err := s.Get(epoch)
	if err != nil {
		return false, err
	}
	if rec.RevenueAccrued {
		return false, nil
	}
	rec.RevenueAccrued = true
	return true, s.set(epoch, rec)
}
