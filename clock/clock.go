// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package clock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/lsd"
)

var logger = log.WithContext("pkg", "clock")

// Clock supplies the current epoch.
type Clock interface {
	Now() time.Time
	Epoch() lsd.Epoch
}

// Schedule maps time to epochs of fixed length starting at genesis.
type Schedule struct {
	Genesis time.Time
	Length  time.Duration
}

// EpochAt returns the epoch containing t, epoch 0 before genesis.
func (s Schedule) EpochAt(t time.Time) lsd.Epoch {
	if s.Length <= 0 || t.Before(s.Genesis) {
		return 0
	}
	return lsd.Epoch(t.Sub(s.Genesis) / s.Length)
}

// Start returns the start time of the epoch.
func (s Schedule) Start(epoch lsd.Epoch) time.Time {
	return s.Genesis.Add(time.Duration(epoch) * s.Length)
}

// Wall is the system clock corrected by an NTP offset.
type Wall struct {
	schedule Schedule
	offset   atomic.Int64
}

func NewWall(schedule Schedule) (*Wall, error) {
	if schedule.Length <= 0 {
		return nil, errors.New("epoch length must be positive")
	}
	return &Wall{schedule: schedule}, nil
}

func (w *Wall) Now() time.Time {
	return time.Now().Add(w.Offset())
}

func (w *Wall) Epoch() lsd.Epoch {
	return w.schedule.EpochAt(w.Now())
}

func (w *Wall) Offset() time.Duration {
	return time.Duration(w.offset.Load())
}

// Sync queries the NTP server and adopts its clock offset.
func (w *Wall) Sync(server string) error {
	resp, err := ntp.Query(server)
	if err != nil {
		return errors.Wrap(err, "query ntp")
	}
	w.offset.Store(int64(resp.ClockOffset))
	if resp.ClockOffset > w.schedule.Length/100 || -resp.ClockOffset > w.schedule.Length/100 {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	} else {
		logger.Debug("clock synced", "offset", common.PrettyDuration(resp.ClockOffset))
	}
	return nil
}

// Manual is a clock moved by hand.
type Manual struct {
	mu       sync.Mutex
	schedule Schedule
	now      time.Time
}

// NewManual returns a manual clock at the start of the epoch, with one hour
// epochs starting at the unix epoch.
func NewManual(epoch lsd.Epoch) *Manual {
	m := &Manual{schedule: Schedule{Genesis: time.Unix(0, 0), Length: time.Hour}}
	m.now = m.schedule.Start(epoch)
	return m
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Epoch() lsd.Epoch {
	return m.schedule.EpochAt(m.Now())
}

// Set moves the clock to the start of the epoch.
func (m *Manual) Set(epoch lsd.Epoch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.schedule.Start(epoch)
}

// Advance moves the clock forward by n epochs.
func (m *Manual) Advance(n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(time.Duration(n) * m.schedule.Length)
}
