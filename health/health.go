// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"

	"github.com/vechain/stakepool/lsd"
)

type KeeperProgress struct {
	LastTick      *time.Time `json:"lastTick"`
	LastEpoch     lsd.Epoch  `json:"lastEpoch"`
	LastError     string     `json:"lastError,omitempty"`
	TickInterval  string     `json:"tickInterval"`
	ClockOffsetMs int64      `json:"clockOffsetMs"`
}

type Status struct {
	Healthy bool            `json:"healthy"`
	Keeper  *KeeperProgress `json:"keeper"`
}

// Health tracks the liveness of the keeper loop. The node is healthy while
// ticks keep arriving within twice the tick interval and the last one succeeded.
type Health struct {
	lock         sync.RWMutex
	tickInterval time.Duration
	lastTick     time.Time
	lastEpoch    lsd.Epoch
	lastErr      error
	clockOffset  time.Duration
}

func New(tickInterval time.Duration) *Health {
	return &Health{tickInterval: tickInterval}
}

// Tick records the outcome of a keeper tick.
func (h *Health) Tick(epoch lsd.Epoch, err error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastTick = time.Now()
	h.lastEpoch = epoch
	h.lastErr = err
}

// ClockOffset records the latest NTP correction of the epoch clock.
func (h *Health) ClockOffset(offset time.Duration) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.clockOffset = offset
}

func (h *Health) Status() *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	progress := &KeeperProgress{
		LastEpoch:     h.lastEpoch,
		TickInterval:  h.tickInterval.String(),
		ClockOffsetMs: h.clockOffset.Milliseconds(),
	}
	if !h.lastTick.IsZero() {
		t := h.lastTick
		progress.LastTick = &t
	}
	if h.lastErr != nil {
		progress.LastError = h.lastErr.Error()
	}

	healthy := !h.lastTick.IsZero() &&
		time.Since(h.lastTick) <= 2*h.tickInterval &&
		h.lastErr == nil

	return &Status{
		Healthy: healthy,
		Keeper:  progress,
	}
}
