// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keeper

import (
	"context"
	"math/big"
	"time"

	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/health"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/pool/pending"
	"github.com/vechain/stakepool/pool/phase"
	"github.com/vechain/stakepool/pool/reverts"
)

var logger = log.WithContext("pkg", "keeper")

// maxStepsPerTick bounds the work of one tick when results arrive synchronously.
const maxStepsPerTick = 1024

// Engine is the part of the pool the keeper drives.
type Engine interface {
	Epoch() lsd.Epoch
	Record(epoch lsd.Epoch) (*phase.Record, error)
	Summary() (*pool.Summary, error)
	InFlight() ([]*pending.Handle, error)
	Advance(ph phase.Phase) (*pending.Handle, error)
	UpdateExchangeRate() (*big.Int, error)
	DistributeProtocolRevenue() (*big.Int, error)
	Rebalance() (*pending.Handle, error)
}

// Options configure a Keeper.
type Options struct {
	// Interval between ticks.
	Interval time.Duration
	// Clock is synced against NTPServer every ClockSyncInterval when set.
	Clock             *clock.Wall
	NTPServer         string
	ClockSyncInterval time.Duration
	// Health receives the outcome of every tick when set.
	Health *health.Health
}

// Keeper is the external trigger of the pool. Every tick it issues the next
// due action of the current epoch, one at a time: phases in order, then the
// exchange rate update, then revenue distribution and rebalancing.
type Keeper struct {
	engine Engine
	opts   Options
}

func New(engine Engine, opts Options) *Keeper {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.ClockSyncInterval <= 0 {
		opts.ClockSyncInterval = 10 * time.Minute
	}
	return &Keeper{engine: engine, opts: opts}
}

// Run ticks until ctx is done or a non-revert error occurs.
func (k *Keeper) Run(ctx context.Context) error {
	logger.Debug("enter keeper loop")
	ticker := time.NewTicker(k.opts.Interval)
	syncTicker := time.NewTicker(k.opts.ClockSyncInterval)
	defer func() {
		logger.Debug("leave keeper loop")
		ticker.Stop()
		syncTicker.Stop()
	}()

	k.syncClock()
	for {
		err := k.Tick()
		if k.opts.Health != nil {
			k.opts.Health.Tick(k.engine.Epoch(), err)
		}
		if err != nil {
			logger.Error("keeper stopped", "err", err)
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-syncTicker.C:
			k.syncClock()
		case <-ticker.C:
		}
	}
}

func (k *Keeper) syncClock() {
	if k.opts.Clock == nil || k.opts.NTPServer == "" {
		return
	}
	if err := k.opts.Clock.Sync(k.opts.NTPServer); err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if k.opts.Health != nil {
		k.opts.Health.ClockOffset(k.opts.Clock.Offset())
	}
}

// Tick performs steps until nothing is due or a step is awaiting its result.
func (k *Keeper) Tick() error {
	for range maxStepsPerTick {
		acted, err := k.Step()
		if err != nil || !acted {
			return err
		}
	}
	return nil
}

// Step performs the next due action. It reports false when nothing was done.
func (k *Keeper) Step() (bool, error) {
	inflight, err := k.engine.InFlight()
	if err != nil {
		return false, err
	}
	if len(inflight) > 0 {
		logger.Trace("waiting for step results", "count", len(inflight))
		return false, nil
	}

	epoch := k.engine.Epoch()
	rec, err := k.engine.Record(epoch)
	if err != nil {
		return false, err
	}
	for _, ph := range phase.All() {
		if rec.CheckBegin(ph) == nil {
			_, err := k.engine.Advance(ph)
			return k.outcome("advance "+ph.String(), err)
		}
	}
	if rec.CheckRateUpdate() == nil {
		_, err := k.engine.UpdateExchangeRate()
		return k.outcome("update exchange rate", err)
	}

	sum, err := k.engine.Summary()
	if err != nil {
		return false, err
	}
	if rec.RateUpdated && sum.Revenue.Sign() > 0 {
		_, err := k.engine.DistributeProtocolRevenue()
		// a skipped distribution does not hold back rebalancing
		if acted, err := k.outcome("distribute revenue", err); acted || err != nil {
			return acted, err
		}
	}
	if sum.Delta.Sign() != 0 {
		h, err := k.engine.Rebalance()
		if err == nil && h == nil {
			return false, nil
		}
		return k.outcome("rebalance", err)
	}
	return false, nil
}

func (k *Keeper) outcome(action string, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if reverts.IsRevertErr(err) {
		logger.Debug("action skipped", "action", action, "reason", err)
		return false, nil
	}
	return false, err
}
