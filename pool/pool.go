// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool/accumulator"
	"github.com/vechain/stakepool/pool/cursor"
	"github.com/vechain/stakepool/pool/globalstats"
	"github.com/vechain/stakepool/pool/pending"
	"github.com/vechain/stakepool/pool/phase"
	"github.com/vechain/stakepool/pool/rebalance"
	"github.com/vechain/stakepool/pool/registry"
	"github.com/vechain/stakepool/slot"
	"github.com/vechain/stakepool/token"
	"github.com/vechain/stakepool/transport"
)

var logger = log.WithContext("pkg", "pool")

func SetLogger(l log.Logger) {
	logger = l
}

// Options are the parameters of a fresh pool. They are ignored when the
// store already holds an initialized pool.
type Options struct {
	// Scale is the fixed-point denominator of the exchange rate, 10^18 when nil.
	Scale *big.Int
	// ServiceFee is the protocol cut of rewards in parts per thousand.
	ServiceFee uint64
	// Owner receives distributed protocol revenue.
	Owner lsd.Address
	// CacheSize is the number of storage entries kept in memory, 0 disables the cache.
	CacheSize int
}

// Pool is the reconciliation engine of the staking pool. It owns the
// validator registry, the phase cursors and trackers, the accumulators and
// the pool-wide scalars. Invocations are serialized and atomic: an invocation
// failing with an error leaves the stored state untouched.
type Pool struct {
	mu        sync.Mutex
	store     kv.Store
	cache     *cache.LRU
	transport transport.Transport
	clock     clock.Clock
}

// state binds the services to the staged writes of one invocation.
type state struct {
	sctx     *slot.Context
	registry *registry.Service
	cursors  *cursor.Service
	phases   *phase.Service
	acc      *accumulator.Service
	globals  *globalstats.Service
	pending  *pending.Service
	tokens   token.Issuer
}

// storeBucket prefixes every key the pool writes.
var storeBucket = kv.Bucket("pool/")

// New opens the pool kept in store, initializing it on first use.
func New(store kv.Store, tr transport.Transport, clk clock.Clock, opts Options) (*Pool, error) {
	p := &Pool{
		store:     storeBucket.NewStore(store),
		transport: tr,
		clock:     clk,
	}
	if opts.CacheSize > 0 {
		c, err := cache.NewLRU(opts.CacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "create storage cache")
		}
		p.cache = c
	}

	scale := opts.Scale
	if scale == nil {
		scale = lsd.DefaultRateScale()
	}
	err := p.invoke(func(s *state) error {
		fresh, err := s.globals.Init(scale, opts.ServiceFee, opts.Owner)
		if err != nil {
			return err
		}
		if fresh {
			logger.Info("pool initialized", "scale", scale, "fee", opts.ServiceFee, "owner", opts.Owner)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "initialize pool")
	}
	return p, nil
}

func (p *Pool) newState() *state {
	sctx := slot.NewContext(p.store, p.cache)
	return &state{
		sctx:     sctx,
		registry: registry.New(sctx),
		cursors:  cursor.New(sctx),
		phases:   phase.New(sctx),
		acc:      accumulator.New(sctx),
		globals:  globalstats.New(sctx),
		pending:  pending.New(sctx),
		tokens:   token.NewLedger(sctx),
	}
}

// invoke runs fn as one atomic invocation.
func (p *Pool) invoke(fn func(s *state) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.newState()
	if err := fn(s); err != nil {
		s.sctx.Revert()
		return err
	}
	if err := s.sctx.Commit(); err != nil {
		return errors.Wrap(err, "commit pool state")
	}
	return nil
}

// view runs fn against the committed state.
func (p *Pool) view(fn func(s *state) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p.newState())
}

// Epoch returns the current epoch.
func (p *Pool) Epoch() lsd.Epoch {
	return p.clock.Epoch()
}

// dispatch issues the outbound call of the handle. The transport resolves it
// through Resolve, possibly before dispatch returns.
func (p *Pool) dispatch(h *pending.Handle) {
	cb := func(r transport.Result) {
		if err := p.Resolve(h, r); err != nil {
			logger.Error("failed to resolve step", "step", h.Name(), "id", h.ID, "err", err)
		}
	}
	reportInFlight(h, true)
	switch h.Kind {
	case pending.KindPhase:
		switch h.Phase {
		case phase.StakeQuery:
			p.transport.QueryActiveStake(h.Validator, cb)
		case phase.RewardsQuery:
			p.transport.QueryClaimableRewards(h.Validator, cb)
		case phase.Withdraw:
			p.transport.RequestWithdraw(h.Validator, cb)
		case phase.Redelegate:
			p.transport.RequestRedelegateRewards(h.Validator, cb)
		}
	case pending.KindRebalance:
		if h.Direction == rebalance.Undelegate {
			p.transport.Undelegate(h.Validator, h.Amount, cb)
		} else {
			p.transport.Delegate(h.Validator, h.Amount, cb)
		}
	}
}

// Resolve folds the result of an outbound call into the pool. Failed calls
// count as zero contributions and still move their phase on.
func (p *Pool) Resolve(h *pending.Handle, r transport.Result) error {
	var (
		stored   *pending.Handle
		finished bool
	)
	if r.Succeeded() && r.Amount == nil {
		r.Amount = new(big.Int)
	}
	if r.Succeeded() && r.Amount.Sign() < 0 {
		logger.Warn("negative amount in result, counted as failure", "step", h.Name(), "validator", h.Validator, "amount", r.Amount)
		r = transport.Fail(errors.Errorf("negative amount %v", r.Amount))
	}
	err := p.invoke(func(s *state) (err error) {
		if stored, err = s.pending.Close(h); err != nil {
			return err
		}
		if stored.Kind == pending.KindRebalance {
			return p.resolveRebalance(s, stored, r)
		}
		finished, err = p.resolveStep(s, stored, r)
		return err
	})
	if err != nil {
		return err
	}
	reportInFlight(stored, false)

	outcome := "ok"
	if !r.Succeeded() {
		outcome = "failed"
	}
	if stored.Kind == pending.KindRebalance {
		metricRebalances().AddWithLabel(1, map[string]string{"direction": stored.Direction.String(), "outcome": outcome})
		return nil
	}
	metricPhaseSteps().AddWithLabel(1, map[string]string{"phase": stored.Phase.String(), "outcome": outcome})
	if finished {
		metricPhaseCompleted().AddWithLabel(1, map[string]string{"phase": stored.Phase.String()})
		logger.Info("phase finished", "phase", stored.Phase, "epoch", stored.Epoch)
	}
	return nil
}
