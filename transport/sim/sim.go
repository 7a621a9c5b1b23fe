// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sim is an in-memory transport backed by simulated validators.
package sim

import (
	"math/big"
	"math/rand/v2"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/transport"
)

var logger = log.WithContext("pkg", "sim")

// ErrUnreachable is returned by validators that fail a call.
var ErrUnreachable = errors.New("validator unreachable")

// ValidatorConfig seeds a simulated validator.
type ValidatorConfig struct {
	Address lsd.Address
	// Stake is the pool's initial active stake at the validator.
	Stake *big.Int
	// RewardPerEpoch accrues to the pool's claimable rewards every epoch.
	RewardPerEpoch *big.Int
	// FailureRate in [0, 1] is the probability a call fails.
	FailureRate float64
}

type validator struct {
	cfg       ValidatorConfig
	stake     *big.Int
	rewards   *big.Int
	withdrawn *big.Int
	lastEpoch lsd.Epoch
	failNext  int
}

type call struct {
	cb     transport.Callback
	result transport.Result
}

// Network simulates the validators. Calls resolve immediately unless the
// network is deferred, in which case they queue until delivered.
type Network struct {
	mu         sync.Mutex
	clock      clock.Clock
	validators map[lsd.Address]*validator
	deferred   bool
	queue      []call
	rand       *rand.Rand
	calls      int
}

var _ transport.Transport = (*Network)(nil)

// Option configures a Network.
type Option func(*Network)

// Deferred queues results until Deliver is called.
func Deferred() Option {
	return func(n *Network) { n.deferred = true }
}

// Seed makes failure injection deterministic.
func Seed(seed uint64) Option {
	return func(n *Network) { n.rand = rand.New(rand.NewPCG(seed, seed)) }
}

func New(clk clock.Clock, validators []ValidatorConfig, opts ...Option) *Network {
	n := &Network{
		clock:      clk,
		validators: make(map[lsd.Address]*validator, len(validators)),
		rand:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(n)
	}
	for _, cfg := range validators {
		n.Add(cfg)
	}
	return n
}

// Add registers a simulated validator, replacing any previous one.
func (n *Network) Add(cfg ValidatorConfig) {
	n.mu.Lock()
	defer n.mu.Unlock()

	v := &validator{
		cfg:       cfg,
		stake:     new(big.Int),
		rewards:   new(big.Int),
		withdrawn: new(big.Int),
		lastEpoch: n.clock.Epoch(),
	}
	if cfg.Stake != nil {
		v.stake.Set(cfg.Stake)
	}
	if v.cfg.RewardPerEpoch == nil {
		v.cfg.RewardPerEpoch = new(big.Int)
	}
	n.validators[cfg.Address] = v
}

// FailNext makes the next count calls to the validator fail.
func (n *Network) FailNext(addr lsd.Address, count int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if v, ok := n.validators[addr]; ok {
		v.failNext += count
	}
}

// Stake returns the pool's active stake at the validator.
func (n *Network) Stake(addr lsd.Address) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	if v, ok := n.validators[addr]; ok {
		n.accrue(v)
		return new(big.Int).Set(v.stake)
	}
	return new(big.Int)
}

// Pending returns the number of queued results.
func (n *Network) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.queue)
}

// Calls returns the number of calls issued so far.
func (n *Network) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

// Deliver resolves up to max queued calls in issue order and returns how many
// were delivered.
func (n *Network) Deliver(max int) int {
	n.mu.Lock()
	if max > len(n.queue) || max < 0 {
		max = len(n.queue)
	}
	batch := n.queue[:max:max]
	n.queue = n.queue[max:]
	n.mu.Unlock()

	for _, c := range batch {
		c.cb(c.result)
	}
	return len(batch)
}

// DeliverAll resolves queued calls until none is left, including calls
// issued by callbacks.
func (n *Network) DeliverAll() int {
	total := 0
	for {
		d := n.Deliver(-1)
		if d == 0 {
			return total
		}
		total += d
	}
}

func (n *Network) accrue(v *validator) {
	epoch := n.clock.Epoch()
	if epoch <= v.lastEpoch {
		return
	}
	elapsed := new(big.Int).SetUint64(uint64(epoch - v.lastEpoch))
	v.rewards.Add(v.rewards, elapsed.Mul(elapsed, v.cfg.RewardPerEpoch))
	v.lastEpoch = epoch
}

// do runs op against the validator under the lock and then resolves cb.
func (n *Network) do(addr lsd.Address, name string, cb transport.Callback, op func(v *validator) (*big.Int, error)) {
	n.mu.Lock()
	n.calls++
	var result transport.Result
	v, ok := n.validators[addr]
	switch {
	case !ok:
		result = transport.Fail(errors.Errorf("unknown validator %v", addr))
	case v.failNext > 0:
		v.failNext--
		result = transport.Fail(ErrUnreachable)
	case v.cfg.FailureRate > 0 && n.rand.Float64() < v.cfg.FailureRate:
		result = transport.Fail(ErrUnreachable)
	default:
		n.accrue(v)
		amount, err := op(v)
		if err != nil {
			result = transport.Fail(err)
		} else {
			result = transport.Ok(amount)
		}
	}
	logger.Trace("simulated call", "call", name, "validator", addr, "err", result.Err)

	if n.deferred {
		n.queue = append(n.queue, call{cb: cb, result: result})
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()
	cb(result)
}

func (n *Network) QueryActiveStake(addr lsd.Address, cb transport.Callback) {
	n.do(addr, "query-stake", cb, func(v *validator) (*big.Int, error) {
		return new(big.Int).Set(v.stake), nil
	})
}

func (n *Network) QueryClaimableRewards(addr lsd.Address, cb transport.Callback) {
	n.do(addr, "query-rewards", cb, func(v *validator) (*big.Int, error) {
		return new(big.Int).Set(v.rewards), nil
	})
}

func (n *Network) RequestWithdraw(addr lsd.Address, cb transport.Callback) {
	n.do(addr, "withdraw", cb, func(v *validator) (*big.Int, error) {
		amount := new(big.Int).Set(v.withdrawn)
		v.withdrawn.SetInt64(0)
		return amount, nil
	})
}

func (n *Network) RequestRedelegateRewards(addr lsd.Address, cb transport.Callback) {
	n.do(addr, "redelegate", cb, func(v *validator) (*big.Int, error) {
		amount := new(big.Int).Set(v.rewards)
		v.stake.Add(v.stake, v.rewards)
		v.rewards.SetInt64(0)
		return amount, nil
	})
}

func (n *Network) Delegate(addr lsd.Address, amount *big.Int, cb transport.Callback) {
	n.do(addr, "delegate", cb, func(v *validator) (*big.Int, error) {
		v.stake.Add(v.stake, amount)
		return new(big.Int), nil
	})
}

func (n *Network) Undelegate(addr lsd.Address, amount *big.Int, cb transport.Callback) {
	n.do(addr, "undelegate", cb, func(v *validator) (*big.Int, error) {
		if v.stake.Cmp(amount) < 0 {
			return nil, errors.New("insufficient active stake")
		}
		v.stake.Sub(v.stake, amount)
		v.withdrawn.Add(v.withdrawn, amount)
		return new(big.Int), nil
	})
}
