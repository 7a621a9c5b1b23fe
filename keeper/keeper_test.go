// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keeper

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/health"
	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/pool/phase"
	"github.com/vechain/stakepool/transport/sim"
)

var (
	validatorA = lsd.Address{0x0a}
	validatorB = lsd.Address{0x0b}
	alice      = lsd.Address{0xa1}
)

func newPool(t *testing.T, opts ...sim.Option) (*pool.Pool, *sim.Network, *clock.Manual) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clk := clock.NewManual(1)
	net := sim.New(clk, []sim.ValidatorConfig{
		{Address: validatorA, Stake: big.NewInt(100), RewardPerEpoch: big.NewInt(10)},
		{Address: validatorB, Stake: big.NewInt(300), RewardPerEpoch: big.NewInt(10)},
	}, opts...)
	p, err := pool.New(db, net, clk, pool.Options{ServiceFee: 100, Owner: lsd.Address{0xee}})
	require.NoError(t, err)
	require.NoError(t, p.AddValidator(validatorA))
	require.NoError(t, p.AddValidator(validatorB))
	return p, net, clk
}

func TestTickRunsWholeEpoch(t *testing.T) {
	p, net, clk := newPool(t)
	_, err := p.Deposit(alice, big.NewInt(400))
	require.NoError(t, err)

	clk.Advance(1)
	k := New(p, Options{})
	require.NoError(t, k.Tick())

	rec, err := p.Record(clk.Epoch())
	require.NoError(t, err)
	for _, ph := range phase.All() {
		assert.Equal(t, phase.Finished, rec.Status(ph), "phase %s", ph)
	}
	assert.True(t, rec.RateUpdated)
	assert.True(t, rec.RevenueAccrued)

	sum, err := p.Summary()
	require.NoError(t, err)
	assert.Zero(t, sum.Revenue.Sign())
	assert.Zero(t, sum.Delta.Sign())
	// rewards redelegated, then the deposit delegated to the smaller stake
	assert.Equal(t, "510", net.Stake(validatorA).String())

	// nothing left to do this epoch
	acted, err := k.Step()
	require.NoError(t, err)
	assert.False(t, acted)
}

func TestStepWaitsForResults(t *testing.T) {
	p, net, _ := newPool(t, sim.Deferred())
	k := New(p, Options{})

	acted, err := k.Step()
	require.NoError(t, err)
	assert.True(t, acted)

	acted, err = k.Step()
	require.NoError(t, err)
	assert.False(t, acted)
	assert.Equal(t, 1, net.Pending())

	net.DeliverAll()
	acted, err = k.Step()
	require.NoError(t, err)
	assert.True(t, acted)
}

func TestRunStopsOnCancel(t *testing.T) {
	p, _, _ := newPool(t)
	h := health.New(time.Second)
	k := New(p, Options{Interval: time.Millisecond, Health: h})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- k.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.True(t, h.Status().Healthy)
		assert.Equal(t, lsd.Epoch(1), h.Status().Keeper.LastEpoch)
	case <-time.After(5 * time.Second):
		t.Fatal("keeper did not stop")
	}
}
