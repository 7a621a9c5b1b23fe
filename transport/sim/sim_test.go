// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/transport"
)

var (
	a = lsd.Address{0xa}
	b = lsd.Address{0xb}
)

func collect(results *[]transport.Result) transport.Callback {
	return func(r transport.Result) { *results = append(*results, r) }
}

func TestImmediate(t *testing.T) {
	clk := clock.NewManual(1)
	n := New(clk, []ValidatorConfig{
		{Address: a, Stake: big.NewInt(100), RewardPerEpoch: big.NewInt(5)},
	})

	var results []transport.Result
	n.QueryActiveStake(a, collect(&results))
	require.Len(t, results, 1)
	assert.True(t, results[0].Succeeded())
	assert.Equal(t, big.NewInt(100), results[0].Amount)

	clk.Advance(2)
	n.QueryClaimableRewards(a, collect(&results))
	assert.Equal(t, big.NewInt(10), results[1].Amount)

	n.RequestRedelegateRewards(a, collect(&results))
	assert.Equal(t, big.NewInt(110), n.Stake(a))

	n.Undelegate(a, big.NewInt(30), collect(&results))
	n.RequestWithdraw(a, collect(&results))
	assert.Equal(t, big.NewInt(30), results[4].Amount)
	assert.Equal(t, big.NewInt(80), n.Stake(a))

	n.Undelegate(a, big.NewInt(1000), collect(&results))
	assert.False(t, results[5].Succeeded())

	n.Delegate(lsd.Address{0xee}, big.NewInt(1), collect(&results))
	assert.False(t, results[6].Succeeded())
	assert.Equal(t, 7, n.Calls())
}

func TestDeferredAndFailures(t *testing.T) {
	clk := clock.NewManual(0)
	n := New(clk, []ValidatorConfig{
		{Address: a, Stake: big.NewInt(1)},
		{Address: b, Stake: big.NewInt(2)},
	}, Deferred(), Seed(1))

	n.FailNext(b, 1)

	var results []transport.Result
	n.QueryActiveStake(a, collect(&results))
	n.QueryActiveStake(b, collect(&results))
	n.QueryActiveStake(b, collect(&results))
	assert.Empty(t, results)
	assert.Equal(t, 3, n.Pending())

	assert.Equal(t, 1, n.Deliver(1))
	require.Len(t, results, 1)
	assert.Equal(t, big.NewInt(1), results[0].Amount)

	assert.Equal(t, 2, n.DeliverAll())
	require.Len(t, results, 3)
	assert.ErrorIs(t, results[1].Err, ErrUnreachable)
	assert.Equal(t, big.NewInt(2), results[2].Amount)
}

func TestFailureRate(t *testing.T) {
	n := New(clock.NewManual(0), []ValidatorConfig{{Address: a, FailureRate: 1}}, Seed(7))

	var results []transport.Result
	for i := 0; i < 5; i++ {
		n.QueryActiveStake(a, collect(&results))
	}
	for _, r := range results {
		assert.False(t, r.Succeeded())
	}
}
