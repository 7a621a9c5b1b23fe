// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accumulator

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/slot"
)

func newService(t *testing.T) (*Service, *slot.Context, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sctx := slot.NewContext(db, nil)
	return New(sctx), sctx, db
}

func TestEpochTotals(t *testing.T) {
	acc, _, _ := newService(t)
	a, b := lsd.Address{1}, lsd.Address{2}

	total, err := acc.StakeTotal(1)
	require.NoError(t, err)
	assert.Equal(t, 0, total.Sign())

	require.NoError(t, acc.AddStake(1, a, big.NewInt(100)))
	require.NoError(t, acc.Touch(1))
	require.NoError(t, acc.AddStake(1, b, big.NewInt(50)))
	require.NoError(t, acc.AddRewards(1, big.NewInt(7)))
	require.NoError(t, acc.AddRewards(2, big.NewInt(3)))

	total, err = acc.StakeTotal(1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(150), total)

	rewards, err := acc.RewardsTotal(1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), rewards)

	totals, err := acc.Totals(2)
	require.NoError(t, err)
	assert.Equal(t, 0, totals.Stake.Sign())
	assert.Equal(t, big.NewInt(3), totals.Rewards)

	assert.Error(t, acc.AddStake(1, a, big.NewInt(-1)))
	assert.Error(t, acc.AddRewards(1, big.NewInt(-1)))
}

func TestLastKnownStake(t *testing.T) {
	acc, sctx, db := newService(t)
	a, b, c := lsd.Address{1}, lsd.Address{2}, lsd.Address{3}

	require.NoError(t, acc.AddStake(1, b, big.NewInt(30)))
	require.NoError(t, acc.AddStake(1, a, big.NewInt(10)))
	require.NoError(t, acc.AddStake(1, c, big.NewInt(20)))
	// a later observation overwrites without moving the validator
	require.NoError(t, acc.AddStake(2, b, big.NewInt(35)))
	require.NoError(t, sctx.Commit())

	stakes, err := New(slot.NewContext(db, nil)).Stakes()
	require.NoError(t, err)
	assert.Equal(t, []Stake{
		{b, big.NewInt(35)},
		{a, big.NewInt(10)},
		{c, big.NewInt(20)},
	}, stakes)

	amount, known, err := acc.ValidatorStake(a)
	require.NoError(t, err)
	assert.True(t, known)
	assert.Equal(t, big.NewInt(10), amount)

	require.NoError(t, acc.ForgetValidator(a))
	_, known, err = acc.ValidatorStake(a)
	require.NoError(t, err)
	assert.False(t, known)

	stakes, err = acc.Stakes()
	require.NoError(t, err)
	assert.Equal(t, []Stake{{b, big.NewInt(35)}, {c, big.NewInt(20)}}, stakes)

	// forgetting an unknown validator is a no-op
	require.NoError(t, acc.ForgetValidator(lsd.Address{9}))

	require.NoError(t, acc.ForgetValidator(b))
	require.NoError(t, acc.ForgetValidator(c))
	stakes, err = acc.Stakes()
	require.NoError(t, err)
	assert.Empty(t, stakes)

	require.NoError(t, acc.SetValidatorStake(a, big.NewInt(5)))
	stakes, err = acc.Stakes()
	require.NoError(t, err)
	assert.Equal(t, []Stake{{a, big.NewInt(5)}}, stakes)
}
