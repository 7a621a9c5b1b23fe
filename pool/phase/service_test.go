// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/slot"
)

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(slot.NewContext(db, nil))
}

func TestPhaseNames(t *testing.T) {
	for _, p := range All() {
		parsed, err := Parse(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, parsed)
	}
	_, err := Parse("bogus")
	assert.Error(t, err)
	assert.Equal(t, "unknown", Phase(9).String())

	text, err := Redelegate.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "redelegate", string(text))
}

func TestBeginOrdering(t *testing.T) {
	svc := newService(t)
	epoch := lsd.Epoch(3)

	_, err := svc.Begin(epoch, Redelegate, 2)
	assert.EqualError(t, err, "must query rewards first")
	assert.True(t, reverts.IsRevertErr(err))

	_, err = svc.Begin(epoch, StakeQuery, 2)
	assert.EqualError(t, err, "must query rewards first")

	first, err := svc.Begin(epoch, RewardsQuery, 2)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = svc.Begin(epoch, RewardsQuery, 2)
	require.NoError(t, err)
	assert.False(t, first)

	require.NoError(t, svc.Finish(epoch, RewardsQuery))
	_, err = svc.Begin(epoch, RewardsQuery, 2)
	assert.EqualError(t, err, "rewards-query already completed this epoch")

	_, err = svc.Begin(epoch, StakeQuery, 2)
	assert.EqualError(t, err, "must redelegate rewards first")

	_, err = svc.Begin(epoch, Redelegate, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Finish(epoch, Redelegate))

	first, err = svc.Begin(epoch, StakeQuery, 2)
	require.NoError(t, err)
	assert.True(t, first)

	// withdraw has no precondition
	first, err = svc.Begin(lsd.Epoch(4), Withdraw, 1)
	require.NoError(t, err)
	assert.True(t, first)

	rec, err := svc.Get(epoch)
	require.NoError(t, err)
	assert.Equal(t, Finished, rec.Status(RewardsQuery))
	assert.Equal(t, Started, rec.Status(StakeQuery))
	assert.Equal(t, NotStarted, rec.Status(Withdraw))
	assert.Equal(t, uint64(2), rec.Size[StakeQuery])
}

func TestFinishRequiresStart(t *testing.T) {
	svc := newService(t)
	assert.Error(t, svc.Finish(1, Withdraw))
}

func TestRateUpdateOncePerEpoch(t *testing.T) {
	svc := newService(t)
	epoch := lsd.Epoch(1)

	assert.EqualError(t, svc.MarkRateUpdated(epoch), "must query stake first")

	for _, p := range All() {
		_, err := svc.Begin(epoch, p, 1)
		require.NoError(t, err)
		require.NoError(t, svc.Finish(epoch, p))
	}

	require.NoError(t, svc.MarkRateUpdated(epoch))
	before, err := svc.Get(epoch)
	require.NoError(t, err)

	err = svc.MarkRateUpdated(epoch)
	assert.EqualError(t, err, "exchange rate already updated this epoch")
	assert.True(t, reverts.IsRevertErr(err))

	after, err := svc.Get(epoch)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRateUpdatePreconditions(t *testing.T) {
	tests := []struct {
		name     string
		finished []Phase
		want     string
	}{
		{"nothing", nil, "must query stake first"},
		{"stake only", []Phase{StakeQuery}, "must query rewards first"},
		{"no withdraw", []Phase{StakeQuery, RewardsQuery, Redelegate}, "must withdraw first"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Record{}
			for _, p := range tt.finished {
				rec.Started[p] = true
				rec.Finished[p] = true
			}
			assert.EqualError(t, rec.CheckRateUpdate(), tt.want)
		})
	}
}

func TestRevenueAccruedOnce(t *testing.T) {
	svc := newService(t)

	ok, err := svc.MarkRevenueAccrued(5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.MarkRevenueAccrued(5)
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := svc.Exists(6)
	require.NoError(t, err)
	assert.False(t, exists)
}
