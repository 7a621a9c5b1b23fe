// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/pool/phase"
	"github.com/vechain/stakepool/pool/registry"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/slot"
)

func setup(t *testing.T, n int) (*Service, *registry.Service) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sctx := slot.NewContext(db, nil)
	reg := registry.New(sctx)
	for i := 1; i <= n; i++ {
		require.NoError(t, reg.Add(lsd.Address{byte(i)}))
	}
	return New(sctx), reg
}

func TestAdvanceCycle(t *testing.T) {
	cur, reg := setup(t, 3)

	for round := 0; round < 2; round++ {
		for i := 1; i <= 3; i++ {
			v, pos, wrapped, err := cur.Advance(phase.StakeQuery, reg)
			require.NoError(t, err)
			assert.Equal(t, lsd.Address{byte(i)}, v)
			assert.Equal(t, uint64(i), pos)
			assert.Equal(t, i == 3, wrapped, "step %d", i)
		}
	}

	// other phases are independent
	pos, err := cur.Position(phase.Withdraw)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pos)
}

func TestAdvanceSingleValidator(t *testing.T) {
	cur, reg := setup(t, 1)
	v, pos, wrapped, err := cur.Advance(phase.Redelegate, reg)
	require.NoError(t, err)
	assert.Equal(t, lsd.Address{1}, v)
	assert.Equal(t, uint64(1), pos)
	assert.True(t, wrapped)
}

func TestAdvanceEmptyRegistry(t *testing.T) {
	cur, reg := setup(t, 0)
	_, _, _, err := cur.Advance(phase.Withdraw, reg)
	assert.EqualError(t, err, "registry is empty")
	assert.True(t, reverts.IsRevertErr(err))
}

func TestClamp(t *testing.T) {
	cur, reg := setup(t, 4)
	for i := 0; i < 3; i++ {
		_, _, _, err := cur.Advance(phase.RewardsQuery, reg)
		require.NoError(t, err)
	}
	pos, err := cur.Position(phase.RewardsQuery)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), pos)

	require.NoError(t, reg.Remove(lsd.Address{4}))
	require.NoError(t, reg.Remove(lsd.Address{3}))

	_, _, _, err = cur.Advance(phase.RewardsQuery, reg)
	assert.True(t, reverts.IsRevertErr(err))

	require.NoError(t, cur.Clamp(2))
	v, pos, wrapped, err := cur.Advance(phase.RewardsQuery, reg)
	require.NoError(t, err)
	assert.Equal(t, lsd.Address{2}, v)
	assert.Equal(t, uint64(2), pos)
	assert.True(t, wrapped)

	require.NoError(t, cur.Clamp(0))
	pos, err = cur.Position(phase.StakeQuery)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pos)
}

func TestReset(t *testing.T) {
	cur, reg := setup(t, 3)
	_, _, _, err := cur.Advance(phase.StakeQuery, reg)
	require.NoError(t, err)
	require.NoError(t, cur.Reset(phase.StakeQuery))
	pos, err := cur.Position(phase.StakeQuery)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pos)
}
