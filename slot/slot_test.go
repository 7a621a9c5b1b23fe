// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/lvldb"
)

type TestStruct struct {
	Foo uint64
	Bar lsd.Address
}

func newTestContext(t *testing.T) (*Context, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	lru, err := cache.NewLRU(64)
	require.NoError(t, err)
	return NewContext(db, lru), db
}

func TestMapping(t *testing.T) {
	ctx, _ := newTestContext(t)
	m := NewMapping[lsd.Address, *TestStruct](ctx, NameToPosition("test"))

	key := lsd.Address{1}
	empty, err := m.Get(key)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Equal(t, uint64(0), empty.Foo)

	has, err := m.Has(key)
	require.NoError(t, err)
	assert.False(t, has)

	var value TestStruct
	fuzz.New().NilChance(0).Fuzz(&value)
	require.NoError(t, m.Set(key, &value))

	got, err := m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, &value, got)

	m.Delete(key)
	has, err = m.Has(key)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMappingPositionsAreIsolated(t *testing.T) {
	ctx, _ := newTestContext(t)
	a := NewMapping[lsd.Address, uint64](ctx, NameToPosition("a"))
	b := NewMapping[lsd.Address, uint64](ctx, NameToPosition("b"))

	require.NoError(t, a.Set(lsd.Address{1}, 7))
	got, err := b.Get(lsd.Address{1})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestCommitAndRevert(t *testing.T) {
	ctx, db := newTestContext(t)
	v := NewUint(ctx, "supply")

	require.NoError(t, v.Set(big.NewInt(100)))
	ctx.Revert()
	got, err := v.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, got.Sign())

	require.NoError(t, v.Set(big.NewInt(100)))
	assert.Equal(t, 1, ctx.Dirty())
	require.NoError(t, ctx.Commit())
	assert.Equal(t, 0, ctx.Dirty())

	// a fresh context over the same store sees committed data
	fresh := NewContext(db, nil)
	got, err = NewUint(fresh, "supply").Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), got)

	// staged writes are invisible to other contexts
	require.NoError(t, v.Add(big.NewInt(5)))
	got, err = NewUint(fresh, "supply").Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), got)
	got, err = v.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(105), got)
}

func TestUintRejectsNegative(t *testing.T) {
	ctx, _ := newTestContext(t)
	v := NewUint(ctx, "stake")

	require.NoError(t, v.Set(big.NewInt(3)))
	assert.EqualError(t, v.Sub(big.NewInt(4)), "stake cannot be negative")

	got, err := v.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), got)
}

func TestInt(t *testing.T) {
	ctx, _ := newTestContext(t)
	v := NewInt(ctx, "delta")

	got, err := v.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, got.Sign())

	require.NoError(t, v.Add(big.NewInt(-15)))
	got, err = v.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(-15), got)

	require.NoError(t, v.Add(big.NewInt(20)))
	require.NoError(t, ctx.Commit())
	got, err = v.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), got)
}

func TestArray(t *testing.T) {
	ctx, _ := newTestContext(t)
	arr := NewArray[lsd.Address](ctx, "validators")

	for i := byte(1); i <= 4; i++ {
		require.NoError(t, arr.Push(lsd.Address{i}))
	}
	n, err := arr.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)

	first, err := arr.Get(1)
	require.NoError(t, err)
	assert.Equal(t, lsd.Address{1}, first)

	_, err = arr.Get(0)
	assert.Error(t, err)
	_, err = arr.Get(5)
	assert.Error(t, err)

	require.NoError(t, arr.Remove(2))
	var seen []lsd.Address
	require.NoError(t, arr.Iter(func(_ uint64, v lsd.Address) bool {
		seen = append(seen, v)
		return true
	}))
	assert.Equal(t, []lsd.Address{{1}, {3}, {4}}, seen)

	require.NoError(t, arr.Set(3, lsd.Address{9}))
	last, err := arr.Get(3)
	require.NoError(t, err)
	assert.Equal(t, lsd.Address{9}, last)

	require.NoError(t, arr.Clear())
	n, err = arr.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}
