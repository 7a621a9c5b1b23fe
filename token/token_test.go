// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/slot"
)

func newLedger(t *testing.T) *Ledger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewLedger(slot.NewContext(db, nil))
}

func TestMintBurn(t *testing.T) {
	l := newLedger(t)
	alice, bob := lsd.Address{1}, lsd.Address{2}

	require.NoError(t, l.Mint(alice, big.NewInt(100)))
	require.NoError(t, l.Mint(bob, big.NewInt(50)))
	require.NoError(t, l.Burn(alice, big.NewInt(30)))

	err := l.Burn(bob, big.NewInt(51))
	assert.EqualError(t, err, "insufficient claim token balance")
	assert.True(t, reverts.IsRevertErr(err))

	bal, err := l.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(70), bal)

	supply, err := l.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(120), supply)

	require.NoError(t, l.Burn(bob, big.NewInt(50)))
	bal, err = l.BalanceOf(bob)
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())

	assert.Error(t, l.Mint(alice, big.NewInt(-1)))
}

func TestReceipts(t *testing.T) {
	l := newLedger(t)
	alice := lsd.Address{1}

	first, err := l.IssueReceipt(alice, big.NewInt(10), 3)
	require.NoError(t, err)
	second, err := l.IssueReceipt(alice, big.NewInt(20), 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.ID)
	assert.Equal(t, uint64(2), second.ID)

	got, err := l.Receipt(2)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(20), got.Amount)
	assert.Equal(t, lsd.Epoch(4), got.Epoch)
	assert.Equal(t, alice, got.Owner)

	_, err = l.Receipt(9)
	assert.EqualError(t, err, "receipt not found")

	redeemed, err := l.Redeem(1)
	require.NoError(t, err)
	assert.True(t, redeemed.Claimed)

	_, err = l.Redeem(1)
	assert.EqualError(t, err, "receipt already claimed")
}
