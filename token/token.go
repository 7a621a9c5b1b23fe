// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token is the claim token and pending-withdrawal receipt collaborator.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/slot"
)

// Receipt is a pending withdrawal, redeemable for Amount of the base asset
// once its epoch has passed.
type Receipt struct {
	ID      uint64      `json:"id"`
	Owner   lsd.Address `json:"owner"`
	Amount  *big.Int    `json:"amount"`
	Epoch   lsd.Epoch   `json:"epoch"`
	Claimed bool        `json:"claimed"`
}

// Issuer mints and burns claim tokens and issues withdrawal receipts.
type Issuer interface {
	Mint(to lsd.Address, amount *big.Int) error
	Burn(from lsd.Address, amount *big.Int) error
	BalanceOf(owner lsd.Address) (*big.Int, error)
	TotalSupply() (*big.Int, error)

	IssueReceipt(owner lsd.Address, amount *big.Int, epoch lsd.Epoch) (*Receipt, error)
	Receipt(id uint64) (*Receipt, error)
	Redeem(id uint64) (*Receipt, error)
}

type receiptID uint64

func (id receiptID) Bytes() []byte {
	return lsd.Epoch(id).Bytes()
}

var (
	slotBalances = slot.NameToPosition("token-balances")
	slotReceipts = slot.NameToPosition("token-receipts")
)

// Ledger is an Issuer kept in the pool's own storage, so token movements
// commit or revert together with the pool state.
type Ledger struct {
	balances *slot.Mapping[lsd.Address, *big.Int]
	supply   *slot.Uint
	receipts *slot.Mapping[receiptID, *Receipt]
	lastID   *slot.Value[uint64]
}

var _ Issuer = (*Ledger)(nil)

func NewLedger(sctx *slot.Context) *Ledger {
	return &Ledger{
		balances: slot.NewMapping[lsd.Address, *big.Int](sctx, slotBalances),
		supply:   slot.NewUint(sctx, "token-supply"),
		receipts: slot.NewMapping[receiptID, *Receipt](sctx, slotReceipts),
		lastID:   slot.NewValue[uint64](sctx, slot.NameToPosition("token-receipt-id")),
	}
}

func (l *Ledger) BalanceOf(owner lsd.Address) (*big.Int, error) {
	bal, err := l.balances.Get(owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return bal, nil
}

func (l *Ledger) TotalSupply() (*big.Int, error) {
	return l.supply.Get()
}

func (l *Ledger) Mint(to lsd.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("mint amount cannot be negative")
	}
	bal, err := l.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := l.balances.Set(to, bal.Add(bal, amount)); err != nil {
		return err
	}
	return l.supply.Add(amount)
}

func (l *Ledger) Burn(from lsd.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("burn amount cannot be negative")
	}
	bal, err := l.BalanceOf(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.New("insufficient claim token balance")
	}
	bal.Sub(bal, amount)
	if bal.Sign() == 0 {
		l.balances.Delete(from)
	} else if err := l.balances.Set(from, bal); err != nil {
		return err
	}
	return l.supply.Sub(amount)
}

func (l *Ledger) IssueReceipt(owner lsd.Address, amount *big.Int, epoch lsd.Epoch) (*Receipt, error) {
	id, err := l.lastID.Get()
	if err != nil {
		return nil, err
	}
	id++
	r := &Receipt{ID: id, Owner: owner, Amount: new(big.Int).Set(amount), Epoch: epoch}
	if err := l.receipts.Set(receiptID(id), r); err != nil {
		return nil, errors.Wrap(err, "failed to set receipt")
	}
	return r, l.lastID.Set(id)
}

func (l *Ledger) Receipt(id uint64) (*Receipt, error) {
	has, err := l.receipts.Has(receiptID(id))
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, reverts.New("receipt not found")
	}
	return l.receipts.Get(receiptID(id))
}

func (l *Ledger) Redeem(id uint64) (*Receipt, error) {
	r, err := l.Receipt(id)
	if err != nil {
		return nil, err
	}
	if r.Claimed {
		return nil, reverts.New("receipt already claimed")
	}
	r.Claimed = true
	if err := l.receipts.Set(receiptID(id), r); err != nil {
		return nil, errors.Wrap(err, "failed to set receipt")
	}
	return r, nil
}
