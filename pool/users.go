// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool/exchange"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/token"
)

// Deposit mints claim tokens for value at the current rate and records the
// value as awaiting delegation. Deposits into an empty pool mint at 1:1.
func (p *Pool) Deposit(account lsd.Address, value *big.Int) (*big.Int, error) {
	if value == nil || value.Sign() <= 0 {
		return nil, reverts.New("deposit value must be positive")
	}
	if account.IsZero() {
		return nil, reverts.New("account address is zero")
	}

	var (
		minted *big.Int
		supply *big.Int
	)
	err := p.invoke(func(s *state) error {
		rate, err := s.globals.Rate()
		if err != nil {
			return err
		}
		scale, err := s.globals.Scale()
		if err != nil {
			return err
		}
		current, err := s.globals.Supply()
		if err != nil {
			return err
		}
		// an empty pool mints 1:1
		if current.Sign() == 0 {
			rate = scale
		}
		minted = exchange.ClaimForDeposit(value, rate, scale)
		if minted.Sign() == 0 {
			return reverts.New("deposit too small")
		}
		if err := s.tokens.Mint(account, minted); err != nil {
			return err
		}
		if err := s.globals.Mint(minted); err != nil {
			return err
		}
		if err := s.globals.AddDelta(value); err != nil {
			return err
		}
		supply, err = s.globals.Supply()
		return err
	})
	if err != nil {
		return nil, err
	}

	reportSupply(supply)
	logger.Debug("deposit", "account", account, "value", value, "minted", minted)
	return minted, nil
}

// Unstake burns claim tokens and issues a withdrawal receipt for their base
// value, claimable after the current epoch.
func (p *Pool) Unstake(account lsd.Address, claim *big.Int) (*token.Receipt, error) {
	if claim == nil || claim.Sign() <= 0 {
		return nil, reverts.New("unstake amount must be positive")
	}
	epoch := p.clock.Epoch()

	var (
		receipt *token.Receipt
		supply  *big.Int
	)
	err := p.invoke(func(s *state) error {
		var err error
		if supply, err = s.globals.Supply(); err != nil {
			return err
		}
		if claim.Cmp(supply) > 0 {
			return reverts.New("unstake amount exceeds supply")
		}
		rate, err := s.globals.Rate()
		if err != nil {
			return err
		}
		scale, err := s.globals.Scale()
		if err != nil {
			return err
		}
		if err := s.tokens.Burn(account, claim); err != nil {
			return err
		}
		if err := s.globals.Burn(claim); err != nil {
			return err
		}
		base := exchange.BaseForClaim(claim, rate, scale)
		if err := s.globals.AddDelta(new(big.Int).Neg(base)); err != nil {
			return err
		}
		if receipt, err = s.tokens.IssueReceipt(account, base, epoch); err != nil {
			return err
		}
		supply, err = s.globals.Supply()
		return err
	})
	if err != nil {
		return nil, err
	}

	reportSupply(supply)
	logger.Debug("unstake", "account", account, "claim", claim, "receipt", receipt.ID, "amount", receipt.Amount)
	return receipt, nil
}

// Claim redeems a withdrawal receipt once its epoch has passed.
func (p *Pool) Claim(account lsd.Address, receiptID uint64) (*token.Receipt, error) {
	epoch := p.clock.Epoch()

	var receipt *token.Receipt
	err := p.invoke(func(s *state) error {
		r, err := s.tokens.Receipt(receiptID)
		if err != nil {
			return err
		}
		if r.Owner != account {
			return reverts.New("receipt not owned by account")
		}
		if epoch <= r.Epoch {
			return reverts.New("receipt not yet claimable")
		}
		receipt, err = s.tokens.Redeem(receiptID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("claim", "account", account, "receipt", receipt.ID, "amount", receipt.Amount)
	return receipt, nil
}
