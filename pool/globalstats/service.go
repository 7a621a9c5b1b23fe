// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalstats

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/slot"
)

// Stats is a snapshot of the pool-wide scalars.
type Stats struct {
	Supply     *big.Int
	Delta      *big.Int
	Rate       *big.Int
	Scale      *big.Int
	Revenue    *big.Int
	ServiceFee uint64
	Owner      lsd.Address
}

// Service manages the pool-wide scalars: claim token supply, the signed
// unrebalanced delta, exchange rate, accrued revenue and the service fee.
type Service struct {
	initialized *slot.Value[bool]
	supply      *slot.Uint
	delta       *slot.Int
	rate        *slot.Uint
	scale       *slot.Uint
	revenue     *slot.Uint
	fee         *slot.Value[uint64]
	owner       *slot.Value[lsd.Address]
}

func New(sctx *slot.Context) *Service {
	return &Service{
		initialized: slot.NewValue[bool](sctx, slot.NameToPosition("initialized")),
		supply:      slot.NewUint(sctx, "total-supply"),
		delta:       slot.NewInt(sctx, "delta-stake"),
		rate:        slot.NewUint(sctx, "exchange-rate"),
		scale:       slot.NewUint(sctx, "exchange-rate-scale"),
		revenue:     slot.NewUint(sctx, "protocol-revenue"),
		fee:         slot.NewValue[uint64](sctx, slot.NameToPosition("service-fee")),
		owner:       slot.NewValue[lsd.Address](sctx, slot.NameToPosition("owner")),
	}
}

// Init sets up a fresh pool with a 1:1 exchange rate. It returns false and
// changes nothing if the pool was initialized before.
func (s *Service) Init(scale *big.Int, fee uint64, owner lsd.Address) (bool, error) {
	done, err := s.initialized.Get()
	if err != nil || done {
		return false, err
	}
	if scale.Sign() <= 0 {
		return false, errors.New("exchange rate scale must be positive")
	}
	if err := s.scale.Set(scale); err != nil {
		return false, err
	}
	if err := s.rate.Set(scale); err != nil {
		return false, err
	}
	if err := s.SetServiceFee(fee); err != nil {
		return false, err
	}
	if err := s.owner.Set(owner); err != nil {
		return false, err
	}
	return true, s.initialized.Set(true)
}

func (s *Service) Supply() (*big.Int, error)  { return s.supply.Get() }
func (s *Service) Delta() (*big.Int, error)   { return s.delta.Get() }
func (s *Service) Rate() (*big.Int, error)    { return s.rate.Get() }
func (s *Service) Scale() (*big.Int, error)   { return s.scale.Get() }
func (s *Service) Revenue() (*big.Int, error) { return s.revenue.Get() }

func (s *Service) ServiceFee() (uint64, error) { return s.fee.Get() }
func (s *Service) Owner() (lsd.Address, error) { return s.owner.Get() }

// Mint increases the claim token supply.
func (s *Service) Mint(amount *big.Int) error {
	return s.supply.Add(amount)
}

// Burn decreases the claim token supply.
func (s *Service) Burn(amount *big.Int) error {
	supply, err := s.supply.Get()
	if err != nil {
		return err
	}
	if supply.Cmp(amount) < 0 {
		return reverts.New("amount exceeds claim token supply")
	}
	return s.supply.Sub(amount)
}

// AddDelta moves the unrebalanced delta, positive for deposits.
func (s *Service) AddDelta(amount *big.Int) error {
	return s.delta.Add(amount)
}

func (s *Service) SetDelta(delta *big.Int) error {
	return s.delta.Set(delta)
}

func (s *Service) SetRate(rate *big.Int) error {
	return s.rate.Set(rate)
}

func (s *Service) AddRevenue(amount *big.Int) error {
	return s.revenue.Add(amount)
}

// TakeRevenue returns the accrued revenue and resets it to zero.
func (s *Service) TakeRevenue() (*big.Int, error) {
	revenue, err := s.revenue.Get()
	if err != nil {
		return nil, err
	}
	return revenue, s.revenue.Set(new(big.Int))
}

func (s *Service) SetServiceFee(fee uint64) error {
	if fee > lsd.FeeDenominator {
		return reverts.Newf("service fee exceeds %d parts per thousand", lsd.FeeDenominator)
	}
	return s.fee.Set(fee)
}

// Stats returns all scalars at once.
func (s *Service) Stats() (*Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.Supply, err = s.Supply(); err != nil {
		return nil, err
	}
	if st.Delta, err = s.Delta(); err != nil {
		return nil, err
	}
	if st.Rate, err = s.Rate(); err != nil {
		return nil, err
	}
	if st.Scale, err = s.Scale(); err != nil {
		return nil, err
	}
	if st.Revenue, err = s.Revenue(); err != nil {
		return nil, err
	}
	if st.ServiceFee, err = s.ServiceFee(); err != nil {
		return nil, err
	}
	if st.Owner, err = s.Owner(); err != nil {
		return nil, err
	}
	return &st, nil
}
