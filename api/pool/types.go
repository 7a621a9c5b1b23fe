// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/pool/accumulator"
	"github.com/vechain/stakepool/pool/pending"
	"github.com/vechain/stakepool/token"
)

func hex256(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

func toBig(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return nil
	}
	return (*big.Int)(v)
}

type Summary struct {
	Epoch       lsd.Epoch             `json:"epoch"`
	Supply      *math.HexOrDecimal256 `json:"supply"`
	Delta       string                `json:"delta"`
	Rate        *math.HexOrDecimal256 `json:"rate"`
	Scale       *math.HexOrDecimal256 `json:"scale"`
	Revenue     *math.HexOrDecimal256 `json:"revenue"`
	ServiceFee  uint64                `json:"serviceFee"`
	Owner       lsd.Address           `json:"owner"`
	Validators  uint64                `json:"validators"`
	InFlight    int                   `json:"inFlight"`
	TokenSupply *math.HexOrDecimal256 `json:"tokenSupply"`
}

func convertSummary(s *pool.Summary) *Summary {
	return &Summary{
		Epoch:       s.Epoch,
		Supply:      hex256(s.Supply),
		Delta:       s.Delta.String(),
		Rate:        hex256(s.Rate),
		Scale:       hex256(s.Scale),
		Revenue:     hex256(s.Revenue),
		ServiceFee:  s.ServiceFee,
		Owner:       s.Owner,
		Validators:  s.Validators,
		InFlight:    s.InFlight,
		TokenSupply: hex256(s.TokenSupply),
	}
}

type PhaseReport struct {
	Phase    string `json:"phase"`
	Status   string `json:"status"`
	Size     uint64 `json:"size"`
	Position uint64 `json:"position"`
}

type EpochReport struct {
	Epoch          lsd.Epoch             `json:"epoch"`
	Touched        bool                  `json:"touched"`
	Phases         []PhaseReport         `json:"phases"`
	RateUpdated    bool                  `json:"rateUpdated"`
	RevenueAccrued bool                  `json:"revenueAccrued"`
	StakeTotal     *math.HexOrDecimal256 `json:"stakeTotal"`
	RewardsTotal   *math.HexOrDecimal256 `json:"rewardsTotal"`
}

func convertEpochReport(r *pool.EpochReport) *EpochReport {
	phases := make([]PhaseReport, 0, len(r.Phases))
	for _, p := range r.Phases {
		phases = append(phases, PhaseReport{
			Phase:    p.Phase.String(),
			Status:   p.Status.String(),
			Size:     p.Size,
			Position: p.Position,
		})
	}
	return &EpochReport{
		Epoch:          r.Epoch,
		Touched:        r.Touched,
		Phases:         phases,
		RateUpdated:    r.RateUpdated,
		RevenueAccrued: r.RevenueAccrued,
		StakeTotal:     hex256(r.StakeTotal),
		RewardsTotal:   hex256(r.RewardsTotal),
	}
}

type Stake struct {
	Validator lsd.Address           `json:"validator"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}

func convertStakes(stakes []accumulator.Stake) []Stake {
	out := make([]Stake, 0, len(stakes))
	for _, s := range stakes {
		out = append(out, Stake{Validator: s.Validator, Amount: hex256(s.Amount)})
	}
	return out
}

// Step is an issued outbound step; a nil step means nothing was issued.
type Step struct {
	ID        string                `json:"id"`
	Kind      string                `json:"kind"`
	Phase     string                `json:"phase,omitempty"`
	Epoch     lsd.Epoch             `json:"epoch"`
	Validator lsd.Address           `json:"validator"`
	Position  uint64                `json:"position,omitempty"`
	Wrapped   bool                  `json:"wrapped"`
	Direction string                `json:"direction,omitempty"`
	Amount    *math.HexOrDecimal256 `json:"amount,omitempty"`
}

func convertStep(h *pending.Handle) *Step {
	if h == nil {
		return nil
	}
	s := &Step{
		ID:        h.ID,
		Kind:      h.Kind.String(),
		Epoch:     h.Epoch,
		Validator: h.Validator,
		Wrapped:   h.Wrapped,
	}
	if h.Kind == pending.KindPhase {
		s.Phase = h.Phase.String()
		s.Position = h.Position
	} else {
		s.Direction = h.Direction.String()
		s.Amount = hex256(h.Amount)
	}
	return s
}

type Receipt struct {
	ID      uint64                `json:"id"`
	Owner   lsd.Address           `json:"owner"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
	Epoch   lsd.Epoch             `json:"epoch"`
	Claimed bool                  `json:"claimed"`
}

func convertReceipt(r *token.Receipt) *Receipt {
	return &Receipt{
		ID:      r.ID,
		Owner:   r.Owner,
		Amount:  hex256(r.Amount),
		Epoch:   r.Epoch,
		Claimed: r.Claimed,
	}
}

type Deposit struct {
	Account lsd.Address           `json:"account"`
	Value   *math.HexOrDecimal256 `json:"value"`
}

type Unstake struct {
	Account lsd.Address           `json:"account"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

type Claim struct {
	Account lsd.Address `json:"account"`
	Receipt uint64      `json:"receipt"`
}

// Amount wraps a single value result.
type Amount struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type Balance struct {
	Account lsd.Address           `json:"account"`
	Balance *math.HexOrDecimal256 `json:"balance"`
}
