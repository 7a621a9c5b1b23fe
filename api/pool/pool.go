// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/pool/phase"
)

type Pool struct {
	pool *pool.Pool
}

func New(p *pool.Pool) *Pool {
	return &Pool{pool: p}
}

func (p *Pool) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	sum, err := p.pool.Summary()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertSummary(sum))
}

func (p *Pool) parseEpoch(s string) (lsd.Epoch, error) {
	if s == "" || s == "current" {
		return p.pool.Epoch(), nil
	}
	n, err := utils.ParseUint(s, "epoch")
	if err != nil {
		return 0, err
	}
	return lsd.Epoch(n), nil
}

func (p *Pool) handleGetEpoch(w http.ResponseWriter, req *http.Request) error {
	epoch, err := p.parseEpoch(mux.Vars(req)["epoch"])
	if err != nil {
		return err
	}
	report, err := p.pool.EpochReport(epoch)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertEpochReport(report))
}

func (p *Pool) handleGetValidators(w http.ResponseWriter, _ *http.Request) error {
	validators, err := p.pool.Validators()
	if err != nil {
		return err
	}
	if validators == nil {
		validators = []lsd.Address{}
	}
	return utils.WriteJSON(w, validators)
}

func (p *Pool) handleGetStakes(w http.ResponseWriter, _ *http.Request) error {
	stakes, err := p.pool.Stakes()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertStakes(stakes))
}

func (p *Pool) handleGetInFlight(w http.ResponseWriter, _ *http.Request) error {
	handles, err := p.pool.InFlight()
	if err != nil {
		return err
	}
	steps := make([]*Step, 0, len(handles))
	for _, h := range handles {
		steps = append(steps, convertStep(h))
	}
	return utils.WriteJSON(w, steps)
}

func (p *Pool) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	account, err := utils.ParseAddress(mux.Vars(req)["address"], "address")
	if err != nil {
		return err
	}
	balance, err := p.pool.Balance(account)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{Account: account, Balance: hex256(balance)})
}

func (p *Pool) handleGetReceipt(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParseUint(mux.Vars(req)["id"], "id")
	if err != nil {
		return err
	}
	receipt, err := p.pool.Receipt(id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertReceipt(receipt))
}

func (p *Pool) handleAdvance(w http.ResponseWriter, req *http.Request) error {
	ph, err := phase.Parse(mux.Vars(req)["phase"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "phase"))
	}
	h, err := p.pool.Advance(ph)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertStep(h))
}

func (p *Pool) handleUpdateExchangeRate(w http.ResponseWriter, _ *http.Request) error {
	rate, err := p.pool.UpdateExchangeRate()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Amount{Amount: hex256(rate)})
}

func (p *Pool) handleDistributeRevenue(w http.ResponseWriter, _ *http.Request) error {
	minted, err := p.pool.DistributeProtocolRevenue()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Amount{Amount: hex256(minted)})
}

func (p *Pool) handleRebalance(w http.ResponseWriter, _ *http.Request) error {
	h, err := p.pool.Rebalance()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertStep(h))
}

func (p *Pool) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	var body Deposit
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	minted, err := p.pool.Deposit(body.Account, toBig(body.Value))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Amount{Amount: hex256(minted)})
}

func (p *Pool) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	var body Unstake
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := p.pool.Unstake(body.Account, toBig(body.Amount))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertReceipt(receipt))
}

func (p *Pool) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body Claim
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := p.pool.Claim(body.Account, body.Receipt)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertReceipt(receipt))
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("pool_get_summary").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetSummary))
	sub.Path("/epochs/{epoch}").
		Methods(http.MethodGet).
		Name("pool_get_epoch").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetEpoch))
	sub.Path("/validators").
		Methods(http.MethodGet).
		Name("pool_get_validators").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetValidators))
	sub.Path("/stakes").
		Methods(http.MethodGet).
		Name("pool_get_stakes").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetStakes))
	sub.Path("/inflight").
		Methods(http.MethodGet).
		Name("pool_get_inflight").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetInFlight))
	sub.Path("/accounts/{address}").
		Methods(http.MethodGet).
		Name("pool_get_balance").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetBalance))
	sub.Path("/receipts/{id}").
		Methods(http.MethodGet).
		Name("pool_get_receipt").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetReceipt))

	sub.Path("/phases/{phase}/advance").
		Methods(http.MethodPost).
		Name("pool_advance_phase").
		HandlerFunc(utils.WrapHandlerFunc(p.handleAdvance))
	sub.Path("/exchange-rate").
		Methods(http.MethodPost).
		Name("pool_update_exchange_rate").
		HandlerFunc(utils.WrapHandlerFunc(p.handleUpdateExchangeRate))
	sub.Path("/revenue/distribute").
		Methods(http.MethodPost).
		Name("pool_distribute_revenue").
		HandlerFunc(utils.WrapHandlerFunc(p.handleDistributeRevenue))
	sub.Path("/rebalance").
		Methods(http.MethodPost).
		Name("pool_rebalance").
		HandlerFunc(utils.WrapHandlerFunc(p.handleRebalance))

	sub.Path("/deposits").
		Methods(http.MethodPost).
		Name("pool_deposit").
		HandlerFunc(utils.WrapHandlerFunc(p.handleDeposit))
	sub.Path("/unstakes").
		Methods(http.MethodPost).
		Name("pool_unstake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleUnstake))
	sub.Path("/claims").
		Methods(http.MethodPost).
		Name("pool_claim").
		HandlerFunc(utils.WrapHandlerFunc(p.handleClaim))
}
