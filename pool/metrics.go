// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/pool/pending"
)

var (
	metricPhaseSteps     = metrics.LazyLoadCounterVec("pool_phase_steps_count", []string{"phase", "outcome"})
	metricPhaseCompleted = metrics.LazyLoadCounterVec("pool_phase_completed_count", []string{"phase"})
	metricRateUpdates    = metrics.LazyLoadCounter("pool_exchange_rate_updates_count")
	metricRebalances     = metrics.LazyLoadCounterVec("pool_rebalance_count", []string{"direction", "outcome"})
	metricTotalSupply    = metrics.LazyLoadGauge("pool_total_supply_gauge")
	metricInFlight       = metrics.LazyLoadGaugeVec("pool_inflight_steps_gauge", []string{"step"})
)

// reportInFlight sets the gauge of the handle's slot, which holds at most one step.
func reportInFlight(h *pending.Handle, inflight bool) {
	var v int64
	if inflight {
		v = 1
	}
	metricInFlight().SetWithLabel(v, map[string]string{"step": h.Name()})
}

func reportSupply(supply *big.Int) {
	whole := lsd.FromWei(supply)
	if whole.IsInt64() {
		metricTotalSupply().Set(whole.Int64())
	}
}
