// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/transport/sim"
)

var (
	ts         *httptest.Server
	engine     *pool.Pool
	epochClock *clock.Manual

	validatorA = lsd.Address{0x0a}
	validatorB = lsd.Address{0x0b}
	alice      = lsd.Address{0xa1}
)

func TestPool(t *testing.T) {
	initPoolServer(t)
	defer ts.Close()

	t.Run("getSummary", testGetSummary)
	t.Run("getValidators", testGetValidators)
	t.Run("advanceBadPhase", testAdvanceBadPhase)
	t.Run("advanceOutOfOrder", testAdvanceOutOfOrder)
	t.Run("runEpoch", testRunEpoch)
	t.Run("depositUnstakeClaim", testDepositUnstakeClaim)
	t.Run("badBody", testBadBody)
	t.Run("badEpoch", testBadEpoch)
}

func initPoolServer(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	epochClock = clock.NewManual(1)
	net := sim.New(epochClock, []sim.ValidatorConfig{
		{Address: validatorA, Stake: big.NewInt(100), RewardPerEpoch: big.NewInt(10)},
		{Address: validatorB, Stake: big.NewInt(200), RewardPerEpoch: big.NewInt(10)},
	})
	engine, err = pool.New(db, net, epochClock, pool.Options{ServiceFee: 100, Owner: lsd.Address{0xee}})
	require.NoError(t, err)
	require.NoError(t, engine.AddValidator(validatorA))
	require.NoError(t, engine.AddValidator(validatorB))

	router := mux.NewRouter()
	New(engine).Mount(router, "/pool")
	ts = httptest.NewServer(router)
}

func testGetSummary(t *testing.T) {
	body, code := httpGet(t, ts.URL+"/pool")
	require.Equal(t, http.StatusOK, code)

	var sum Summary
	require.NoError(t, json.Unmarshal(body, &sum))
	assert.Equal(t, lsd.Epoch(1), sum.Epoch)
	assert.Equal(t, uint64(2), sum.Validators)
	assert.Equal(t, uint64(100), sum.ServiceFee)
	assert.Equal(t, "0", sum.Delta)
	assert.Equal(t, lsd.DefaultRateScale().String(), (*big.Int)(sum.Rate).String())
}

func testGetValidators(t *testing.T) {
	body, code := httpGet(t, ts.URL+"/pool/validators")
	require.Equal(t, http.StatusOK, code)

	var validators []lsd.Address
	require.NoError(t, json.Unmarshal(body, &validators))
	assert.Equal(t, []lsd.Address{validatorA, validatorB}, validators)
}

func testAdvanceBadPhase(t *testing.T) {
	body, code := httpPost(t, ts.URL+"/pool/phases/unknown/advance", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(body), "unknown phase")
}

func testAdvanceOutOfOrder(t *testing.T) {
	body, code := httpPost(t, ts.URL+"/pool/phases/stake-query/advance", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "must query rewards first", strings.TrimSpace(string(body)))

	body, code = httpPost(t, ts.URL+"/pool/exchange-rate", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "must query stake first", strings.TrimSpace(string(body)))
}

func testRunEpoch(t *testing.T) {
	for _, name := range []string{"rewards-query", "redelegate", "stake-query", "withdraw"} {
		for range 2 {
			body, code := httpPost(t, ts.URL+"/pool/phases/"+name+"/advance", nil)
			require.Equal(t, http.StatusOK, code, string(body))

			var step Step
			require.NoError(t, json.Unmarshal(body, &step))
			assert.Equal(t, name, step.Phase)
		}
	}

	body, code := httpGet(t, ts.URL+"/pool/epochs/current")
	require.Equal(t, http.StatusOK, code)
	var report EpochReport
	require.NoError(t, json.Unmarshal(body, &report))
	assert.True(t, report.Touched)
	for _, p := range report.Phases {
		assert.Equal(t, "finished", p.Status, p.Phase)
	}
	assert.Equal(t, "300", (*big.Int)(report.StakeTotal).String())

	body, code = httpPost(t, ts.URL+"/pool/exchange-rate", nil)
	require.Equal(t, http.StatusOK, code, string(body))

	body, code = httpGet(t, ts.URL+"/pool/stakes")
	require.Equal(t, http.StatusOK, code)
	var stakes []Stake
	require.NoError(t, json.Unmarshal(body, &stakes))
	require.Len(t, stakes, 2)
	assert.Equal(t, validatorA, stakes[0].Validator)

	body, code = httpGet(t, ts.URL+"/pool/inflight")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func testDepositUnstakeClaim(t *testing.T) {
	body, code := httpPost(t, ts.URL+"/pool/deposits", &Deposit{
		Account: alice,
		Value:   (*math.HexOrDecimal256)(big.NewInt(1000)),
	})
	require.Equal(t, http.StatusOK, code, string(body))
	var minted Amount
	require.NoError(t, json.Unmarshal(body, &minted))
	require.Positive(t, (*big.Int)(minted.Amount).Sign())

	body, code = httpGet(t, ts.URL+"/pool/accounts/"+alice.String())
	require.Equal(t, http.StatusOK, code)
	var balance Balance
	require.NoError(t, json.Unmarshal(body, &balance))
	assert.Equal(t, (*big.Int)(minted.Amount).String(), (*big.Int)(balance.Balance).String())

	body, code = httpPost(t, ts.URL+"/pool/unstakes", &Unstake{Account: alice, Amount: minted.Amount})
	require.Equal(t, http.StatusOK, code, string(body))
	var receipt Receipt
	require.NoError(t, json.Unmarshal(body, &receipt))
	assert.Equal(t, alice, receipt.Owner)
	assert.False(t, receipt.Claimed)

	body, code = httpPost(t, ts.URL+"/pool/claims", &Claim{Account: alice, Receipt: receipt.ID})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "receipt not yet claimable", strings.TrimSpace(string(body)))

	epochClock.Advance(1)
	body, code = httpPost(t, ts.URL+"/pool/claims", &Claim{Account: alice, Receipt: receipt.ID})
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, &receipt))
	assert.True(t, receipt.Claimed)

	body, code = httpGet(t, ts.URL+"/pool/receipts/"+"999")
	assert.Equal(t, http.StatusBadRequest, code, string(body))
}

func testBadBody(t *testing.T) {
	_, code := httpPost(t, ts.URL+"/pool/deposits", utils.M{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, code)
}

func testBadEpoch(t *testing.T) {
	_, code := httpGet(t, ts.URL+"/pool/epochs/abc")
	assert.Equal(t, http.StatusBadRequest, code)
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func httpPost(t *testing.T, url string, obj any) ([]byte, int) {
	var data []byte
	if obj != nil {
		var err error
		data, err = json.Marshal(obj)
		require.NoError(t, err)
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}
