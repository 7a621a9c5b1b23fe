// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/health"
	"github.com/vechain/stakepool/keeper"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/transport/sim"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "stakepool",
		Usage:     "Reconciliation engine of a liquid staking pool",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			persistFlag,
			apiAddrFlag,
			apiCorsFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			keeperIntervalFlag,
			epochLengthFlag,
			genesisTimeFlag,
			ntpServerFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "report",
				Usage: "print the pool summary and an epoch report as JSON",
				Flags: []cli.Flag{
					configFlag,
					dataDirFlag,
					epochLengthFlag,
					genesisTimeFlag,
					epochFlag,
					verbosityFlag,
				},
				Action: reportAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSettings reads the config file and applies the flag overrides.
func loadSettings(ctx *cli.Context) (*settings, error) {
	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return nil, err
	}
	s, err := cfg.settings()
	if err != nil {
		return nil, err
	}
	if length := ctx.Duration(epochLengthFlag.Name); length > 0 {
		s.schedule.Length = length
	}
	if genesis := ctx.String(genesisTimeFlag.Name); genesis != "" {
		t, err := time.Parse(time.RFC3339, genesis)
		if err != nil {
			return nil, errors.Wrap(err, genesisTimeFlag.Name)
		}
		s.schedule.Genesis = t
	}
	return s, nil
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	initLogger(ctx)
	s, err := loadSettings(ctx)
	if err != nil {
		return err
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	db, dbPath, err := openDB(ctx, ctx.Bool(persistFlag.Name), false)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing pool database..."); db.Close() }()

	wall, err := clock.NewWall(s.schedule)
	if err != nil {
		return err
	}
	network := sim.New(wall, s.validators)
	p, err := pool.New(db, network, wall, pool.Options{
		Scale:      s.scale,
		ServiceFee: s.serviceFee,
		Owner:      s.owner,
		CacheSize:  s.cacheSize,
	})
	if err != nil {
		return err
	}
	addrs := make([]lsd.Address, 0, len(s.validators))
	for _, v := range s.validators {
		addrs = append(addrs, v.Address)
	}
	if err := seedValidators(p, addrs); err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(exitSignal)
	interval := ctx.Duration(keeperIntervalFlag.Name)
	var keeperHealth *health.Health
	if interval > 0 {
		keeperHealth = health.New(interval)
	}

	reqLogs := &atomic.Bool{}
	reqLogs.Store(ctx.Bool(enableAPILogsFlag.Name))
	apiURL, serveAPI, err := serveHTTP(groupCtx, ctx.String(apiAddrFlag.Name), api.New(p, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableReqLogger:      reqLogs,
		SlowQueriesThreshold: ctx.Duration(apiSlowQueriesThresholdFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		Health:               keeperHealth,
	}))
	if err != nil {
		return err
	}
	group.Go(serveAPI)

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		router := mux.NewRouter()
		router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
		url, serveMetrics, err := serveHTTP(groupCtx, ctx.String(metricsAddrFlag.Name), handlers.CompressHandler(router))
		if err != nil {
			return err
		}
		metricsURL = url + "/metrics"
		group.Go(serveMetrics)
	}

	if interval > 0 {
		k := keeper.New(p, keeper.Options{
			Interval:  interval,
			Clock:     wall,
			NTPServer: ctx.String(ntpServerFlag.Name),
			Health:    keeperHealth,
		})
		group.Go(func() error { return k.Run(groupCtx) })
	}

	log.Info("stakepool started",
		"version", fullVersion(),
		"database", dbPath,
		"api", apiURL+"/pool",
		"metrics", metricsURL,
		"epoch", wall.Epoch(),
		"epochLength", s.schedule.Length,
		"validators", len(addrs),
	)
	return group.Wait()
}

type report struct {
	Summary *pool.Summary     `json:"summary"`
	Epoch   *pool.EpochReport `json:"epoch"`
}

func reportAction(ctx *cli.Context) error {
	initLogger(ctx)
	s, err := loadSettings(ctx)
	if err != nil {
		return err
	}
	db, _, err := openDB(ctx, true, true)
	if err != nil {
		return err
	}
	defer db.Close()

	wall, err := clock.NewWall(s.schedule)
	if err != nil {
		return err
	}
	// no outbound calls are made while reporting
	p, err := pool.New(db, sim.New(wall, nil), wall, pool.Options{Scale: s.scale})
	if err != nil {
		return err
	}

	epoch := wall.Epoch()
	if e := ctx.Int64(epochFlag.Name); e >= 0 {
		epoch = lsd.Epoch(e)
	}
	var r report
	if r.Summary, err = p.Summary(); err != nil {
		return err
	}
	if r.Epoch, err = p.EpochReport(epoch); err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(&r)
}
