// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the pool database",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the YAML pool configuration",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "keep pool state in --data-dir instead of memory",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8680",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	apiSlowQueriesThresholdFlag = cli.DurationFlag{
		Name:  "api-slow-queries-threshold",
		Usage: "log API requests slower than this, 0 disables",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	keeperIntervalFlag = cli.DurationFlag{
		Name:  "keeper-interval",
		Value: defaultKeeperInterval,
		Usage: "interval between keeper ticks, 0 disables the keeper",
	}
	epochLengthFlag = cli.DurationFlag{
		Name:  "epoch-length",
		Usage: "length of an epoch, overrides the config file",
	}
	genesisTimeFlag = cli.StringFlag{
		Name:  "genesis-time",
		Usage: "start of epoch 0 in RFC3339, overrides the config file",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Value: "pool.ntp.org",
		Usage: "NTP server to correct the epoch clock, empty disables",
	}
	epochFlag = cli.Int64Flag{
		Name:  "epoch",
		Value: -1,
		Usage: "epoch to report, the current epoch when negative",
	}
)
