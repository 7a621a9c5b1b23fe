// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/transport/sim"
)

const (
	defaultEpochLength    = 24 * time.Hour
	defaultKeeperInterval = 10 * time.Second
)

// Config is the YAML pool configuration. Amounts are decimal or 0x-hex strings.
type Config struct {
	Pool       PoolConfig        `yaml:"pool"`
	Epoch      EpochConfig       `yaml:"epoch"`
	Validators []ValidatorConfig `yaml:"validators"`
}

type PoolConfig struct {
	// ServiceFee in parts per thousand of the rewards.
	ServiceFee uint64 `yaml:"service_fee"`
	Scale      string `yaml:"scale"`
	Owner      string `yaml:"owner"`
	CacheSize  int    `yaml:"cache_size"`
}

type EpochConfig struct {
	Length  time.Duration `yaml:"length"`
	Genesis string        `yaml:"genesis"`
}

// ValidatorConfig seeds a simulated validator and registers it with the pool.
type ValidatorConfig struct {
	Address        string  `yaml:"address"`
	Stake          string  `yaml:"stake"`
	RewardPerEpoch string  `yaml:"reward_per_epoch"`
	FailureRate    float64 `yaml:"failure_rate"`
}

// settings are the parsed and validated parameters the node runs with.
type settings struct {
	scale      *big.Int
	serviceFee uint64
	owner      lsd.Address
	cacheSize  int
	schedule   clock.Schedule
	validators []sim.ValidatorConfig
}

func loadConfig(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return &cfg, nil
}

func parseAmount(s string, field string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := math.ParseBig256(s)
	if !ok {
		return nil, errors.Errorf("%s: invalid amount %q", field, s)
	}
	return v, nil
}

func (c *Config) settings() (*settings, error) {
	s := &settings{
		serviceFee: c.Pool.ServiceFee,
		cacheSize:  c.Pool.CacheSize,
		schedule:   clock.Schedule{Length: c.Epoch.Length},
	}
	if s.serviceFee > lsd.FeeDenominator {
		return nil, errors.Errorf("pool.service_fee: exceeds %d parts per thousand", lsd.FeeDenominator)
	}
	if c.Pool.Scale != "" {
		scale, err := parseAmount(c.Pool.Scale, "pool.scale")
		if err != nil {
			return nil, err
		}
		if scale.Sign() <= 0 {
			return nil, errors.New("pool.scale: must be positive")
		}
		s.scale = scale
	}
	if c.Pool.Owner != "" {
		owner, err := lsd.ParseAddress(c.Pool.Owner)
		if err != nil {
			return nil, errors.Wrap(err, "pool.owner")
		}
		s.owner = owner
	}
	if s.schedule.Length == 0 {
		s.schedule.Length = defaultEpochLength
	}
	if c.Epoch.Genesis != "" {
		genesis, err := time.Parse(time.RFC3339, c.Epoch.Genesis)
		if err != nil {
			return nil, errors.Wrap(err, "epoch.genesis")
		}
		s.schedule.Genesis = genesis
	}

	seen := make(map[lsd.Address]bool)
	for i, v := range c.Validators {
		addr, err := lsd.ParseAddress(v.Address)
		if err != nil {
			return nil, errors.Wrapf(err, "validators[%d].address", i)
		}
		if seen[addr] {
			return nil, errors.Errorf("validators[%d]: duplicate address %v", i, addr)
		}
		seen[addr] = true
		stake, err := parseAmount(v.Stake, "stake")
		if err != nil {
			return nil, errors.WithMessagef(err, "validators[%d]", i)
		}
		reward, err := parseAmount(v.RewardPerEpoch, "reward_per_epoch")
		if err != nil {
			return nil, errors.WithMessagef(err, "validators[%d]", i)
		}
		if v.FailureRate < 0 || v.FailureRate > 1 {
			return nil, errors.Errorf("validators[%d].failure_rate: must be within [0, 1]", i)
		}
		s.validators = append(s.validators, sim.ValidatorConfig{
			Address:        addr,
			Stake:          stake,
			RewardPerEpoch: reward,
			FailureRate:    v.FailureRate,
		})
	}
	return s, nil
}
