// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package phase

import (
	"github.com/pkg/errors"
)

// Phase is one of the four round-robin passes over the validator registry.
type Phase uint8

const (
	StakeQuery Phase = iota
	RewardsQuery
	Withdraw
	Redelegate

	// Count is the number of phases.
	Count = 4
)

var names = [Count]string{"stake-query", "rewards-query", "withdraw", "redelegate"}

// All lists the phases in the order a keeper drives them within an epoch.
func All() []Phase {
	return []Phase{RewardsQuery, Redelegate, StakeQuery, Withdraw}
}

func (p Phase) String() string {
	if p.Valid() {
		return names[p]
	}
	return "unknown"
}

func (p Phase) Valid() bool {
	return p < Count
}

// Bytes returns the storage key of the phase.
func (p Phase) Bytes() []byte {
	return []byte{byte(p)}
}

func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, errors.Errorf("invalid phase %d", p)
	}
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Parse converts a phase name back to a Phase.
func Parse(s string) (Phase, error) {
	for i, name := range names {
		if name == s {
			return Phase(i), nil
		}
	}
	return 0, errors.Errorf("unknown phase %q", s)
}
