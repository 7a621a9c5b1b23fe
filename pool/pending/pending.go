// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pending

import (
	"math/big"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/pool/phase"
	"github.com/vechain/stakepool/pool/rebalance"
	"github.com/vechain/stakepool/pool/reverts"
	"github.com/vechain/stakepool/slot"
)

var slotHandles = slot.NameToPosition("pending-handles")

// Kind of an in-flight step.
type Kind uint8

const (
	KindPhase Kind = iota
	KindRebalance
)

func (k Kind) String() string {
	if k == KindRebalance {
		return "rebalance"
	}
	return "phase"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Handle carries the context a step needs when its outbound call resolves.
type Handle struct {
	ID        string              `json:"id"`
	Kind      Kind                `json:"kind"`
	Phase     phase.Phase         `json:"phase"`
	Epoch     lsd.Epoch           `json:"epoch"`
	Validator lsd.Address         `json:"validator"`
	Position  uint64              `json:"position"`
	Wrapped   bool                `json:"wrapped"`
	Amount    *big.Int            `json:"amount,omitempty"`
	Direction rebalance.Direction `json:"direction"`
}

// NewPhaseStep creates the handle of one phase step.
func NewPhaseStep(p phase.Phase, epoch lsd.Epoch, validator lsd.Address, position uint64, wrapped bool) *Handle {
	return &Handle{
		ID:        uuid.New(),
		Kind:      KindPhase,
		Phase:     p,
		Epoch:     epoch,
		Validator: validator,
		Position:  position,
		Wrapped:   wrapped,
		Amount:    new(big.Int),
	}
}

// NewRebalance creates the handle of a delegate or undelegate action.
func NewRebalance(epoch lsd.Epoch, d *rebalance.Decision) *Handle {
	return &Handle{
		ID:        uuid.New(),
		Kind:      KindRebalance,
		Epoch:     epoch,
		Validator: d.Validator,
		Amount:    new(big.Int).Set(d.Amount),
		Direction: d.Direction,
	}
}

// Name is the human readable name of the step's slot.
func (h *Handle) Name() string {
	if h.Kind == KindRebalance {
		return "rebalance"
	}
	return h.Phase.String()
}

type key byte

func (k key) Bytes() []byte { return []byte{byte(k)} }

const rebalanceKey = key(0xff)

func keyOf(h *Handle) key {
	if h.Kind == KindRebalance {
		return rebalanceKey
	}
	return key(h.Phase)
}

// Service persists at most one in-flight handle per phase plus one rebalance.
type Service struct {
	handles *slot.Mapping[key, *Handle]
}

func New(sctx *slot.Context) *Service {
	return &Service{
		handles: slot.NewMapping[key, *Handle](sctx, slotHandles),
	}
}

func (s *Service) get(k key) (*Handle, error) {
	has, err := s.handles.Has(k)
	if err != nil || !has {
		return nil, err
	}
	h, err := s.handles.Get(k)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pending handle")
	}
	return h, nil
}

// Phase returns the in-flight step of the phase, nil if none.
func (s *Service) Phase(p phase.Phase) (*Handle, error) {
	return s.get(key(p))
}

// Rebalance returns the in-flight rebalance action, nil if none.
func (s *Service) Rebalance() (*Handle, error) {
	return s.get(rebalanceKey)
}

// Open registers the handle, failing if its slot is already taken.
func (s *Service) Open(h *Handle) error {
	current, err := s.get(keyOf(h))
	if err != nil {
		return err
	}
	if current != nil {
		if h.Kind == KindRebalance {
			return reverts.New("rebalance already in flight")
		}
		return reverts.Newf("%s step already in flight", h.Name())
	}
	if err := s.handles.Set(keyOf(h), h); err != nil {
		return errors.Wrap(err, "failed to set pending handle")
	}
	return nil
}

// Close releases the slot of the handle and returns the stored copy. Handles
// that are not the current one for their slot are rejected.
func (s *Service) Close(h *Handle) (*Handle, error) {
	if h == nil {
		return nil, reverts.New("unknown or stale step handle")
	}
	current, err := s.get(keyOf(h))
	if err != nil {
		return nil, err
	}
	if current == nil || current.ID != h.ID {
		return nil, reverts.New("unknown or stale step handle")
	}
	s.handles.Delete(keyOf(h))
	return current, nil
}

// All returns every in-flight handle, phase steps first.
func (s *Service) All() ([]*Handle, error) {
	all := make([]*Handle, 0)
	for p := phase.Phase(0); p < phase.Count; p++ {
		h, err := s.Phase(p)
		if err != nil {
			return nil, err
		}
		if h != nil {
			all = append(all, h)
		}
	}
	h, err := s.Rebalance()
	if err != nil {
		return nil, err
	}
	if h != nil {
		all = append(all, h)
	}
	return all, nil
}
