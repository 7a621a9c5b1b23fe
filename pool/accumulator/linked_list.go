// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accumulator

import (
	"github.com/vechain/stakepool/lsd"
	"github.com/vechain/stakepool/slot"
)

// linkedList keeps validators in first-observation order.
type linkedList struct {
	head  *slot.Value[lsd.Address]
	tail  *slot.Value[lsd.Address]
	count *slot.Value[uint64]
	next  *slot.Mapping[lsd.Address, lsd.Address]
	prev  *slot.Mapping[lsd.Address, lsd.Address]
}

func newLinkedList(sctx *slot.Context, name string) *linkedList {
	return &linkedList{
		head:  slot.NewValue[lsd.Address](sctx, slot.NameToPosition(name+"-head")),
		tail:  slot.NewValue[lsd.Address](sctx, slot.NameToPosition(name+"-tail")),
		count: slot.NewValue[uint64](sctx, slot.NameToPosition(name+"-count")),
		next:  slot.NewMapping[lsd.Address, lsd.Address](sctx, slot.NameToPosition(name+"-next")),
		prev:  slot.NewMapping[lsd.Address, lsd.Address](sctx, slot.NameToPosition(name+"-prev")),
	}
}

func (l *linkedList) contains(address lsd.Address) (bool, error) {
	prev, err := l.prev.Get(address)
	if err != nil {
		return false, err
	}
	if !prev.IsZero() {
		return true, nil
	}
	head, err := l.head.Get()
	if err != nil {
		return false, err
	}
	return head == address, nil
}

// add appends the address, an address already present keeps its place.
func (l *linkedList) add(address lsd.Address) error {
	exists, err := l.contains(address)
	if err != nil || exists {
		return err
	}
	oldTail, err := l.tail.Get()
	if err != nil {
		return err
	}

	if oldTail.IsZero() {
		if err := l.head.Set(address); err != nil {
			return err
		}
	} else {
		if err := l.next.Set(oldTail, address); err != nil {
			return err
		}
		if err := l.prev.Set(address, oldTail); err != nil {
			return err
		}
	}
	if err := l.tail.Set(address); err != nil {
		return err
	}
	return l.incr(1)
}

// remove unlinks the address, reconnecting its neighbours.
func (l *linkedList) remove(address lsd.Address) error {
	exists, err := l.contains(address)
	if err != nil || !exists {
		return err
	}
	prev, err := l.prev.Get(address)
	if err != nil {
		return err
	}
	next, err := l.next.Get(address)
	if err != nil {
		return err
	}

	if prev.IsZero() {
		err = l.head.Set(next)
	} else {
		err = l.next.Set(prev, next)
	}
	if err != nil {
		return err
	}

	if next.IsZero() {
		err = l.tail.Set(prev)
	} else {
		err = l.prev.Set(next, prev)
	}
	if err != nil {
		return err
	}

	l.next.Delete(address)
	l.prev.Delete(address)
	return l.incr(-1)
}

func (l *linkedList) incr(d int) error {
	n, err := l.count.Get()
	if err != nil {
		return err
	}
	return l.count.Set(uint64(int64(n) + int64(d)))
}

func (l *linkedList) len() (uint64, error) {
	return l.count.Get()
}

// iter visits the addresses from head to tail.
func (l *linkedList) iter(callback func(lsd.Address) error) error {
	ptr, err := l.head.Get()
	if err != nil {
		return err
	}
	for !ptr.IsZero() {
		if err := callback(ptr); err != nil {
			return err
		}
		if ptr, err = l.next.Get(ptr); err != nil {
			return err
		}
	}
	return nil
}
