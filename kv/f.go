// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// function adapters for composing bulks.

type (
	PutFunc    func(key, val []byte) error
	DeleteFunc func(key []byte) error
	WriteFunc  func() error
)

func (f PutFunc) Put(key, val []byte) error  { return f(key, val) }
func (f DeleteFunc) Delete(key []byte) error { return f(key) }
func (f WriteFunc) Write() error             { return f() }
