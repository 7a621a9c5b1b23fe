// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket is a key prefix that partitions a store.
type Bucket string

// Key returns k with the bucket prepended, in a newly allocated slice.
func (b Bucket) Key(k []byte) []byte {
	return append(append(make([]byte, 0, len(b)+len(k)), b...), k...)
}

// NewStore returns a view of src holding only the keys of the bucket.
// Keys passed to and returned from the view have the prefix stripped.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{bucket: b, src: src}
}

type bucketStore struct {
	bucket Bucket
	src    Store
}

func (s *bucketStore) Get(key []byte) ([]byte, error) { return s.src.Get(s.bucket.Key(key)) }
func (s *bucketStore) Has(key []byte) (bool, error)   { return s.src.Has(s.bucket.Key(key)) }
func (s *bucketStore) IsNotFound(err error) bool      { return s.src.IsNotFound(err) }
func (s *bucketStore) Put(key, val []byte) error      { return s.src.Put(s.bucket.Key(key), val) }
func (s *bucketStore) Delete(key []byte) error        { return s.src.Delete(s.bucket.Key(key)) }

func (s *bucketStore) Bulk() Bulk {
	bulk := s.src.Bulk()
	return &struct {
		PutFunc
		DeleteFunc
		WriteFunc
	}{
		func(key, val []byte) error { return bulk.Put(s.bucket.Key(key), val) },
		func(key []byte) error { return bulk.Delete(s.bucket.Key(key)) },
		bulk.Write,
	}
}

func (s *bucketStore) Iterate(r Range) Iterator {
	limit := util.BytesPrefix([]byte(s.bucket)).Limit
	if len(r.Limit) > 0 {
		limit = s.bucket.Key(r.Limit)
	}
	return &bucketIterator{
		Iterator: s.src.Iterate(Range{Start: s.bucket.Key(r.Start), Limit: limit}),
		n:        len(s.bucket),
	}
}

type bucketIterator struct {
	Iterator
	n int
}

func (it *bucketIterator) Key() []byte {
	return it.Iterator.Key()[it.n:]
}
