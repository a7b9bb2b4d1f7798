// Copyright 2025 StreamNative, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package collection

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/streamnative/hashtable/common"
)

const (
	DefaultProbingCapacity  = 1000
	DefaultChainingCapacity = 100
)

var ErrUnknownKind = errors.New("unknown table kind")

// HashFunc maps a key to an index in [0, capacity) of the table it was
// given to. Returning an index outside that range is undefined behavior.
type HashFunc[K constraints.Integer] func(key K) int

// Table is the contract shared by the open addressing and the separate
// chaining implementations. None of the operations report errors: every
// failure is visible through the returned flag.
type Table[K constraints.Integer, V constraints.Integer] interface {
	// Init empties the table and installs a new hash function.
	Init(hash HashFunc[K])
	Insert(key K, value V) bool
	Find(key K) (value V, found bool)
	Remove(key K) bool
	Size() int
	Empty() bool
	Capacity() int
	// Destroy drops every entry. The table stays usable.
	Destroy()
	String() string
}

type Kind string

const (
	Probing  Kind = "probing"
	Chaining Kind = "chaining"
)

func (k *Kind) String() string {
	return string(*k)
}

func (k *Kind) Set(s string) error {
	switch strings.ToLower(s) {
	case string(Probing):
		*k = Probing
	case string(Chaining):
		*k = Chaining
	default:
		return errors.Wrapf(ErrUnknownKind, "kind: '%s'", s)
	}
	return nil
}

func (*Kind) Type() string {
	return "kind"
}

// DefaultCapacity returns the capacity used when none is configured.
func (k Kind) DefaultCapacity() int {
	if k == Chaining {
		return DefaultChainingCapacity
	}
	return DefaultProbingCapacity
}

func New[K constraints.Integer, V constraints.Integer](kind Kind, capacity int, hash HashFunc[K]) (Table[K, V], error) {
	switch kind {
	case Probing:
		return NewProbingTable[K, V](capacity, hash), nil
	case Chaining:
		return NewChainingTable[K, V](capacity, hash), nil
	}
	return nil, errors.Wrapf(ErrUnknownKind, "kind: '%s'", kind)
}

func defaultHash[K constraints.Integer](capacity int, hash HashFunc[K]) HashFunc[K] {
	if hash == nil {
		return common.ModuloHash[K](capacity)
	}
	return hash
}

func checkCapacity(capacity int) {
	if capacity <= 0 {
		panic("table must have positive capacity")
	}
}
