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
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

// State tags a slot of a ProbingTable.
type State uint8

const (
	Valid State = iota
	// Invalid marks a removed entry. Lookups keep probing past it, since
	// entries inserted after it may have been displaced beyond this slot.
	Invalid
	Empty
)

func (s State) String() string {
	switch s {
	case Valid:
		return "VALID"
	case Invalid:
		return "INVALID"
	case Empty:
		return "EMPTY"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

type slot[K constraints.Integer, V constraints.Integer] struct {
	key   K
	value V
	state State
}

var _ Table[int, int] = (*ProbingTable[int, int])(nil)

// ProbingTable is a fixed-capacity open addressing table. Collisions are
// resolved by linear probing, wrapping around the end of the slot array.
//
// All methods are safe to call on a nil *ProbingTable and behave as on an
// empty table that rejects every insertion.
type ProbingTable[K constraints.Integer, V constraints.Integer] struct {
	slots []slot[K, V]
	size  int
	hash  HashFunc[K]
}

// NewProbingTable allocates a table with the given number of slots. A nil
// hash selects key mod capacity.
func NewProbingTable[K constraints.Integer, V constraints.Integer](capacity int, hash HashFunc[K]) *ProbingTable[K, V] {
	checkCapacity(capacity)
	t := &ProbingTable[K, V]{
		slots: make([]slot[K, V], capacity),
	}
	t.Init(hash)
	return t
}

func (t *ProbingTable[K, V]) Init(hash HashFunc[K]) {
	if t == nil {
		return
	}
	t.hash = defaultHash(len(t.slots), hash)
	t.Destroy()
}

// Insert stores the pair at the first non-valid slot of the key's probe
// sequence. It is rejected when the table is full or when the key already
// sits in its home slot. Duplicates displaced further along the probe
// sequence are not detected.
func (t *ProbingTable[K, V]) Insert(key K, value V) bool {
	if t == nil || t.size >= len(t.slots) {
		return false
	}

	offset := t.hash(key)
	if s := &t.slots[offset]; s.state == Valid && s.key == key {
		return false
	}

	// size < capacity guarantees a non-valid slot ahead
	for t.slots[offset].state == Valid {
		offset = t.next(offset)
	}

	t.slots[offset] = slot[K, V]{key: key, value: value, state: Valid}
	t.size++
	return true
}

func (t *ProbingTable[K, V]) Find(key K) (value V, found bool) {
	if t == nil {
		return value, false
	}
	if offset, ok := t.lookup(key); ok {
		return t.slots[offset].value, true
	}
	return value, false
}

// Remove turns the slot holding key into a tombstone.
func (t *ProbingTable[K, V]) Remove(key K) bool {
	if t == nil || t.size == 0 {
		return false
	}
	offset, ok := t.lookup(key)
	if !ok {
		return false
	}
	t.slots[offset].state = Invalid
	t.size--
	return true
}

// lookup walks the probe sequence of key until it meets an empty slot. Each
// slot is visited at most once, so a table without any empty slot left
// still terminates.
func (t *ProbingTable[K, V]) lookup(key K) (int, bool) {
	offset := t.hash(key)
	for i := 0; i < len(t.slots); i++ {
		s := &t.slots[offset]
		switch {
		case s.state == Empty:
			return 0, false
		case s.state == Valid && s.key == key:
			return offset, true
		}
		offset = t.next(offset)
	}
	return 0, false
}

func (t *ProbingTable[K, V]) next(offset int) int {
	offset++
	if offset >= len(t.slots) {
		offset -= len(t.slots)
	}
	return offset
}

func (t *ProbingTable[K, V]) Size() int {
	if t == nil {
		return 0
	}
	return t.size
}

func (t *ProbingTable[K, V]) Empty() bool {
	return t.Size() == 0
}

func (t *ProbingTable[K, V]) Capacity() int {
	if t == nil {
		return 0
	}
	return len(t.slots)
}

func (t *ProbingTable[K, V]) Destroy() {
	if t == nil {
		return
	}
	for i := range t.slots {
		t.slots[i] = slot[K, V]{state: Empty}
	}
	t.size = 0
}

// String dumps every slot that is not empty, tombstones included.
func (t *ProbingTable[K, V]) String() string {
	if t == nil {
		return ""
	}
	var builder strings.Builder
	for i, s := range t.slots {
		if s.state == Empty {
			continue
		}
		builder.WriteString(fmt.Sprintf("slot=%d key=%d value=%d state=%s\n", i, s.key, s.value, s.state))
	}
	return builder.String()
}
