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

// noEntry is the link value for an empty bucket or the end of a chain.
// Links hold arena index + 1.
const noEntry int32 = 0

type chainEntry[K constraints.Integer, V constraints.Integer] struct {
	key   K
	value V
	next  int32
}

var _ Table[int, int] = (*ChainingTable[int, int])(nil)

// ChainingTable is a separate chaining table with a fixed number of
// buckets. Every bucket owns a singly linked chain of entries. The entries
// live in one arena and are linked by index; removed entries are kept on a
// freelist and handed out again by later insertions.
//
// Insert never checks for an existing key: the newest entry is prepended to
// its bucket and shadows any older entry with the same key.
type ChainingTable[K constraints.Integer, V constraints.Integer] struct {
	buckets []int32
	entries []chainEntry[K, V]
	// head of the freelist, threaded through chainEntry.next
	free int32
	size int
	hash HashFunc[K]
}

func NewChainingTable[K constraints.Integer, V constraints.Integer](capacity int, hash HashFunc[K]) *ChainingTable[K, V] {
	checkCapacity(capacity)
	t := &ChainingTable[K, V]{
		buckets: make([]int32, capacity),
	}
	t.Init(hash)
	return t
}

func (t *ChainingTable[K, V]) Init(hash HashFunc[K]) {
	if t == nil {
		return
	}
	t.hash = defaultHash(len(t.buckets), hash)
	t.Destroy()
}

func (t *ChainingTable[K, V]) Insert(key K, value V) bool {
	if t == nil {
		return false
	}
	offset := t.hash(key)
	link := t.alloc(key, value)
	t.entry(link).next = t.buckets[offset]
	t.buckets[offset] = link
	t.size++
	return true
}

func (t *ChainingTable[K, V]) Find(key K) (value V, found bool) {
	if t == nil {
		return value, false
	}
	for link := t.buckets[t.hash(key)]; link != noEntry; {
		e := t.entry(link)
		if e.key == key {
			return e.value, true
		}
		link = e.next
	}
	return value, false
}

// Remove unlinks the most recently inserted entry for key.
func (t *ChainingTable[K, V]) Remove(key K) bool {
	if t == nil || t.size == 0 {
		return false
	}
	offset := t.hash(key)
	head := t.buckets[offset]
	if head == noEntry {
		return false
	}

	if e := t.entry(head); e.key == key {
		t.buckets[offset] = e.next
		t.release(head)
		t.size--
		return true
	}

	prev := t.findPrev(head, key)
	if prev == noEntry {
		return false
	}
	p := t.entry(prev)
	target := p.next
	p.next = t.entry(target).next
	t.release(target)
	t.size--
	return true
}

// findPrev returns the link of the entry whose successor holds key, or
// noEntry when the chain starting at head has no such successor.
func (t *ChainingTable[K, V]) findPrev(head int32, key K) int32 {
	for link := head; ; {
		next := t.entry(link).next
		if next == noEntry {
			return noEntry
		}
		if t.entry(next).key == key {
			return link
		}
		link = next
	}
}

func (t *ChainingTable[K, V]) alloc(key K, value V) int32 {
	if t.free != noEntry {
		link := t.free
		e := t.entry(link)
		t.free = e.next
		*e = chainEntry[K, V]{key: key, value: value}
		return link
	}
	t.entries = append(t.entries, chainEntry[K, V]{key: key, value: value})
	return int32(len(t.entries))
}

func (t *ChainingTable[K, V]) release(link int32) {
	e := t.entry(link)
	*e = chainEntry[K, V]{next: t.free}
	t.free = link
}

func (t *ChainingTable[K, V]) entry(link int32) *chainEntry[K, V] {
	return &t.entries[link-1]
}

func (t *ChainingTable[K, V]) Size() int {
	if t == nil {
		return 0
	}
	return t.size
}

func (t *ChainingTable[K, V]) Empty() bool {
	return t.Size() == 0
}

// Capacity returns the number of buckets. The number of entries is only
// bounded by memory.
func (t *ChainingTable[K, V]) Capacity() int {
	if t == nil {
		return 0
	}
	return len(t.buckets)
}

func (t *ChainingTable[K, V]) Destroy() {
	if t == nil {
		return
	}
	for i := range t.buckets {
		t.buckets[i] = noEntry
	}
	clear(t.entries)
	t.entries = t.entries[:0]
	t.free = noEntry
	t.size = 0
}

func (t *ChainingTable[K, V]) String() string {
	if t == nil {
		return ""
	}
	var builder strings.Builder
	for i, head := range t.buckets {
		if head == noEntry {
			continue
		}
		builder.WriteString(fmt.Sprintf("bucket=%d ", i))
		for link := head; link != noEntry; {
			e := t.entry(link)
			builder.WriteString(fmt.Sprintf("[%d: %d] -> ", e.key, e.value))
			link = e.next
		}
		builder.WriteString("nil\n")
	}
	return builder.String()
}

