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
	"golang.org/x/exp/constraints"

	"github.com/streamnative/hashtable/common/metrics"
)

const (
	opInsert  = "insert"
	opFind    = "find"
	opRemove  = "remove"
	opDestroy = "destroy"
)

// Instrumented wraps a Table and reports operation counts and the current
// size. Behavior of the wrapped table is unchanged.
type Instrumented[K constraints.Integer, V constraints.Integer] struct {
	Table[K, V]

	success map[string]metrics.Counter
	failure map[string]metrics.Counter
	size    metrics.Gauge
}

func NewInstrumented[K constraints.Integer, V constraints.Integer](table Table[K, V], name string) *Instrumented[K, V] {
	labels := metrics.LabelsForTable(name)
	ops := metrics.NewCounter("hashtable_operations",
		"The number of operations applied to the table", metrics.Dimensionless, labels)

	i := &Instrumented[K, V]{
		Table:   table,
		success: map[string]metrics.Counter{},
		failure: map[string]metrics.Counter{},
	}
	for _, op := range []string{opInsert, opFind, opRemove, opDestroy} {
		i.success[op] = ops.With(map[string]any{"op": op, "result": "success"})
		i.failure[op] = ops.With(map[string]any{"op": op, "result": "failure"})
	}
	i.size = metrics.NewGauge("hashtable_size",
		"The number of live entries in the table", metrics.Dimensionless, labels,
		func() int64 { return int64(table.Size()) })
	return i
}

func (i *Instrumented[K, V]) record(op string, ok bool) {
	if ok {
		i.success[op].Inc()
	} else {
		i.failure[op].Inc()
	}
}

func (i *Instrumented[K, V]) Insert(key K, value V) bool {
	ok := i.Table.Insert(key, value)
	i.record(opInsert, ok)
	return ok
}

func (i *Instrumented[K, V]) Find(key K) (value V, found bool) {
	value, found = i.Table.Find(key)
	i.record(opFind, found)
	return value, found
}

func (i *Instrumented[K, V]) Remove(key K) bool {
	ok := i.Table.Remove(key)
	i.record(opRemove, ok)
	return ok
}

func (i *Instrumented[K, V]) Destroy() {
	i.Table.Destroy()
	i.record(opDestroy, true)
}

// Close stops observing the size of the wrapped table.
func (i *Instrumented[K, V]) Close() error {
	i.size.Unregister()
	return nil
}
