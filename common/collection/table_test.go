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
	"math/rand"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamnative/hashtable/common"
)

func newTables(capacity int) map[string]Table[int, int] {
	return map[string]Table[int, int]{
		"probing-modulo":  NewProbingTable[int, int](capacity, nil),
		"probing-xxh3":    NewProbingTable[int, int](capacity, common.Xxh3Hash[int](capacity)),
		"chaining-modulo": NewChainingTable[int, int](capacity, nil),
		"chaining-xxh3":   NewChainingTable[int, int](capacity, common.Xxh3Hash[int](capacity)),
	}
}

func TestTable_RoundTrip(t *testing.T) {
	for name, table := range newTables(50) {
		t.Run(name, func(t *testing.T) {
			for k := -20; k < 20; k++ {
				require.True(t, table.Insert(k*7, k))
			}
			for k := -20; k < 20; k++ {
				value, found := table.Find(k * 7)
				assert.True(t, found)
				assert.Equal(t, k, value)
			}
			assert.Equal(t, 40, table.Size())
		})
	}
}

func TestTable_AgainstModel(t *testing.T) {
	const capacity = 64
	for name, table := range newTables(capacity) {
		t.Run(name, func(t *testing.T) {
			r := rand.New(rand.NewSource(42))
			model := map[int]int{}

			for i := 0; i < 20_000; i++ {
				key := r.Intn(200) - 100
				switch r.Intn(3) {
				case 0:
					if _, ok := model[key]; ok || len(model) >= capacity {
						continue
					}
					value := r.Int()
					require.True(t, table.Insert(key, value))
					model[key] = value
				case 1:
					expected, ok := model[key]
					value, found := table.Find(key)
					require.Equal(t, ok, found, "find %d", key)
					if ok {
						require.Equal(t, expected, value)
					}
				case 2:
					_, ok := model[key]
					sizeBefore := table.Size()
					require.Equal(t, ok, table.Remove(key), "remove %d", key)
					delete(model, key)
					if ok {
						require.Equal(t, sizeBefore-1, table.Size())
					} else {
						require.Equal(t, sizeBefore, table.Size())
					}
				}
				require.Equal(t, len(model), table.Size())
				require.Equal(t, len(model) == 0, table.Empty())
			}

			for key, expected := range model {
				value, found := table.Find(key)
				assert.True(t, found)
				assert.Equal(t, expected, value)
			}

			table.Destroy()
			table.Destroy()
			assert.Equal(t, 0, table.Size())
			assert.True(t, table.Empty())
		})
	}
}

func TestTable_DuplicateHandlingDiffers(t *testing.T) {
	probing := NewProbingTable[int, int](DefaultProbingCapacity, nil)
	chaining := NewChainingTable[int, int](DefaultChainingCapacity, nil)

	assert.True(t, probing.Insert(7, 1))
	assert.False(t, probing.Insert(7, 2))
	value, _ := probing.Find(7)
	assert.Equal(t, 1, value)
	assert.Equal(t, 1, probing.Size())

	assert.True(t, chaining.Insert(7, 1))
	assert.True(t, chaining.Insert(7, 2))
	value, _ = chaining.Find(7)
	assert.Equal(t, 2, value)
	assert.Equal(t, 2, chaining.Size())
}

func TestNew(t *testing.T) {
	table, err := New[int, int](Probing, 10, nil)
	require.NoError(t, err)
	assert.IsType(t, &ProbingTable[int, int]{}, table)
	assert.Equal(t, 10, table.Capacity())

	table, err = New[int, int](Chaining, 20, nil)
	require.NoError(t, err)
	assert.IsType(t, &ChainingTable[int, int]{}, table)
	assert.Equal(t, 20, table.Capacity())

	table, err = New[int, int]("cuckoo", 10, nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Nil(t, table)
}

func TestKind(t *testing.T) {
	var k Kind
	var _ pflag.Value = &k

	for _, test := range []struct {
		input    string
		expected Kind
		isErr    bool
	}{
		{"probing", Probing, false},
		{"CHAINING", Chaining, false},
		{"open", "", true},
	} {
		t.Run(test.input, func(t *testing.T) {
			k = ""
			err := k.Set(test.input)
			assert.Equal(t, test.isErr, err != nil)
			if test.isErr {
				assert.ErrorIs(t, err, ErrUnknownKind)
			}
			assert.Equal(t, test.expected, k)
		})
	}

	assert.Equal(t, "kind", k.Type())
	assert.Equal(t, DefaultProbingCapacity, Probing.DefaultCapacity())
	assert.Equal(t, DefaultChainingCapacity, Chaining.DefaultCapacity())
}

func ExampleProbingTable() {
	t := NewProbingTable[int, int](100, nil)
	t.Insert(1, 100)
	t.Insert(101, 200)
	t.Remove(1)

	value, found := t.Find(101)
	fmt.Println(value, found, t.Size())
	// Output: 200 true 1
}
