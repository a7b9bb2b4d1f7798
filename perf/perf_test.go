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

package perf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamnative/hashtable/common"
	"github.com/streamnative/hashtable/common/collection"
)

func TestConfig_Validate(t *testing.T) {
	for _, test := range []struct {
		name     string
		modify   func(c *Config)
		expected error
	}{
		{"default", func(*Config) {}, nil},
		{"chaining-xxh3", func(c *Config) { c.Kind = collection.Chaining; c.Hash = common.HashXxh3 }, nil},
		{"unknown-kind", func(c *Config) { c.Kind = "cuckoo" }, collection.ErrUnknownKind},
		{"zero-capacity", func(c *Config) { c.Capacity = 0 }, ErrInvalidCapacity},
		{"unknown-hash", func(c *Config) { c.Hash = "crc32" }, common.ErrUnknownHash},
		{"negative-read", func(c *Config) { c.ReadPercentage = -1 }, ErrInvalidPercentages},
		{"too-many-percent", func(c *Config) { c.ReadPercentage = 90; c.RemovePercentage = 20 }, ErrInvalidPercentages},
		{"zero-cardinality", func(c *Config) { c.KeysCardinality = 0 }, ErrInvalidCardinality},
	} {
		t.Run(test.name, func(t *testing.T) {
			c := NewConfig()
			test.modify(&c)
			err := c.Validate()
			if test.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, test.expected)
			}
		})
	}
}

func TestPerf_Run(t *testing.T) {
	for _, test := range []struct {
		kind     collection.Kind
		capacity int
		hash     string
	}{
		{collection.Probing, 128, common.HashModulo},
		{collection.Probing, 1000, common.HashXxh3},
		{collection.Chaining, 16, common.HashModulo},
		{collection.Chaining, 100, common.HashXxh3},
	} {
		t.Run(string(test.kind)+"-"+test.hash, func(t *testing.T) {
			config := NewConfig()
			config.Kind = test.kind
			config.Capacity = test.capacity
			config.Hash = test.hash
			config.KeysCardinality = 300
			config.Duration = 200 * time.Millisecond
			config.ReportInterval = 50 * time.Millisecond
			config.Verify = true

			stats, err := New(config).Run(context.Background())
			require.NoError(t, err)

			assert.Positive(t, stats.Ops())
			assert.Positive(t, stats.Inserts)
			assert.Zero(t, stats.Mismatches)
			assert.LessOrEqual(t, stats.Size, 300)
			if test.kind == collection.Probing {
				assert.LessOrEqual(t, stats.Size, test.capacity)
			} else {
				assert.Zero(t, stats.Rejected)
			}
		})
	}
}

func TestPerf_ProbingFillsUp(t *testing.T) {
	config := NewConfig()
	config.Capacity = 8
	config.KeysCardinality = 1000
	config.ReadPercentage = 0
	config.RemovePercentage = 0
	config.Duration = 100 * time.Millisecond
	config.ReportInterval = 0
	config.Verify = true

	stats, err := New(config).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, stats.Size)
	assert.Positive(t, stats.Rejected)
	assert.Zero(t, stats.Mismatches)
}

func TestPerf_RateLimited(t *testing.T) {
	config := NewConfig()
	config.RequestRate = 100
	config.Duration = 300 * time.Millisecond
	config.ReportInterval = 0

	p := New(config)
	p.SetRequestRate(50)

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	// 50 ops/s for 0.3s plus the initial burst
	assert.LessOrEqual(t, stats.Ops(), uint64(100))
}

func TestPerf_Canceled(t *testing.T) {
	config := NewConfig()
	config.ReportInterval = 0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := New(config).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Ops())
}

func TestPerf_InvalidConfig(t *testing.T) {
	config := NewConfig()
	config.Capacity = -1

	_, err := New(config).Run(context.Background())
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}
