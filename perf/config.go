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
	"time"

	"github.com/pkg/errors"

	"github.com/streamnative/hashtable/common"
	"github.com/streamnative/hashtable/common/collection"
)

var (
	ErrInvalidCapacity    = errors.New("capacity must be positive")
	ErrInvalidPercentages = errors.New("read and remove percentages must be within [0, 100] and sum to at most 100")
	ErrInvalidCardinality = errors.New("keys cardinality must be positive")
)

type Config struct {
	Kind     collection.Kind `mapstructure:"kind"`
	Capacity int             `mapstructure:"capacity"`
	Hash     string          `mapstructure:"hash"`

	// RequestRate is in ops/s, 0 runs unthrottled.
	RequestRate      float64 `mapstructure:"requestRate"`
	ReadPercentage   float64 `mapstructure:"readPercentage"`
	RemovePercentage float64 `mapstructure:"removePercentage"`
	KeysCardinality  uint32  `mapstructure:"keysCardinality"`

	ReportInterval time.Duration `mapstructure:"reportInterval"`
	// Duration bounds the run, 0 runs until the context is canceled.
	Duration time.Duration `mapstructure:"duration"`
	Verify   bool          `mapstructure:"verify"`
}

func NewConfig() Config {
	return Config{
		Kind:             collection.Probing,
		Capacity:         collection.DefaultProbingCapacity,
		Hash:             common.HashModulo,
		RequestRate:      0,
		ReadPercentage:   60,
		RemovePercentage: 20,
		KeysCardinality:  2000,
		ReportInterval:   10 * time.Second,
	}
}

func (c Config) Validate() error {
	switch c.Kind {
	case collection.Probing, collection.Chaining:
	default:
		return errors.Wrapf(collection.ErrUnknownKind, "kind: '%s'", c.Kind)
	}
	if c.Capacity <= 0 {
		return errors.Wrapf(ErrInvalidCapacity, "capacity: %d", c.Capacity)
	}
	if _, err := common.HashByName[int64](c.Hash, c.Capacity); err != nil {
		return err
	}
	if c.ReadPercentage < 0 || c.RemovePercentage < 0 || c.ReadPercentage+c.RemovePercentage > 100 {
		return errors.Wrapf(ErrInvalidPercentages, "read: %v remove: %v", c.ReadPercentage, c.RemovePercentage)
	}
	if c.KeysCardinality == 0 {
		return ErrInvalidCardinality
	}
	return nil
}
