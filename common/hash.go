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

package common

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
	"golang.org/x/exp/constraints"
)

const (
	HashModulo = "modulo"
	HashXxh3   = "xxh3"
)

var ErrUnknownHash = errors.New("unknown hash function")

// ModuloHash maps a key to key mod capacity. Negative keys are folded back
// into [0, capacity).
func ModuloHash[K constraints.Integer](capacity int) func(key K) int {
	c := int64(capacity)
	return func(key K) int {
		offset := int64(key) % c
		if offset < 0 {
			offset += c
		}
		return int(offset)
	}
}

// Xxh3Hash spreads keys with xxh3 over their little-endian encoding. Useful
// when keys share a common stride with the capacity.
func Xxh3Hash[K constraints.Integer](capacity int) func(key K) int {
	c := uint64(capacity)
	return func(key K) int {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(key))
		return int(xxh3.Hash(buf[:]) % c)
	}
}

func HashByName[K constraints.Integer](name string, capacity int) (func(key K) int, error) {
	switch name {
	case HashModulo:
		return ModuloHash[K](capacity), nil
	case HashXxh3:
		return Xxh3Hash[K](capacity), nil
	}
	return nil, errors.Wrapf(ErrUnknownHash, "hash: '%s'", name)
}
