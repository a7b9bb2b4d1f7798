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

package flag

import (
	"github.com/spf13/cobra"

	"github.com/streamnative/hashtable/common"
	"github.com/streamnative/hashtable/common/collection"
)

func Kind(cmd *cobra.Command, conf *collection.Kind) {
	cmd.Flags().VarP(conf, "kind", "k", "Table kind: probing or chaining")
}

func Capacity(cmd *cobra.Command, conf *int) {
	cmd.Flags().IntVarP(conf, "capacity", "c", *conf, "Number of slots (probing) or buckets (chaining)")
}

func Hash(cmd *cobra.Command, conf *string) {
	cmd.Flags().StringVar(conf, "hash", common.HashModulo, "Hash function: modulo or xxh3")
}

func MetricsAddr(cmd *cobra.Command, conf *string) {
	cmd.Flags().StringVarP(conf, "metrics-addr", "m", "", "Metrics service bind address, disabled when empty")
}
