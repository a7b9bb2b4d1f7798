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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/streamnative/hashtable/common"
	"github.com/streamnative/hashtable/common/collection"
	"github.com/streamnative/hashtable/perf"
)

func reset() {
	conf = perf.NewConfig()
	configFile = ""
	metricsAddr = ""
	Cmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
}

func TestCmdFlags(t *testing.T) {
	for _, test := range []struct {
		args     []string
		expected func(c *perf.Config)
	}{
		{[]string{}, func(*perf.Config) {}},
		{[]string{"--kind=chaining"}, func(c *perf.Config) {
			c.Kind = collection.Chaining
			c.Capacity = collection.DefaultChainingCapacity
		}},
		{[]string{"-k", "chaining", "-c", "64"}, func(c *perf.Config) {
			c.Kind = collection.Chaining
			c.Capacity = 64
		}},
		{[]string{"--hash=xxh3", "-r", "500", "-p", "10", "--remove-percent=30"}, func(c *perf.Config) {
			c.Hash = common.HashXxh3
			c.RequestRate = 500
			c.ReadPercentage = 10
			c.RemovePercentage = 30
		}},
		{[]string{"--keys-cardinality=10", "-d", "1s", "--report-interval=2s", "--verify"}, func(c *perf.Config) {
			c.KeysCardinality = 10
			c.Duration = time.Second
			c.ReportInterval = 2 * time.Second
			c.Verify = true
		}},
	} {
		t.Run(strings.Join(test.args, "_"), func(t *testing.T) {
			reset()
			expected := perf.NewConfig()
			test.expected(&expected)

			Cmd.SetArgs(test.args)
			Cmd.RunE = func(*cobra.Command, []string) error {
				assert.Equal(t, expected, conf)
				return nil
			}
			assert.NoError(t, Cmd.Execute())
		})
	}

	reset()
	Cmd.SetArgs([]string{"--kind=cuckoo"})
	assert.Error(t, Cmd.Execute())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "perf.yaml")
	bytes, err := yaml.Marshal(map[string]any{
		"kind":            "CHAINING",
		"capacity":        16,
		"requestRate":     250.0,
		"keysCardinality": 64,
		"duration":        "150ms",
		"verify":          true,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(valid, bytes, 0o600))

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("kind: cuckoo\n"), 0o600))

	for _, test := range []struct {
		name     string
		file     string
		expected func(c *perf.Config)
		isErr    bool
	}{
		{"valid", valid, func(c *perf.Config) {
			c.Kind = collection.Chaining
			c.Capacity = 16
			c.RequestRate = 250
			c.KeysCardinality = 64
			c.Duration = 150 * time.Millisecond
			c.Verify = true
		}, false},
		{"invalid-kind", invalid, nil, true},
		{"missing", filepath.Join(dir, "missing.yaml"), nil, true},
	} {
		t.Run(test.name, func(t *testing.T) {
			reset()
			configFile = test.file
			v := viper.New()
			setConfigPath(v)

			c := perf.NewConfig()
			err := loadConfig(v, &c)
			assert.Equal(t, test.isErr, err != nil)
			if !test.isErr {
				expected := perf.NewConfig()
				test.expected(&expected)
				assert.Equal(t, expected, c)
			}
		})
	}
}

func TestCmdRun(t *testing.T) {
	reset()
	Cmd.RunE = exec
	Cmd.SetArgs([]string{"-k", "chaining", "-c", "32", "-d", "100ms", "--report-interval=0", "--verify", "-m", "localhost:0"})
	assert.NoError(t, Cmd.Execute())

	dir := t.TempDir()
	file := filepath.Join(dir, "perf.yaml")
	require.NoError(t, os.WriteFile(file, []byte("capacity: 8\nduration: 100ms\nreportInterval: 0s\nverify: true\n"), 0o600))

	reset()
	Cmd.SetArgs([]string{"-f", file})
	assert.NoError(t, Cmd.Execute())
	assert.Equal(t, 8, conf.Capacity)
}
