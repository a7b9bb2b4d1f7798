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
	"io"
	"log/slog"
	"reflect"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/streamnative/hashtable/cmd/flag"
	"github.com/streamnative/hashtable/common/collection"
	"github.com/streamnative/hashtable/common/metrics"
	"github.com/streamnative/hashtable/common/process"
	"github.com/streamnative/hashtable/perf"
)

var (
	conf        = perf.NewConfig()
	configFile  string
	metricsAddr string

	Cmd = &cobra.Command{
		Use:     "perf",
		Short:   "Hashtable perf tool",
		Long:    `Run a randomized insert, find and remove workload against a table and report latencies`,
		Args:    cobra.NoArgs,
		PreRunE: validate,
		RunE:    exec,
	}

	ErrModelMismatch = errors.New("table disagrees with the reference model")
)

func init() {
	flag.Kind(Cmd, &conf.Kind)
	flag.Capacity(Cmd, &conf.Capacity)
	flag.Hash(Cmd, &conf.Hash)
	flag.MetricsAddr(Cmd, &metricsAddr)
	Cmd.Flags().StringVarP(&configFile, "conf", "f", "", "Perf config file")

	Cmd.Flags().Float64VarP(&conf.RequestRate, "rate", "r", conf.RequestRate, "Request rate, ops/s. 0 is unthrottled")
	Cmd.Flags().Float64VarP(&conf.ReadPercentage, "read-percent", "p", conf.ReadPercentage, "Percentage of find requests")
	Cmd.Flags().Float64Var(&conf.RemovePercentage, "remove-percent", conf.RemovePercentage, "Percentage of remove requests")
	Cmd.Flags().Uint32Var(&conf.KeysCardinality, "keys-cardinality", conf.KeysCardinality, "Number of distinct keys")
	Cmd.Flags().DurationVar(&conf.ReportInterval, "report-interval", conf.ReportInterval, "Interval between stats reports")
	Cmd.Flags().DurationVarP(&conf.Duration, "duration", "d", conf.Duration, "Run duration. 0 runs until interrupted")
	Cmd.Flags().BoolVar(&conf.Verify, "verify", conf.Verify, "Check every result against a reference model")
}

func validate(cmd *cobra.Command, _ []string) error {
	if !cmd.Flags().Changed("capacity") {
		conf.Capacity = conf.Kind.DefaultCapacity()
	}
	return nil
}

func setConfigPath(v *viper.Viper) {
	v.SetConfigType("yaml")
	v.SetConfigFile(configFile)
}

// loadConfig overlays the keys present in the config file on top of the
// flags.
func loadConfig(v *viper.Viper, c *perf.Config) error {
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	if err := v.Unmarshal(c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		kindHook(),
		mapstructure.StringToTimeDurationHookFunc(), // default hook
		mapstructure.StringToSliceHookFunc(","),     // default hook
	))); err != nil {
		return errors.Wrap(err, "failed to load perf config")
	}
	return c.Validate()
}

func kindHook() mapstructure.DecodeHookFuncType {
	kindType := reflect.TypeOf(collection.Kind(""))
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != kindType {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		var k collection.Kind
		if err := k.Set(s); err != nil {
			return nil, err
		}
		return k, nil
	}
}

func exec(*cobra.Command, []string) error {
	var v *viper.Viper
	if configFile != "" {
		v = viper.New()
		setConfigPath(v)
		if err := loadConfig(v, &conf); err != nil {
			return err
		}
	}

	if err := conf.Validate(); err != nil {
		return err
	}
	p := perf.New(conf)

	if v != nil {
		v.OnConfigChange(func(_ fsnotify.Event) {
			reloaded := conf
			if err := loadConfig(v, &reloaded); err != nil {
				slog.Warn(
					"Failed to reload perf config",
					slog.Any("error", err),
				)
				return
			}
			p.SetRequestRate(reloaded.RequestRate)
		})
		v.WatchConfig()
	}

	var metricsServer io.Closer
	if metricsAddr != "" {
		s, err := metrics.Start(metricsAddr)
		if err != nil {
			return err
		}
		metricsServer = s
	}

	if conf.Duration > 0 {
		profiler := process.RunProfiling()
		stats, err := p.Run(context.Background())
		if closeErr := process.CloseAll(metricsServer, profiler); closeErr != nil {
			slog.Warn("Failed to shut down", slog.Any("error", closeErr))
		}
		if err != nil {
			return err
		}
		if stats.Mismatches > 0 {
			return errors.Wrapf(ErrModelMismatch, "%d mismatches", stats.Mismatches)
		}
		return nil
	}

	process.RunProcess(func() (io.Closer, error) {
		c := newCloser(context.Background(), metricsServer)
		go func() {
			if _, err := p.Run(c.ctx); err != nil {
				slog.Error("Perf run failed", slog.Any("error", err))
			}
		}()
		return c, nil
	})
	return nil
}

type closer struct {
	ctx     context.Context
	cancel  context.CancelFunc
	metrics io.Closer
}

func newCloser(ctx context.Context, metrics io.Closer) *closer {
	c := &closer{metrics: metrics}
	c.ctx, c.cancel = context.WithCancel(ctx)
	return c
}

func (c *closer) Close() error {
	c.cancel()
	return process.CloseAll(c.metrics)
}
