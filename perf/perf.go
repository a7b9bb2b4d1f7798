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
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/bmizerany/perks/quantile"
	"github.com/dustin/go-humanize"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"golang.org/x/time/rate"

	"github.com/streamnative/hashtable/common"
	"github.com/streamnative/hashtable/common/collection"
	"github.com/streamnative/hashtable/common/metrics"
)

type Stats struct {
	Inserts  uint64
	Rejected uint64
	Finds    uint64
	Hits     uint64
	Removes  uint64
	Removed  uint64
	// Mismatches counts results that disagree with the reference model.
	// Always zero unless verification is enabled.
	Mismatches uint64
	Size       int
}

func (s Stats) Ops() uint64 {
	return s.Inserts + s.Finds + s.Removes
}

// Perf drives a randomized insert/find/remove workload against one table
// from a single goroutine.
type Perf interface {
	Run(ctx context.Context) (Stats, error)
	SetRequestRate(requestRate float64)
}

func New(config Config) Perf {
	p := &perf{
		config: config,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	p.limiter = rate.NewLimiter(limit(config.RequestRate), burst(config.RequestRate))
	return p
}

type perf struct {
	config  Config
	limiter *rate.Limiter
	rand    *rand.Rand

	table   collection.Table[int64, int64]
	model   *treemap.Map
	stats   Stats
	latency map[string]*quantile.Stream
}

func limit(requestRate float64) rate.Limit {
	if requestRate <= 0 {
		return rate.Inf
	}
	return rate.Limit(requestRate)
}

func burst(requestRate float64) int {
	return max(1, int(requestRate))
}

func (p *perf) SetRequestRate(requestRate float64) {
	slog.Info(
		"Updating request rate",
		slog.Float64("rate", requestRate),
	)
	p.limiter.SetLimit(limit(requestRate))
	p.limiter.SetBurst(burst(requestRate))
}

func (p *perf) Run(ctx context.Context) (Stats, error) {
	if err := p.config.Validate(); err != nil {
		return Stats{}, err
	}

	slog.Info(
		"Starting hashtable perf",
		slog.Any("config", p.config),
	)

	hash, err := common.HashByName[int64](p.config.Hash, p.config.Capacity)
	if err != nil {
		return Stats{}, err
	}
	table, err := collection.New[int64, int64](p.config.Kind, p.config.Capacity, hash)
	if err != nil {
		return Stats{}, err
	}
	instrumented := collection.NewInstrumented(table, string(p.config.Kind))
	defer instrumented.Close()
	p.table = instrumented

	if p.config.Verify {
		p.model = treemap.NewWith(utils.Int64Comparator)
	}

	labels := metrics.LabelsForTable(string(p.config.Kind))
	histograms := map[string]metrics.LatencyHistogram{}
	p.latency = map[string]*quantile.Stream{}
	for _, op := range []string{"insert", "find", "remove"} {
		histograms[op] = metrics.NewLatencyHistogram("hashtable_operation_latency_"+op,
			fmt.Sprintf("Latency of %s operations", op), labels)
		p.latency[op] = quantile.NewTargeted(0.50, 0.95, 0.99, 0.999, 1.0)
	}

	if p.config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Duration)
		defer cancel()
	}

	var reportCh <-chan time.Time
	if p.config.ReportInterval > 0 {
		ticker := time.NewTicker(p.config.ReportInterval)
		defer ticker.Stop()
		reportCh = ticker.C
	}
	lastReport := time.Now()
	lastOps := uint64(0)

	for {
		select {
		case <-reportCh:
			elapsed := time.Since(lastReport)
			p.report(float64(p.stats.Ops()-lastOps) / elapsed.Seconds())
			lastReport = time.Now()
			lastOps = p.stats.Ops()
		default:
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return p.finish(), nil
		}

		op, elapsed := p.step()
		histograms[op].Record(elapsed)
		p.latency[op].Insert(float64(elapsed.Nanoseconds()) / 1000.0)
	}
}

// step applies one random operation and returns its name and latency.
func (p *perf) step() (string, time.Duration) {
	key := p.rand.Int63n(int64(p.config.KeysCardinality))
	dice := p.rand.Float64() * 100

	switch {
	case dice < p.config.ReadPercentage:
		start := time.Now()
		value, found := p.table.Find(key)
		elapsed := time.Since(start)
		p.stats.Finds++
		if found {
			p.stats.Hits++
		}
		p.checkFind(key, value, found)
		return "find", elapsed

	case dice < p.config.ReadPercentage+p.config.RemovePercentage:
		start := time.Now()
		ok := p.table.Remove(key)
		elapsed := time.Since(start)
		p.stats.Removes++
		if ok {
			p.stats.Removed++
		}
		p.checkRemove(key, ok)
		return "remove", elapsed

	default:
		// Insert only absent keys, so both table kinds agree on the
		// meaning of a key being present.
		start := time.Now()
		if value, found := p.table.Find(key); found {
			elapsed := time.Since(start)
			p.stats.Finds++
			p.stats.Hits++
			p.checkFind(key, value, found)
			return "find", elapsed
		}
		value := p.rand.Int63()
		start = time.Now()
		ok := p.table.Insert(key, value)
		elapsed := time.Since(start)
		p.stats.Inserts++
		if !ok {
			p.stats.Rejected++
		}
		p.checkInsert(key, value, ok)
		return "insert", elapsed
	}
}

func (p *perf) checkFind(key int64, value int64, found bool) {
	if p.model == nil {
		return
	}
	expected, ok := p.model.Get(key)
	if ok != found || (ok && expected.(int64) != value) {
		p.mismatch("find", key)
	}
}

func (p *perf) checkRemove(key int64, removed bool) {
	if p.model == nil {
		return
	}
	_, ok := p.model.Get(key)
	if ok != removed {
		p.mismatch("remove", key)
	}
	p.model.Remove(key)
}

func (p *perf) checkInsert(key int64, value int64, inserted bool) {
	if p.model == nil {
		return
	}
	expected := p.config.Kind == collection.Chaining || p.model.Size() < p.config.Capacity
	if expected != inserted {
		p.mismatch("insert", key)
	}
	if inserted {
		p.model.Put(key, value)
	}
}

func (p *perf) mismatch(op string, key int64) {
	p.stats.Mismatches++
	slog.Warn(
		"Table disagrees with reference model",
		slog.String("op", op),
		slog.Int64("key", key),
	)
}

func (p *perf) finish() Stats {
	p.stats.Size = p.table.Size()

	if p.model != nil {
		if p.model.Size() != p.stats.Size {
			p.mismatch("size", int64(p.model.Size()))
		}
		it := p.model.Iterator()
		for it.Next() {
			value, found := p.table.Find(it.Key().(int64))
			if !found || value != it.Value().(int64) {
				p.mismatch("verify", it.Key().(int64))
			}
		}
	}

	p.report(0)
	slog.Info(
		"Hashtable perf completed",
		slog.String("ops", humanize.Comma(int64(p.stats.Ops()))),
		slog.Uint64("mismatches", p.stats.Mismatches),
	)
	return p.stats
}

func (p *perf) report(opsRate float64) {
	q := func(op string) string {
		s := p.latency[op]
		return fmt.Sprintf("50%% %5.2f - 95%% %5.2f - 99%% %5.2f - 99.9%% %5.2f - max %6.2f",
			s.Query(0.5), s.Query(0.95), s.Query(0.99), s.Query(0.999), s.Query(1.0))
	}

	slog.Info(
		fmt.Sprintf("Stats - %s ops/s - Size %s/%s\n\tInsert latency us: %s\n\tFind   latency us: %s\n\tRemove latency us: %s",
			humanize.CommafWithDigits(opsRate, 1),
			humanize.Comma(int64(p.table.Size())),
			humanize.Comma(int64(p.table.Capacity())),
			q("insert"), q("find"), q("remove")),
		slog.Uint64("inserts", p.stats.Inserts),
		slog.Uint64("rejected", p.stats.Rejected),
		slog.Uint64("finds", p.stats.Finds),
		slog.Uint64("hits", p.stats.Hits),
		slog.Uint64("removes", p.stats.Removes),
	)

	for _, s := range p.latency {
		s.Reset()
	}
}
