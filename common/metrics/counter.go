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

package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Counter interface {
	Inc()
	Add(incr int)
	// With returns a counter on the same instrument carrying extra labels.
	With(labels map[string]any) Counter
}

type counter struct {
	c     metric.Int64Counter
	attrs []attribute.KeyValue
	opt   metric.MeasurementOption
}

func newCounterWithAttrs(c metric.Int64Counter, attrs []attribute.KeyValue) *counter {
	return &counter{c: c, attrs: attrs, opt: metric.WithAttributes(attrs...)}
}

func (c *counter) Inc() {
	c.Add(1)
}

func (c *counter) Add(incr int) {
	c.c.Add(context.Background(), int64(incr), c.opt)
}

func (c *counter) With(labels map[string]any) Counter {
	attrs := make([]attribute.KeyValue, 0, len(c.attrs)+len(labels))
	attrs = append(attrs, c.attrs...)
	attrs = append(attrs, getAttrs(labels)...)
	return newCounterWithAttrs(c.c, attrs)
}

func NewCounter(name string, description string, unit Unit, labels map[string]any) Counter {
	c, err := meter.Int64Counter(name,
		metric.WithUnit(string(unit)),
		metric.WithDescription(description))
	fatalOnErr(err, name)
	return newCounterWithAttrs(c, getAttrs(labels))
}
