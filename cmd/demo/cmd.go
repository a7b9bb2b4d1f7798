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

package demo

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/streamnative/hashtable/common/collection"
)

const kindAll = "all"

var (
	kind string

	Cmd = &cobra.Command{
		Use:   "demo",
		Short: "Replay the reference scenarios",
		Long:  `Run init, insert, find, remove and destroy scenarios on the tables and print the table contents with the expected and actual results`,
		Args:  cobra.NoArgs,
		RunE:  exec,
	}

	ErrChecksFailed = errors.New("demo checks failed")
)

func init() {
	Cmd.Flags().StringVarP(&kind, "kind", "k", kindAll, "Table kind: probing, chaining or all")
}

func exec(cmd *cobra.Command, _ []string) error {
	var kinds []collection.Kind
	if kind == kindAll {
		kinds = []collection.Kind{collection.Probing, collection.Chaining}
	} else {
		var k collection.Kind
		if err := k.Set(kind); err != nil {
			return err
		}
		kinds = []collection.Kind{k}
	}

	failed := 0
	for _, k := range kinds {
		d := &demo{out: cmd.OutOrStdout(), kind: k}
		d.run()
		failed += d.failed
	}

	if failed > 0 {
		return errors.Wrapf(ErrChecksFailed, "%d failed", failed)
	}
	return nil
}

type scenario struct {
	name string
	run  func(d *demo)
}

type demo struct {
	out    io.Writer
	kind   collection.Kind
	failed int
}

func (d *demo) run() {
	var scenarios []scenario
	if d.kind == collection.Probing {
		scenarios = probingScenarios
	} else {
		scenarios = chainingScenarios
	}

	for _, s := range scenarios {
		d.printf("\n------------- %s %s -------------\n", d.kind, s.name)
		s.run(d)
	}
	slog.Debug(
		"Demo completed",
		slog.String("kind", string(d.kind)),
		slog.Int("failed", d.failed),
	)
}

func (d *demo) newTable() collection.Table[int, int] {
	t, err := collection.New[int, int](d.kind, d.kind.DefaultCapacity(), nil)
	if err != nil {
		panic(err)
	}
	return t
}

func (d *demo) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.out, format, args...)
}

func (d *demo) dump(t collection.Table[int, int], title string) {
	d.printf("%s\n%s", title, t.String())
}

func (d *demo) expect(what string, expected, actual any) {
	d.printf("%s expect %v, actual %v\n", what, expected, actual)
	if expected != actual {
		d.failed++
	}
}

func (d *demo) expectFind(t collection.Table[int, int], key int, expectedFound bool, expectedValue int) {
	value, found := t.Find(key)
	d.expect(fmt.Sprintf("find(%d) found", key), expectedFound, found)
	if expectedFound {
		d.expect(fmt.Sprintf("find(%d) value", key), expectedValue, value)
	}
}

func fillProbing(t collection.Table[int, int]) {
	t.Insert(1, 100)
	t.Insert(2, 200)
	t.Insert(101, 300)
	t.Insert(102, 400)
	t.Insert(101, 500)
}

func fillChaining(t collection.Table[int, int]) {
	t.Insert(1, 100)
	t.Insert(101, 200)
	t.Insert(2, 300)
	t.Insert(202, 400)
	t.Insert(3, 500)
	t.Insert(303, 600)
}

func initScenario(d *demo) {
	t := d.newTable()
	d.expect("size", 0, t.Size())
	d.expect("empty", true, t.Empty())
	d.expect("capacity", d.kind.DefaultCapacity(), t.Capacity())
	d.dump(t, "initial contents")
}

var probingScenarios = []scenario{
	{"init", initScenario},
	{"insert", func(d *demo) {
		t := d.newTable()
		fillProbing(t)
		d.dump(t, "inserted 5 entries, 4 accepted")
		d.expect("size", 4, t.Size())
	}},
	{"find", func(d *demo) {
		t := d.newTable()
		fillProbing(t)
		d.expectFind(t, 2, true, 200)
		d.expectFind(t, 102, true, 400)
		d.expectFind(t, 101, true, 300)
	}},
	{"remove", func(d *demo) {
		t := d.newTable()
		fillProbing(t)
		t.Remove(101)
		d.dump(t, "removed 101")
		t.Remove(2)
		d.dump(t, "removed 2")
		d.expectFind(t, 102, true, 400)
		d.expectFind(t, 101, false, 0)
	}},
	{"collision", func(d *demo) {
		t := d.newTable()
		t.Insert(1, 100)
		t.Insert(1001, 200)
		t.Remove(1)
		d.dump(t, "1 and 1001 collide, removed 1")
		d.expectFind(t, 1001, true, 200)
	}},
	{"size", sizeScenario(fillProbing, 4)},
}

var chainingScenarios = []scenario{
	{"init", initScenario},
	{"insert", func(d *demo) {
		t := d.newTable()
		fillChaining(t)
		d.dump(t, "inserted 6 entries")
		d.expect("size", 6, t.Size())
	}},
	{"find", func(d *demo) {
		t := d.newTable()
		fillChaining(t)
		d.expectFind(t, 1, true, 100)
		d.expectFind(t, 101, true, 200)
		d.expectFind(t, 1001, false, 0)
	}},
	{"remove", func(d *demo) {
		t := d.newTable()
		fillChaining(t)
		t.Remove(1)
		d.dump(t, "removed 1")
		t.Remove(202)
		d.dump(t, "removed 202")
		t.Remove(101)
		d.dump(t, "removed 101")
		d.expect("size", 3, t.Size())
	}},
	{"duplicate", func(d *demo) {
		t := d.newTable()
		t.Insert(7, 1)
		t.Insert(7, 2)
		d.dump(t, "inserted 7 twice")
		d.expectFind(t, 7, true, 2)
	}},
	{"size", sizeScenario(fillChaining, 6)},
}

func sizeScenario(fill func(collection.Table[int, int]), filled int) func(d *demo) {
	return func(d *demo) {
		t := d.newTable()
		d.expect("size", 0, t.Size())
		d.expect("empty", true, t.Empty())
		fill(t)
		d.expect("size", filled, t.Size())
		d.expect("empty", false, t.Empty())
		t.Destroy()
		d.expect("size", 0, t.Size())
		d.expect("empty", true, t.Empty())
		d.dump(t, "after destroy")
	}
}
