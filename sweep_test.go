/*
Copyright © 2026 the CO2CH4 authors.
This file is part of CO2CH4.

CO2CH4 is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

CO2CH4 is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with CO2CH4.  If not, see <http://www.gnu.org/licenses/>.
*/

package co2ch4

import (
	"context"
	"errors"
	"io"
	"math"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/co2ch4/nlp"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func TestGrid(t *testing.T) {
	g := Grid{
		{Parameter: "a", Values: []float64{1, 2}},
		{Parameter: "b", Values: []float64{10, 20, 30}},
	}
	if g.Len() != 6 {
		t.Fatalf("Len = %d, want 6", g.Len())
	}
	want := [][2]float64{{1, 10}, {1, 20}, {1, 30}, {2, 10}, {2, 20}, {2, 30}}
	for i, w := range want {
		p := g.Point(i)
		if p[0].Name != "a" || p[1].Name != "b" || p[0].Value != w[0] || p[1].Value != w[1] {
			t.Errorf("Point(%d) = %v, want %v", i, p, w)
		}
	}
	if (Grid{}).Len() != 0 {
		t.Error("empty grid has points")
	}
}

func dfmSweep(s nlp.Solver) *Sweep {
	return &Sweep{
		Config:    fixedConfigs["DFM-PEMEL"],
		Objective: ObjectiveTAC,
		Solver:    s,
		Log:       quietLog(),
	}
}

func TestSweepRun(t *testing.T) {
	grid := Grid{
		{Parameter: "co2_target", Values: []float64{0.5, 1}},
		{Parameter: "electricity_price", Values: []float64{0.03, 0.05, 0.1}},
	}
	run := func(workers int) []Scenario {
		s := dfmSweep(&fakeSolver{})
		s.Workers = workers
		res, err := s.Run(context.Background(), grid)
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	res := run(4)
	if len(res) != grid.Len() {
		t.Fatalf("%d scenarios, want %d", len(res), grid.Len())
	}
	ids := make(map[string]bool)
	for i, sc := range res {
		if sc.Index != i || sc.Failed || sc.Attempts != 1 || sc.Status != nlp.Optimal {
			t.Errorf("scenario %d: %+v", i, sc)
		}
		if !reflect.DeepEqual(sc.Parameters, grid.Point(i)) {
			t.Errorf("scenario %d parameters %v, want %v", i, sc.Parameters, grid.Point(i))
		}
		if sc.Solution.Values["electricity_price"] != grid.Point(i)[1].Value {
			t.Errorf("scenario %d solved at electricity price %g", i, sc.Solution.Values["electricity_price"])
		}
		ids[sc.ID] = true
		if sc.Config != fixedConfigs["DFM-PEMEL"].ID() {
			t.Errorf("scenario %d configuration id %q", i, sc.Config)
		}
	}
	if len(ids) != len(res) {
		t.Errorf("%d distinct ids for %d scenarios", len(ids), len(res))
	}

	// Results do not depend on the number of workers.
	serial := run(1)
	for i := range res {
		if res[i].ID != serial[i].ID || !reflect.DeepEqual(res[i].Solution.Record(), serial[i].Solution.Record()) {
			t.Errorf("scenario %d differs between 4 and 1 workers", i)
		}
	}
	for i := 1; i < 3; i++ {
		if res[i].Solution.Costs.TAC <= res[i-1].Solution.Costs.TAC {
			t.Errorf("TAC not increasing with electricity price: %g, %g",
				res[i-1].Solution.Costs.TAC, res[i].Solution.Costs.TAC)
		}
	}
}

func TestSweepRetries(t *testing.T) {
	grid := Grid{{Parameter: "electricity_price", Values: []float64{0.05}}}

	fs := &fakeSolver{failures: 2, fail: nlp.IterationLimit}
	s := dfmSweep(fs)
	s.Retries = 2
	res, err := s.Run(context.Background(), grid)
	if err != nil {
		t.Fatal(err)
	}
	if sc := res[0]; sc.Failed || sc.Attempts != 3 || sc.Status != nlp.Optimal {
		t.Errorf("scenario: failed %v, attempts %d, status %v", sc.Failed, sc.Attempts, sc.Status)
	}
	if len(fs.starts) != 3 || reflect.DeepEqual(fs.starts[1], fs.starts[2]) {
		t.Errorf("retries should start from different points: %v", fs.starts)
	}
	for _, x := range fs.starts[1] {
		if math.IsNaN(x) {
			t.Error("perturbed start leaves a decision unset")
		}
	}

	fs = &fakeSolver{failures: 5, fail: nlp.Infeasible}
	s = dfmSweep(fs)
	s.Retries = 1
	res, err = s.Run(context.Background(), grid)
	if err != nil {
		t.Fatal(err)
	}
	sc := res[0]
	var sf *SolveFailure
	if !sc.Failed || sc.Attempts != 2 || sc.Status != nlp.Infeasible || !errors.As(sc.Err, &sf) {
		t.Errorf("scenario: failed %v, attempts %d, status %v, err %v", sc.Failed, sc.Attempts, sc.Status, sc.Err)
	}
	if sc.Solution == nil {
		t.Error("failed scenario has no best point")
	}
	if sc.Outcome() != "infeasible" {
		t.Errorf("outcome = %q", sc.Outcome())
	}
}

func TestSweepDomainError(t *testing.T) {
	s := dfmSweep(&fakeSolver{})
	res, err := s.Run(context.Background(), Grid{{Parameter: "operating_hours", Values: []float64{8000, 9000}}})
	if err != nil {
		t.Fatal(err)
	}
	if res[0].Failed {
		t.Errorf("scenario 0 failed: %v", res[0].Err)
	}
	var de *DomainError
	if !res[1].Failed || !errors.As(res[1].Err, &de) || res[1].Attempts != 0 {
		t.Errorf("scenario 1: %+v", res[1])
	}
	if got := res[1].Outcome(); got != "domain-error" {
		t.Errorf("outcome = %q, want domain-error", got)
	}
	if got := res[0].Outcome(); got != "optimal" {
		t.Errorf("outcome = %q, want optimal", got)
	}
}

func TestSweepWarmStart(t *testing.T) {
	fs := &fakeSolver{}
	s := dfmSweep(fs)
	s.WarmStart = true
	s.Workers = 1
	if _, err := s.Run(context.Background(), Grid{{Parameter: "electricity_price", Values: []float64{0.03, 0.05}}}); err != nil {
		t.Fatal(err)
	}
	if len(fs.starts) != 2 {
		t.Fatalf("%d solves", len(fs.starts))
	}
	if len(fs.starts[0]) != 0 {
		t.Errorf("first point warm started: %v", fs.starts[0])
	}
	var set int
	for _, x := range fs.starts[1] {
		if !math.IsNaN(x) {
			set++
		}
	}
	if set == 0 {
		t.Error("second point not warm started")
	}
}

func TestSweepInvalid(t *testing.T) {
	for _, test := range []struct {
		name  string
		obj   Objective
		grid  Grid
		field string
	}{
		{"empty", ObjectiveTAC, nil, "grid"},
		{"undeclared", ObjectiveTAC, Grid{{Parameter: "gold_price", Values: []float64{1}}}, "grid.gold_price"},
		{"twice", ObjectiveTAC, Grid{
			{Parameter: "ch4_price", Values: []float64{1}},
			{Parameter: "ch4_price", Values: []float64{2}},
		}, "grid.ch4_price"},
		{"no values", ObjectiveTAC, Grid{{Parameter: "ch4_price"}}, "grid.ch4_price"},
		{"objective", Objective(0), Grid{{Parameter: "ch4_price", Values: []float64{1}}}, "objective"},
	} {
		t.Run(test.name, func(t *testing.T) {
			s := dfmSweep(&fakeSolver{})
			s.Objective = test.obj
			res, err := s.Run(context.Background(), test.grid)
			var ce *ConfigurationError
			if !errors.As(err, &ce) || ce.Field != test.field {
				t.Errorf("error = %v, want a ConfigurationError for %s", err, test.field)
			}
			if res != nil {
				t.Error("scenarios returned for an invalid sweep")
			}
		})
	}
	s := dfmSweep(&fakeSolver{})
	s.Config.Choices = map[string]string{ElectrolyserChoice: "PEM"}
	var be *BuildError
	if _, err := s.Run(context.Background(), Grid{{Parameter: "ch4_price", Values: []float64{1}}}); !errors.As(err, &be) {
		t.Errorf("error = %v, want a BuildError", err)
	}
}

func TestSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := dfmSweep(&fakeSolver{})
	res, err := s.Run(ctx, Grid{{Parameter: "ch4_price", Values: []float64{1, 2, 3}}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v", err)
	}
	if len(res) != 3 {
		t.Fatalf("%d scenarios", len(res))
	}
	for _, sc := range res {
		if !sc.Failed || sc.ID == "" || sc.Outcome() != "cancelled" {
			t.Errorf("scenario %d: failed %v, id %q, outcome %s", sc.Index, sc.Failed, sc.ID, sc.Outcome())
		}
	}
}

func sorbentSweep(t *testing.T, s nlp.Solver) []Scenario {
	t.Helper()
	sw := &Sweep{
		Config:    fixedConfigs["TVSA-AEL"],
		Objective: ObjectiveTAC,
		Solver:    s,
		Log:       quietLog(),
	}
	sw.Config.Parameters = map[string]float64{"co2_target": 1}
	res, err := sw.Run(context.Background(), Grid{{Parameter: "sorbent_cost", Values: []float64{5, 15, 45}}})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func checkIncreasing(t *testing.T, res []Scenario) {
	t.Helper()
	for i, sc := range res {
		if sc.Failed {
			t.Fatalf("scenario %d failed: %v", i, sc.Err)
		}
		if i > 0 && sc.Solution.Costs.TAC <= res[i-1].Solution.Costs.TAC {
			t.Errorf("TAC at sorbent cost %g is %g, not above %g",
				sc.Parameters[0].Value, sc.Solution.Costs.TAC, res[i-1].Solution.Costs.TAC)
		}
	}
}

func TestSorbentCostSweep(t *testing.T) {
	checkIncreasing(t, sorbentSweep(t, &fakeSolver{}))
}

func TestSorbentCostSweepOptimised(t *testing.T) {
	if testing.Short() {
		t.Skip("optimisation in short mode")
	}
	checkIncreasing(t, sorbentSweep(t, nil))
}
