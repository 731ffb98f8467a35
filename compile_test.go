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
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/co2ch4/nlp"
)

func TestParseObjective(t *testing.T) {
	for _, test := range []struct {
		in   string
		want Objective
		err  bool
	}{
		{in: "tac", want: ObjectiveTAC},
		{in: " TAC ", want: ObjectiveTAC},
		{in: "Profit", want: ObjectiveProfit},
		{in: "npv", err: true},
		{in: "", err: true},
	} {
		got, err := ParseObjective(test.in)
		if test.err {
			var ce *ConfigurationError
			if !errors.As(err, &ce) || ce.Field != "objective" {
				t.Errorf("%q: error = %v, want a ConfigurationError", test.in, err)
			}
			continue
		}
		if err != nil || got != test.want {
			t.Errorf("%q: got %v, %v; want %v", test.in, got, err, test.want)
		}
		if got.String() != strings.ToLower(strings.TrimSpace(test.in)) {
			t.Errorf("%v.String() = %q", got, got.String())
		}
	}
	if _, err := Compile(NewModel(nil), Objective(7)); err == nil {
		t.Error("unsupported objective compiled")
	}
}

func TestProblem(t *testing.T) {
	m := assemble(t, freeConfig)
	c, err := Compile(m, ObjectiveTAC)
	if err != nil {
		t.Fatal(err)
	}
	p := c.Problem()
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(p.Groups) != len(m.Groups()) {
		t.Fatalf("%d problem groups, %d model groups", len(p.Groups), len(m.Groups()))
	}
	for gi, g := range m.Groups() {
		if len(p.Groups[gi]) != len(g.Variants) {
			t.Errorf("group %s: %d variables for %d variants", g.Point, len(p.Groups[gi]), len(g.Variants))
		}
	}
	var nInt int
	for _, v := range p.Variables {
		if v.Integer {
			nInt++
			if v.Lower != 0 || v.Upper != 1 {
				t.Errorf("selection %s bounds [%g, %g]", v.Name, v.Lower, v.Upper)
			}
			continue
		}
		if v.Lower != 0 || v.Upper > 1 || v.Initial < 0 || v.Initial > v.Upper {
			t.Errorf("decision %s not scaled: [%g, %g] from %g", v.Name, v.Lower, v.Upper, v.Initial)
		}
	}
	var nVariants int
	for _, g := range m.Groups() {
		nVariants += len(g.Variants)
	}
	if nInt != nVariants {
		t.Errorf("%d integer variables, want %d", nInt, nVariants)
	}

	x := make([]float64, len(p.Variables))
	for i, v := range p.Variables {
		x[i] = v.Initial
	}
	for _, g := range p.Groups {
		x[g[0]] = 1
	}
	eq, ineq := make([]float64, p.NumEq), make([]float64, p.NumIneq)
	f1 := p.Func(x, eq, ineq)
	eq2, ineq2 := make([]float64, p.NumEq), make([]float64, p.NumIneq)
	f2 := p.Func(x, eq2, ineq2)
	if math.IsNaN(f1) || f1 != f2 || !reflect.DeepEqual(eq, eq2) || !reflect.DeepEqual(ineq, ineq2) {
		t.Errorf("problem function not deterministic: %g, %g", f1, f2)
	}
}

func fixedCompiled(t *testing.T, s nlp.Solver) *Compiled {
	t.Helper()
	cfg := fixedConfigs["DFM-PEMEL"]
	cfg.Parameters = map[string]float64{"co2_target": 1, "electricity_price": 0.05}
	c, err := Compile(assemble(t, cfg), ObjectiveTAC)
	if err != nil {
		t.Fatal(err)
	}
	c.Solver = s
	return c
}

func TestSolveFake(t *testing.T) {
	c := fixedCompiled(t, &fakeSolver{})
	sol, err := c.Solve(context.Background(), SolveSettings{})
	if err != nil {
		t.Fatal(err)
	}
	if sol.Status != nlp.Optimal {
		t.Errorf("status = %v", sol.Status)
	}
	r := sol.Record()
	for _, k := range []string{"TAC", "CAPEX", "OPEX", "Revenue", "Profit", "CRF", "Power", "Objective"} {
		if _, ok := r[k]; !ok {
			t.Errorf("record has no %s", k)
		}
	}
	if r["TAC"] != sol.ObjectiveValue || r["TAC"] != sol.Values["econ.TAC"] {
		t.Errorf("TAC %g, objective %g, value %g", r["TAC"], sol.ObjectiveValue, sol.Values["econ.TAC"])
	}
	if len(sol.Streams) == 0 {
		t.Error("no streams")
	}
	want := map[string]string{ElectrolyserChoice: PEMEL, AdsorptionChoice: DFMRoute}
	for k, v := range want {
		if sol.Choices[k] != v {
			t.Errorf("choice %s = %s, want %s", k, sol.Choices[k], v)
		}
	}
	for _, a := range sol.Constraints {
		if a.Kind == Equality && !a.Active {
			t.Errorf("equality %s not active", a.Name)
		}
	}

	sol2, err := fixedCompiled(t, &fakeSolver{}).Solve(context.Background(), SolveSettings{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(sol.Record(), sol2.Record()); len(diff) > 0 {
		t.Errorf("solves differ: %v", diff)
	}
}

func TestSolveFreeChoices(t *testing.T) {
	m := assemble(t, freeConfig)
	c, err := Compile(m, ObjectiveProfit)
	if err != nil {
		t.Fatal(err)
	}
	c.Solver = &fakeSolver{}
	sol, err := c.Solve(context.Background(), SolveSettings{})
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range m.Groups() {
		if got := sol.Choices[g.Point]; got != g.Variants[0] {
			t.Errorf("choice %s = %s, want %s", g.Point, got, g.Variants[0])
		}
	}
	if !approx(sol.ObjectiveValue, sol.Costs.Profit, 1e-12) {
		t.Errorf("objective %g, profit %g", sol.ObjectiveValue, sol.Costs.Profit)
	}
}

func TestSolveFailure(t *testing.T) {
	c := fixedCompiled(t, &fakeSolver{failures: 1, fail: nlp.Infeasible})
	sol, err := c.Solve(context.Background(), SolveSettings{})
	var sf *SolveFailure
	if !errors.As(err, &sf) || sf.Status != nlp.Infeasible {
		t.Fatalf("error = %v, want a SolveFailure", err)
	}
	if sol == nil || sol.Status != nlp.Infeasible {
		t.Errorf("best point not returned: %v", sol)
	}
}

func TestWarmStart(t *testing.T) {
	s := &fakeSolver{}
	c := fixedCompiled(t, s)
	var name string
	var v *Var
	for _, vv := range c.Model.Vars() {
		if vv.Kind == Decision && vv.Upper > vv.Lower && !math.IsInf(vv.Upper, 0) {
			v, name = vv, vv.Name
			break
		}
	}
	if v == nil {
		t.Fatal("no bounded decision")
	}
	x := v.Lower + 0.25*(v.Upper-v.Lower)
	sol, err := c.Solve(context.Background(), SolveSettings{WarmStart: map[string]float64{name: x, "co2_target": 3}})
	if err != nil {
		t.Fatal(err)
	}
	if !approx(sol.Decisions[name], x, 1e-9) {
		t.Errorf("%s = %g, want %g", name, sol.Decisions[name], x)
	}
	if sol.Values["co2_target"] != 1 {
		t.Error("warm start changed a parameter")
	}

	var ce *ConfigurationError
	if _, err := c.Solve(context.Background(), SolveSettings{WarmStart: map[string]float64{"nope": 1}}); !errors.As(err, &ce) {
		t.Errorf("error = %v, want a ConfigurationError", err)
	}
}

func TestSolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fixedCompiled(t, &fakeSolver{}).Solve(ctx, SolveSettings{}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v", err)
	}
}

func TestSolveDFMPEMEL(t *testing.T) {
	if testing.Short() {
		t.Skip("optimisation in short mode")
	}
	c := fixedCompiled(t, nil)
	sol, err := c.Solve(context.Background(), SolveSettings{})
	if err != nil {
		t.Fatal(err)
	}
	if sol.Status != nlp.Optimal {
		t.Fatalf("status = %v, want optimal", sol.Status)
	}
	if sol.Costs.TAC <= sol.Costs.OPEX {
		t.Errorf("TAC %g should exceed OPEX %g", sol.Costs.TAC, sol.Costs.OPEX)
	}
	for _, a := range sol.Constraints {
		if a.Kind == Equality && math.Abs(a.Scaled) > 1e-4 {
			t.Errorf("%s residual %g", a.Name, a.Scaled)
		}
	}
}

func TestSolveZeroTarget(t *testing.T) {
	if testing.Short() {
		t.Skip("optimisation in short mode")
	}
	cfg := fixedConfigs["DFM-PEMEL"]
	cfg.Parameters = map[string]float64{"co2_target": 0}
	m, err := Assemble(cfg, nil)
	var be *BuildError
	if errors.As(err, &be) {
		t.Fatalf("zero target is a build error: %v", err)
	}
	if err != nil {
		t.Fatal(err)
	}
	c, err := Compile(m, ObjectiveTAC)
	if err != nil {
		t.Fatal(err)
	}
	sol, err := c.Solve(context.Background(), SolveSettings{})
	if err != nil {
		t.Fatal(err)
	}
	if !sol.Status.Success() {
		t.Errorf("status = %v", sol.Status)
	}
	if math.Abs(sol.Costs.RevenueTotal) > 1e-6 {
		t.Errorf("revenue = %g, want 0", sol.Costs.RevenueTotal)
	}
}
