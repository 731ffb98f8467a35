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
	"sort"
	"testing"

	"github.com/kr/pretty"
	"github.com/spatialmodel/co2ch4/nlp"
	"github.com/spatialmodel/co2ch4/property"
)

func TestAssembleDefault(t *testing.T) {
	m := assemble(t, Configuration{})
	for _, name := range []string{"air", "fan", "dac", "dfm", "water_supply", "electrolyser", "product", "o2_vent", "air_vent"} {
		if m.Unit(name) == nil {
			t.Errorf("missing unit %s", name)
		}
	}
	for _, name := range []string{"tvsa", "compressor", "methanator", "separator"} {
		if m.Unit(name) != nil {
			t.Errorf("unexpected unit %s", name)
		}
	}
	if len(m.Groups()) != 0 {
		t.Errorf("default superstructure has %d free groups", len(m.Groups()))
	}
	want := map[string]string{
		ElectrolyserChoice: PEMEL,
		AdsorptionChoice:   DFMRoute,
		FanChoice:          VaneAxial,
	}
	if diff := pretty.Diff(m.Choices(), want); len(diff) > 0 {
		t.Error(diff)
	}
}

func TestAssembleFree(t *testing.T) {
	m := assemble(t, freeConfig)
	got := make(map[string]int)
	for _, g := range m.Groups() {
		got[g.Point] = len(g.Vars)
	}
	want := map[string]int{
		ElectrolyserChoice: len(ElectrolyserVariants),
		AdsorptionChoice:   2,
		FanChoice:          len(FanVariants),
		SorbentChoice:      len(SorbentVariants),
		SteamChoice:        len(SteamVariants),
	}
	if diff := pretty.Diff(got, want); len(diff) > 0 {
		t.Error(diff)
	}
	for _, v := range SorbentVariants {
		if m.Unit("tvsa_"+ident(SorbentChoice, v)) == nil {
			t.Errorf("missing TVSA unit for %s", v)
		}
	}
}

// unitMass returns the total inlet and outlet mass flow of u [kg/s].
func unitMass(u *Unit, v *Values) (in, out float64) {
	for _, p := range u.Inlets {
		in += p.Flows(v).Mass()
	}
	for _, p := range u.Outlets {
		out += p.Flows(v).Mass()
	}
	return in, out
}

// checkBalances tests conservation of mass in every unit that is not a
// splitter, source or sink, and that every port composition sums to one.
func checkBalances(t *testing.T, m *Model, v *Values) {
	t.Helper()
	for _, u := range m.Units() {
		if u.Type == SourceUnit || u.Type == SinkUnit || u.Type == SplitterUnit {
			continue
		}
		in, out := unitMass(u, v)
		if math.IsNaN(in) || math.IsNaN(out) || !approx(in, out, 1e-9) {
			t.Errorf("%s (%v): inlet mass %g kg/s, outlet mass %g kg/s", u.Name, u.Type, in, out)
		}
		for _, ports := range [][]*Port{u.Inlets, u.Outlets} {
			for _, p := range ports {
				if s := p.Composition(v).Sum(); math.Abs(s-1) > 1e-6 {
					t.Errorf("%s composition sums to %g", p.FullName(), s)
				}
			}
		}
	}
}

func TestMassConservation(t *testing.T) {
	names := make([]string, 0, len(fixedConfigs))
	for n := range fixedConfigs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			cfg := fixedConfigs[name]
			cfg.Parameters = map[string]float64{"co2_target": 1}
			m := assemble(t, cfg)
			checkBalances(t, m, evaluated(t, m))
		})
	}
}

func TestMassConservationAllUnitTypes(t *testing.T) {
	seen := make(map[UnitType]bool)
	for _, cfg := range fixedConfigs {
		for _, u := range assemble(t, cfg).Units() {
			seen[u.Type] = true
		}
	}
	for ut := SourceUnit; ut <= SeparatorUnit; ut++ {
		if ut == SplitterUnit {
			continue
		}
		if !seen[ut] {
			t.Errorf("no test configuration contains a %v unit", ut)
		}
	}
}

func TestReactorStoichiometry(t *testing.T) {
	m := assemble(t, fixedConfigs["DFM-PEMEL"])
	v := evaluated(t, m)
	r := m.Unit("dfm")
	in := r.Inlet("co2").Flows(v)
	h := r.Inlet("h2").Flows(v)
	out := r.Outlet("out").Flows(v)
	ch4 := out[property.CH4]
	if ch4 <= 0 {
		t.Fatalf("no methane made: %v", out)
	}
	if !approx(in[property.CO2]-out[property.CO2], ch4, 1e-9) {
		t.Errorf("CO2 converted %g != CH4 made %g", in[property.CO2]-out[property.CO2], ch4)
	}
	if !approx(h[property.H2]-out[property.H2], 4*ch4, 1e-9) {
		t.Errorf("H2 consumed %g != 4 × CH4 made %g", h[property.H2]-out[property.H2], 4*ch4)
	}
	if !approx(out[property.H2O], 2*ch4, 1e-9) {
		t.Errorf("water made %g != 2 × CH4 made %g", out[property.H2O], 2*ch4)
	}
}

func TestWaterRecycleConverges(t *testing.T) {
	m := assemble(t, fixedConfigs["TVSA-recycle"])
	v := evaluated(t, m)
	sep := m.Unit("separator").Outlet("liquid")
	mix := m.Unit("water_mix")
	if mix == nil {
		t.Fatal("no water_mix unit")
	}
	if !approx(v.At(sep.F), v.At(mix.Inlets[1].F), 1e-9) {
		t.Errorf("recycle not converged: separator %g, mixer %g", v.At(sep.F), v.At(mix.Inlets[1].F))
	}
	if v.At(sep.F) <= 0 {
		t.Error("nothing condensed")
	}
	// The electrolysers get their whole demand whatever is recycled.
	var demand float64
	for _, name := range []string{"methanator.h2_demand"} {
		id, ok := m.Lookup(name)
		if !ok {
			t.Fatalf("missing %s", name)
		}
		demand += v.At(id)
	}
	if got := v.At(m.Unit("electrolyser").Inlet("water").F); !approx(got, demand, 1e-9) {
		t.Errorf("electrolyser water %g, demand %g", got, demand)
	}
}

func TestZeroTargetBalances(t *testing.T) {
	for name, cfg := range fixedConfigs {
		t.Run(name, func(t *testing.T) {
			cfg.Parameters = map[string]float64{"co2_target": 0}
			m, err := Assemble(cfg, nil)
			if err != nil {
				var be *BuildError
				if errors.As(err, &be) {
					t.Fatalf("zero target is a build error: %v", err)
				}
				t.Fatal(err)
			}
			v := evaluated(t, m)
			checkBalances(t, m, v)
			if r := v.At(m.econ.rev); r != 0 {
				t.Errorf("revenue = %g, want 0", r)
			}
			for _, c := range m.Constraints() {
				if r := c.F(v); math.IsNaN(r) || math.IsInf(r, 0) {
					t.Errorf("constraint %s = %g", c.Name, r)
				}
			}
		})
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Configuration
		build   bool
		dom     bool
		confErr string
	}{
		{
			name:  "unknown electrolyser",
			cfg:   Configuration{Choices: map[string]string{ElectrolyserChoice: "alkaline-ish"}},
			build: true,
		},
		{
			name:  "unknown choice point",
			cfg:   Configuration{Choices: map[string]string{"compressor": "screw"}},
			build: true,
		},
		{
			name:  "recycle without separator",
			cfg:   Configuration{Ancillaries: Ancillaries{WaterRecycle: true}},
			build: true,
		},
		{
			name:    "unknown unit",
			cfg:     Configuration{Units: map[string]map[string]float64{"boiler": {"U": 1}}},
			confErr: "units.boiler",
		},
		{
			name:    "unknown parameter",
			cfg:     Configuration{Parameters: map[string]float64{"no_such_price": 1}},
			confErr: "no_such_price",
		},
		{
			name: "hard limit",
			cfg:  Configuration{Parameters: map[string]float64{"operating_hours": 9000}},
			dom:  true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Assemble(test.cfg, nil)
			if err == nil {
				t.Fatal("expected an error")
			}
			var be *BuildError
			if errors.As(err, &be) != test.build {
				t.Errorf("BuildError = %v, want %v: %v", !test.build, test.build, err)
			}
			var de *DomainError
			if errors.As(err, &de) != test.dom {
				t.Errorf("DomainError = %v, want %v: %v", !test.dom, test.dom, err)
			}
			var ce *ConfigurationError
			if test.confErr != "" && (!errors.As(err, &ce) || ce.Field != test.confErr) {
				t.Errorf("want ConfigurationError for %s, got %v", test.confErr, err)
			}
		})
	}
}

func TestUnitOverrides(t *testing.T) {
	cfg := Configuration{
		Units:      map[string]map[string]float64{"dac": {"D": 2.5}},
		Parameters: map[string]float64{"sorbent_cost": 45},
	}
	m := assemble(t, cfg)
	for name, want := range map[string]float64{"dac.D": 2.5, "sorbent_cost": 45} {
		id, ok := m.Lookup(name)
		if !ok {
			t.Fatalf("missing %s", name)
		}
		if got := m.Var(id).Value; got != want {
			t.Errorf("%s = %g, want %g", name, got, want)
		}
	}
}

func TestFreeBranchLimitLargeAirFlow(t *testing.T) {
	m := assemble(t, Configuration{
		Choices:    map[string]string{FanChoice: Free},
		Parameters: map[string]float64{"co2_target": 5},
	})
	var fan *Group
	for _, g := range m.Groups() {
		if g.Point == FanChoice {
			fan = g
		}
	}
	if fan == nil {
		t.Fatal("no fan choice group")
	}
	for i, id := range fan.Vars {
		m.Var(id).Value = 0
		if i == 0 {
			m.Var(id).Value = 1
		}
	}
	v := evaluated(t, m)
	bigM, _ := m.Parameter("big_m")
	if air := v.At(m.Unit("fan_split").Inlet("in").F); air <= bigM {
		t.Fatalf("air flow %g does not exceed big_m %g", air, bigM)
	}
	var n int
	for _, c := range m.Constraints() {
		if c.Kind != Inequality || len(c.Name) < 10 || c.Name[:10] != "fan_split." {
			continue
		}
		n++
		if r := c.F(v) / c.Scale; r > 1e-9 {
			t.Errorf("%s violated by %g", c.Name, r)
		}
	}
	if n != len(fan.Variants) {
		t.Errorf("%d branch limits, want %d", n, len(fan.Variants))
	}
}

func TestSolveFreeFanLargeTarget(t *testing.T) {
	if testing.Short() {
		t.Skip("optimisation in short mode")
	}
	m := assemble(t, Configuration{
		Choices:    map[string]string{FanChoice: Free},
		Parameters: map[string]float64{"co2_target": 5},
	})
	c, err := Compile(m, ObjectiveTAC)
	if err != nil {
		t.Fatal(err)
	}
	c.Log = quietLog()
	sol, err := c.Solve(context.Background(), SolveSettings{})
	if err != nil {
		t.Fatal(err)
	}
	if sol.Status != nlp.Optimal {
		t.Errorf("status = %v, want optimal", sol.Status)
	}
}
