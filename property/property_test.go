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

package property

import (
	"math"
	"testing"
)

func absDifferent(a, b, tolerance float64) bool {
	return math.Abs(a-b) > tolerance || math.IsNaN(a) || math.IsNaN(b)
}

func TestMolarMassStoichiometry(t *testing.T) {
	// CO2 + 4 H2 -> CH4 + 2 H2O
	in := MolarMass(CO2) + 4*MolarMass(H2)
	out := MolarMass(CH4) + 2*MolarMass(H2O)
	if absDifferent(in, out, 1e-12) {
		t.Errorf("methanation: %g != %g", in, out)
	}
	// H2O -> H2 + 0.5 O2
	if absDifferent(MolarMass(H2O), MolarMass(H2)+0.5*MolarMass(O2), 1e-12) {
		t.Errorf("electrolysis does not conserve mass")
	}
	if absDifferent(MolarMass(H2O), 18.015, 1e-9) {
		t.Errorf("water molar mass %g", MolarMass(H2O))
	}
}

func TestHeatCapacity(t *testing.T) {
	for _, test := range []struct {
		c    Component
		T    float64
		want float64
	}{
		{c: CO2, T: 298.15, want: 37.1},
		{c: H2, T: 298.15, want: 28.8},
		{c: CH4, T: 298.15, want: 35.7},
		{c: H2O, T: 298.15, want: 33.6},
		{c: N2, T: 298.15, want: 29.1},
	} {
		t.Run(test.c.String(), func(t *testing.T) {
			if got := HeatCapacity(test.c, test.T); absDifferent(got, test.want, 0.5) {
				t.Errorf("cp = %g, want %g", got, test.want)
			}
		})
	}
}

func TestEnthalpy(t *testing.T) {
	for _, c := range Components() {
		if absDifferent(Enthalpy(c, TRef), FormationEnthalpy(c), 1e-9) {
			t.Errorf("%s: enthalpy at reference %g", c, Enthalpy(c, TRef))
		}
		q := SensibleHeat(c, 300, 500)
		if q <= 0 {
			t.Errorf("%s: heating should need heat, got %g", c, q)
		}
		if absDifferent(q, -SensibleHeat(c, 500, 300), 1e-9) {
			t.Errorf("%s: sensible heat not antisymmetric", c)
		}
		// trapezoid check of the integral
		approx := 0.5 * (HeatCapacity(c, 300) + HeatCapacity(c, 500)) * 200
		if absDifferent(q, approx, 0.01*approx) {
			t.Errorf("%s: integral %g vs trapezoid %g", c, q, approx)
		}
	}
}

func TestWaterSaturationPressure(t *testing.T) {
	if p := WaterSaturationPressure(373.15); absDifferent(p, PAtm, 0.5) {
		t.Errorf("boiling point pressure %g", p)
	}
	if WaterSaturationPressure(313.15) >= WaterSaturationPressure(333.15) {
		t.Error("vapour pressure should increase with temperature")
	}
	l := Default()
	if p := l.SaturationPressure(473.15); absDifferent(p, 1554.9, 1e-9) {
		t.Errorf("steam table pressure %g", p)
	}
	if p := l.SaturationPressure(313.15); absDifferent(p, WaterSaturationPressure(313.15), 1e-12) {
		t.Errorf("below the table should fall back to Antoine, got %g", p)
	}
}

func TestSteamTable(t *testing.T) {
	st := DefaultSteamTable()
	r, err := st.At(448.15)
	if err != nil {
		t.Fatal(err)
	}
	if absDifferent(r.Hfg, (2113.7+1939.8)/2, 1e-9) {
		t.Errorf("interpolated hfg %g", r.Hfg)
	}
	if _, err := st.At(250); err == nil {
		t.Error("expected an out of range error")
	}
	if _, err := NewLibrary(&SteamTable{Rows: st.Rows[:1]}); err == nil {
		t.Error("expected an error for a one-row table")
	}
	// Unsorted input is accepted and sorted.
	rows := []SteamRow{st.Rows[2], st.Rows[0], st.Rows[1]}
	l, err := NewLibrary(&SteamTable{Rows: rows})
	if err != nil {
		t.Fatal(err)
	}
	if r, err := l.Steam(423.15); err != nil || r.Hg != 2745.9 {
		t.Errorf("lookup after sort: %+v, %v", r, err)
	}
}

func TestComposition(t *testing.T) {
	a := Air(4.2e-4)
	if err := a.Validate(); err != nil {
		t.Error(err)
	}
	if absDifferent(a.MolarMass(), 28.9, 0.1) {
		t.Errorf("air molar mass %g", a.MolarMass())
	}
	x := Composition{CO2: 2, N2: 2}
	if err := x.Validate(); err == nil {
		t.Error("expected a sum error")
	}
	n, err := x.Normalize()
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Validate(); err != nil {
		t.Error(err)
	}
	if _, err := (Composition{}).Normalize(); err == nil {
		t.Error("expected an error normalizing zeros")
	}
	if got := (Flows{}).Composition(Pure(H2)); got != Pure(H2) {
		t.Errorf("zero flow should return nominal composition, got %v", got)
	}
	f := a.Scale(2)
	if absDifferent(f.Total(), 2, 1e-12) {
		t.Errorf("scaled total %g", f.Total())
	}
}

func TestDensity(t *testing.T) {
	d := Density(293, PAtm, Air(4.2e-4))
	if absDifferent(d, 1.2, 0.02) {
		t.Errorf("air density %g", d)
	}
	if VolumetricFlow(0, 293, 0) != 0 {
		t.Error("zero flow should have zero volume")
	}
}

func TestToth(t *testing.T) {
	mil := DualSite{
		Chemical: Toth{T0: 270, B0: 9.960e6, Q: 68.3e3, Tau: 0.243, A: 1.802, Qs0: 3.450, X: 4.504},
		Physical: Toth{T0: 270, B0: 93.2, Q: 40.1e3, Tau: 0.163, A: 2.287, Qs0: 6.205, X: 0.579},
	}
	if q := mil.Loading(4e-5, 293); absDifferent(q, 2.7506, 1e-3) {
		t.Errorf("ambient loading %g", q)
	}
	if mil.Loading(4e-5, 393) >= mil.Loading(4e-5, 293) {
		t.Error("loading should fall with temperature")
	}
	if mil.Loading(4e-6, 293) >= mil.Loading(4e-5, 293) {
		t.Error("loading should rise with pressure")
	}
	if (Toth{}).Loading(1, 300) != 0 {
		t.Error("empty isotherm should give zero loading")
	}
}

func TestParseComponent(t *testing.T) {
	for _, c := range Components() {
		got, err := ParseComponent(c.String())
		if err != nil || got != c {
			t.Errorf("%s: got %v, %v", c, got, err)
		}
	}
	if _, err := ParseComponent("Ar"); err == nil {
		t.Error("expected an error")
	}
}
