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
	"fmt"
	"math"
	"sort"
)

// SteamRow is one row of a saturated-steam table.
type SteamRow struct {
	T   float64 // saturation temperature [K]
	P   float64 // saturation pressure [kPa]
	Hf  float64 // saturated liquid enthalpy [kJ/kg]
	Hfg float64 // latent heat [kJ/kg]
	Hg  float64 // saturated vapour enthalpy [kJ/kg]
}

// SteamTable is a saturated-steam table sorted by temperature.
type SteamTable struct {
	Rows []SteamRow
}

// DefaultSteamTable returns saturated-steam data from 100 to 300 °C.
func DefaultSteamTable() *SteamTable {
	return &SteamTable{Rows: []SteamRow{
		{T: 373.15, P: 101.42, Hf: 419.17, Hfg: 2256.4, Hg: 2675.6},
		{T: 423.15, P: 476.16, Hf: 632.18, Hfg: 2113.7, Hg: 2745.9},
		{T: 473.15, P: 1554.9, Hf: 852.26, Hfg: 1939.8, Hg: 2792.0},
		{T: 523.15, P: 3976.2, Hf: 1085.8, Hfg: 1715.3, Hg: 2801.0},
		{T: 573.15, P: 8587.9, Hf: 1344.8, Hfg: 1404.8, Hg: 2749.6},
	}}
}

// Sort orders the rows by temperature.
func (s *SteamTable) Sort() {
	sort.Slice(s.Rows, func(i, j int) bool { return s.Rows[i].T < s.Rows[j].T })
}

// Validate checks that the table is usable for interpolation.
func (s *SteamTable) Validate() error {
	if len(s.Rows) < 2 {
		return fmt.Errorf("property: steam table has %d rows but needs at least 2", len(s.Rows))
	}
	for i, r := range s.Rows {
		for _, v := range []float64{r.T, r.P, r.Hf, r.Hfg, r.Hg} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("property: steam table row %d has invalid value %g", i, v)
			}
		}
		if i > 0 && r.T <= s.Rows[i-1].T {
			return fmt.Errorf("property: steam table temperatures not increasing at row %d", i)
		}
	}
	return nil
}

// At returns the row linearly interpolated at saturation temperature T.
func (s *SteamTable) At(T float64) (SteamRow, error) {
	n := len(s.Rows)
	if n == 0 {
		return SteamRow{}, fmt.Errorf("property: empty steam table")
	}
	lo, hi := s.Rows[0].T, s.Rows[n-1].T
	if T < lo || T > hi || math.IsNaN(T) {
		return SteamRow{}, fmt.Errorf("property: temperature %g K outside steam table range [%g, %g]", T, lo, hi)
	}
	i := sort.Search(n, func(i int) bool { return s.Rows[i].T >= T })
	if s.Rows[i].T == T {
		return s.Rows[i], nil
	}
	a, b := s.Rows[i-1], s.Rows[i]
	f := (T - a.T) / (b.T - a.T)
	lerp := func(x, y float64) float64 { return x + f*(y-x) }
	return SteamRow{
		T:   T,
		P:   lerp(a.P, b.P),
		Hf:  lerp(a.Hf, b.Hf),
		Hfg: lerp(a.Hfg, b.Hfg),
		Hg:  lerp(a.Hg, b.Hg),
	}, nil
}

// Library bundles the tabulated property data needed by the process models.
type Library struct {
	steam *SteamTable
}

// NewLibrary returns a library using the given steam table, which is
// copied and sorted.
func NewLibrary(st *SteamTable) (*Library, error) {
	if st == nil {
		return nil, fmt.Errorf("property: nil steam table")
	}
	c := &SteamTable{Rows: append([]SteamRow(nil), st.Rows...)}
	c.Sort()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Library{steam: c}, nil
}

// Default returns a library built from DefaultSteamTable.
func Default() *Library {
	l, err := NewLibrary(DefaultSteamTable())
	if err != nil {
		panic(err)
	}
	return l
}

// Steam returns the saturated-steam properties at T.
func (l *Library) Steam(T float64) (SteamRow, error) { return l.steam.At(T) }

// SaturationPressure returns the vapour pressure of water at T [kPa].
// The steam table is used within its range and the Antoine equation
// below it.
func (l *Library) SaturationPressure(T float64) float64 {
	if r, err := l.steam.At(T); err == nil {
		return r.P
	}
	return WaterSaturationPressure(T)
}
