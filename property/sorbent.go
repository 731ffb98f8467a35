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

import "math"

// Toth holds the parameters of a temperature-dependent Toth isotherm
// (Stampi-Bombelli et al., 2020).
type Toth struct {
	T0  float64 // reference temperature [K]
	B0  float64 // affinity at T0 [1/MPa]
	Q   float64 // isosteric heat [J/mol]
	Tau float64 // heterogeneity at T0
	A   float64 // heterogeneity temperature coefficient
	Qs0 float64 // saturation capacity at T0 [mol/kg]
	X   float64 // saturation capacity temperature coefficient
}

// Loading returns the equilibrium CO2 loading at partial pressure p [MPa]
// and temperature T [K] in mol/kg.
func (s Toth) Loading(p, T float64) float64 {
	if s.B0 == 0 || p <= 0 {
		return 0
	}
	qs := s.Qs0 * math.Exp(s.X*(1-s.T0/T))
	b := s.B0 * math.Exp(s.Q/(R*s.T0)*(s.T0/T-1))
	t := s.Tau + s.A*(1-s.T0/T)
	bp := b * p
	return qs * bp / math.Pow(1+math.Pow(bp, t), 1/t)
}

// DualSite is the sum of a chemisorption and a physisorption isotherm.
type DualSite struct {
	Chemical, Physical Toth
}

// Loading returns the total equilibrium loading [mol/kg].
func (d DualSite) Loading(p, T float64) float64 {
	return d.Chemical.Loading(p, T) + d.Physical.Loading(p, T)
}
