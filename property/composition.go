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
)

// CompositionTolerance is the allowed deviation of a mole-fraction sum from 1.
const CompositionTolerance = 1e-6

// Composition holds mole fractions in stream component order.
type Composition [NumComponents]float64

// Flows holds component molar flows [kmol/s] in stream component order.
type Flows [NumComponents]float64

// Pure returns the composition of pure c.
func Pure(c Component) Composition {
	var x Composition
	x[c] = 1
	return x
}

// Air returns the composition of dry ambient air with the given
// CO2 mole fraction. Argon is lumped with nitrogen.
func Air(co2 float64) Composition {
	var x Composition
	x[CO2] = co2
	x[O2] = 0.2095
	x[N2] = 1 - co2 - x[O2]
	return x
}

// Sum returns the sum of the mole fractions.
func (x Composition) Sum() float64 {
	var s float64
	for _, v := range x {
		s += v
	}
	return s
}

// MolarMass returns the mean molar mass of the mixture [kg/kmol].
func (x Composition) MolarMass() float64 {
	var m float64
	for i, v := range x {
		m += v * molarMass[i]
	}
	return m
}

// HeatCapacity returns the mixture ideal-gas heat capacity at T [kJ/(kmol K)].
func (x Composition) HeatCapacity(T float64) float64 {
	var cp float64
	for i, v := range x {
		if v != 0 {
			cp += v * HeatCapacity(Component(i), T)
		}
	}
	return cp
}

// Validate returns an error if any fraction is negative or non-finite or
// if the fractions do not sum to 1 within CompositionTolerance.
func (x Composition) Validate() error {
	for i, v := range x {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("property: mole fraction of %s is %g", Component(i), v)
		}
	}
	if s := x.Sum(); math.Abs(s-1) > CompositionTolerance {
		return fmt.Errorf("property: mole fractions sum to %g", s)
	}
	return nil
}

// Normalize returns x scaled to sum to 1.
func (x Composition) Normalize() (Composition, error) {
	s := x.Sum()
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return x, fmt.Errorf("property: cannot normalize composition with sum %g", s)
	}
	for i := range x {
		x[i] /= s
	}
	return x, nil
}

// Total returns the total molar flow.
func (n Flows) Total() float64 {
	var s float64
	for _, v := range n {
		s += v
	}
	return s
}

// Mass returns the total mass flow [kg/s].
func (n Flows) Mass() float64 {
	var m float64
	for i, v := range n {
		m += v * molarMass[i]
	}
	return m
}

// Composition returns the mole fractions of n. When the total flow is not
// positive, nominal is returned instead.
func (n Flows) Composition(nominal Composition) Composition {
	F := n.Total()
	if F <= 0 {
		return nominal
	}
	var x Composition
	for i, v := range n {
		x[i] = v / F
	}
	return x
}

// Enthalpy returns the enthalpy flow of n at T [kW].
func (n Flows) Enthalpy(T float64) float64 {
	var h float64
	for i, v := range n {
		if v != 0 {
			h += v * Enthalpy(Component(i), T)
		}
	}
	return h
}

// SensibleHeat returns the heat needed to take n from T1 to T2 [kW].
func (n Flows) SensibleHeat(T1, T2 float64) float64 {
	var q float64
	for i, v := range n {
		if v != 0 {
			q += v * SensibleHeat(Component(i), T1, T2)
		}
	}
	return q
}

// Scale returns the component flows of F kmol/s of composition x.
func (x Composition) Scale(F float64) Flows {
	var n Flows
	for i, v := range x {
		n[i] = F * v
	}
	return n
}
