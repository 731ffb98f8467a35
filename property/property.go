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

// Package property holds the thermophysical properties of the working fluids
// used by the CO2-to-methane process models. All functions are stateless;
// tabulated data is carried by a Library value that callers pass explicitly.
//
// Units throughout are kmol, K, kPa, kJ and s unless noted.
package property

import (
	"fmt"
	"math"
)

// Component is a chemical species tracked in process streams.
type Component int

// The tracked components, in stream order.
const (
	CO2 Component = iota
	H2
	CH4
	H2O
	N2
	O2

	// NumComponents is the number of tracked components.
	NumComponents int = iota
)

var componentNames = [NumComponents]string{"CO2", "H2", "CH4", "H2O", "N2", "O2"}

func (c Component) String() string {
	if c < 0 || int(c) >= NumComponents {
		return fmt.Sprintf("Component(%d)", int(c))
	}
	return componentNames[c]
}

// Components returns all tracked components in stream order.
func Components() []Component {
	o := make([]Component, NumComponents)
	for i := range o {
		o[i] = Component(i)
	}
	return o
}

// ParseComponent returns the component with the given formula.
func ParseComponent(s string) (Component, error) {
	for i, n := range componentNames {
		if n == s {
			return Component(i), nil
		}
	}
	return -1, fmt.Errorf("property: unknown component %q", s)
}

const (
	// R is the universal gas constant [kJ/(kmol K)].
	R = 8.314
	// Faraday is the Faraday constant [C/kmol].
	Faraday = 96485e3
	// TRef is the reference temperature for enthalpies [K].
	TRef = 298.15
	// PAtm is standard atmospheric pressure [kPa].
	PAtm = 101.325
)

// Atomic masses [kg/kmol].
const (
	massC = 12.011
	massH = 1.008
	massO = 15.999
	massN = 14.007
)

// molar masses built from atomic masses so that reaction
// stoichiometry conserves mass exactly.
var molarMass = [NumComponents]float64{
	CO2: massC + 2*massO,
	H2:  2 * massH,
	CH4: massC + 4*massH,
	H2O: 2*massH + massO,
	N2:  2 * massN,
	O2:  2 * massO,
}

// MolarMass returns the molar mass of c [kg/kmol].
func MolarMass(c Component) float64 { return molarMass[c] }

// Ideal-gas heat capacity coefficients cp = A + B T + C T² + D T³
// [kJ/(kmol K)], T in K (Poling, Prausnitz & O'Connell).
var cpCoef = [NumComponents][4]float64{
	CO2: {19.80, 7.344e-2, -5.602e-5, 1.715e-8},
	H2:  {27.14, 9.274e-3, -1.381e-5, 7.645e-9},
	CH4: {19.25, 5.213e-2, 1.197e-5, -1.132e-8},
	H2O: {32.24, 1.924e-3, 1.055e-5, -3.596e-9},
	N2:  {31.15, -1.357e-2, 2.680e-5, -1.168e-8},
	O2:  {28.11, -3.680e-6, 1.746e-5, -1.065e-8},
}

// Standard enthalpies of formation of the gases [kJ/kmol].
var formation = [NumComponents]float64{
	CO2: -393510,
	CH4: -74870,
	H2O: -241826,
}

// HeatCapacity returns the ideal-gas heat capacity of c at T [kJ/(kmol K)].
func HeatCapacity(c Component, T float64) float64 {
	k := cpCoef[c]
	return k[0] + T*(k[1]+T*(k[2]+T*k[3]))
}

// cpIntegral is the antiderivative of HeatCapacity.
func cpIntegral(c Component, T float64) float64 {
	k := cpCoef[c]
	return T * (k[0] + T*(k[1]/2+T*(k[2]/3+T*k[3]/4)))
}

// SensibleHeat returns the enthalpy change of one kmol of c heated from
// T1 to T2 [kJ/kmol].
func SensibleHeat(c Component, T1, T2 float64) float64 {
	return cpIntegral(c, T2) - cpIntegral(c, T1)
}

// Enthalpy returns the ideal-gas enthalpy of c at T including the
// enthalpy of formation [kJ/kmol].
func Enthalpy(c Component, T float64) float64 {
	return formation[c] + SensibleHeat(c, TRef, T)
}

// FormationEnthalpy returns the standard enthalpy of formation of c [kJ/kmol].
func FormationEnthalpy(c Component) float64 { return formation[c] }

// MolarVolume returns the ideal-gas molar volume at T and P [m³/kmol].
func MolarVolume(T, P float64) float64 {
	if P <= 0 {
		return math.Inf(1)
	}
	return R * T / P
}

// VolumetricFlow returns the ideal-gas volumetric flow of F kmol/s
// at T and P [m³/s].
func VolumetricFlow(F, T, P float64) float64 {
	if F == 0 {
		return 0
	}
	return F * MolarVolume(T, P)
}

// Density returns the ideal-gas density of a mixture [kg/m³].
func Density(T, P float64, x Composition) float64 {
	return x.MolarMass() / MolarVolume(T, P)
}

// Antoine constants for water, log10(P/mmHg) = A - B/(C + T/°C),
// valid from 1 to 100 °C.
const (
	antoineA = 8.07131
	antoineB = 1730.63
	antoineC = 233.426
	mmHgKPa  = 0.133322
)

// WaterSaturationPressure returns the vapour pressure of water at T
// from the Antoine equation [kPa].
func WaterSaturationPressure(T float64) float64 {
	tc := T - 273.15
	return math.Pow(10, antoineA-antoineB/(antoineC+tc)) * mmHgKPa
}

// WaterLatentHeat returns the heat of vaporisation of water
// at its 100 °C normal boiling point [kJ/kmol].
const WaterLatentHeat = 40650.0
