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
	"math"

	"github.com/spatialmodel/co2ch4/property"
)

// buildSeparator builds a flash drum that splits a cooled stream into
// vapour and liquid water. The vapour leaves saturated with water.
func buildSeparator(b *block) error {
	nominal := property.Composition{property.CH4: 1.0 / 3, property.H2O: 2.0 / 3}
	in := b.inlet("in", Mixed, nominal)
	vap := b.outlet("vapour", Vapour, property.Pure(property.CH4))
	liq := b.outlet("liquid", Liquid, property.Pure(property.H2O))
	lib := b.m.Library()

	hold := b.param("holdup", 0.5, "h", 0.1, 1, 0, inf, "liquid residence time")
	ld := b.param("L_D", 4, "", 2, 6, 1, inf, "length to diameter ratio")

	liquid := b.state("condensed", "kmol/s", func(v *Values) float64 {
		return condensed(lib, in.Flows(v), v.At(in.T), v.At(in.P))
	})
	T := func(v *Values) float64 { return v.At(in.T) }
	P := func(v *Values) float64 { return v.At(in.P) }
	b.m.defineOutlet(vap, func(v *Values) property.Flows {
		n := in.Flows(v)
		n[property.H2O] -= v.At(liquid)
		return n
	}, T, P)
	b.m.defineOutlet(liq, func(v *Values) property.Flows {
		var n property.Flows
		n[property.H2O] = v.At(liquid)
		return n
	}, T, P)

	// Vessel sized for the liquid holdup; shell mass of a carbon-steel
	// cylinder with 0.25 in walls.
	D := b.state("D", "m", func(v *Values) float64 {
		vol := v.At(liquid) * property.MolarMass(property.H2O) * v.At(hold) * secondsPerHour / 1000
		return math.Cbrt(4 * vol / (math.Pi * v.At(ld)))
	})
	shell := b.state("shell_mass", "kg", func(v *Values) float64 {
		d := v.At(D) * 39.37
		if d == 0 {
			return 0
		}
		l := v.At(ld) * d
		return math.Pi * (d + 0.25) * (l + 0.8*d) * 0.25 * 0.284 / 2.205
	})
	b.capital("vessel", VesselCost, func(v *Values) float64 { return v.At(shell) }, nil, nil)
	return nil
}
