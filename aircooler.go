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

	"github.com/ctessum/unit/badunit"
	"github.com/spatialmodel/co2ch4/property"
)

// Imperial conversions used by the air-cooler rating method.
var (
	// footPerMetre is the number of feet in one metre.
	footPerMetre = 1 / badunit.Foot(1).Value()
	// kWPerHP is the power of one horsepower in kW.
	kWPerHP = badunit.HorsePower(1).Value() / 1000
)

// btuPerHourKW is the number of BTU/h in one kW.
const btuPerHourKW = 3412.14

// condensed returns the water that condenses when a gas with component
// flows n is cooled to T at pressure P. The vapour is held at the Raoult
// limit.
func condensed(lib *property.Library, n property.Flows, T, P float64) float64 {
	w := n[property.H2O]
	if w <= 0 {
		return 0
	}
	y := lib.SaturationPressure(T) / P
	if y >= 1 {
		return 0
	}
	dry := n.Total() - w
	return math.Max(0, w-y*dry/(1-y))
}

// buildAirCooler builds a forced-draught air cooler that cools the
// reactor product to T_out and condenses part of its water. Fan power
// follows the rating method of Brown (2004).
func buildAirCooler(b *block) error {
	nominal := property.Composition{property.CH4: 1.0 / 3, property.H2O: 2.0 / 3}
	in := b.inlet("in", Vapour, nominal)
	out := b.outlet("out", Mixed, nominal)
	lib := b.m.Library()

	tOut := b.param("T_out", 313.15, "K", 303.15, 333.15, 274, inf, "process outlet temperature")
	tAir := b.param("T_air_in", 298.15, "K", 263.15, 318.15, 200, inf, "air inlet temperature")
	dTAir := b.param("dT_air", 20, "K", 5, 40, 0.1, inf, "air temperature rise")
	U := b.param("U", 0.770, "kW/(m2 K)", 0.3, 1.2, 1e-6, inf, "overall heat transfer coefficient")
	fv := b.param("FV", 500, "ft/min", 400, 800, 1, inf, "air face velocity")
	nr := b.param("Nr", 5, "", 3, 8, 1, inf, "number of tube rows")

	tCool := func(v *Values) float64 { return math.Min(v.At(in.T), v.At(tOut)) }
	water := b.state("condensed", "kmol/s", func(v *Values) float64 {
		return condensed(lib, in.Flows(v), tCool(v), v.At(in.P))
	})
	duty := b.state("Q", "kW", func(v *Values) float64 {
		return in.Flows(v).SensibleHeat(tCool(v), v.At(in.T)) + v.At(water)*property.WaterLatentHeat
	})
	area := b.state("area", "ft2", func(v *Values) float64 {
		q := v.At(duty)
		if q <= 0 {
			return 0
		}
		airOut := v.At(tAir) + v.At(dTAir)
		// Terminal differences are floored at 1 K for pinched designs.
		d := lmtd(math.Max(1, v.At(in.T)-airOut), math.Max(1, tCool(v)-v.At(tAir)))
		return q / (v.At(U) * d) * footPerMetre * footPerMetre
	})
	b.capital("bundle", AirCoolerCost, func(v *Values) float64 { return v.At(area) }, nil, nil)
	fan := b.state("fan_power", "kW", func(v *Values) float64 {
		q := v.At(duty)
		if q <= 0 {
			return 0
		}
		face := v.At(fv)
		fa := q * btuPerHourKW / (face * v.At(dTAir) * 1.8 * 1.95)
		dp := 0.0037 * v.At(nr) * math.Pow(face/100, 1.8)
		airOut := v.At(tAir) + v.At(dTAir)
		bhp := face * fa * airOut * (dp + 0.1) / 1.15e6
		return bhp * kWPerHP
	})
	b.electricity("fan", func(v *Values) float64 { return v.At(fan) })

	b.m.defineOutlet(out, in.Flows, tCool, func(v *Values) float64 { return v.At(in.P) })
	return nil
}
