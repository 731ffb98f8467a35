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

// buildDAC builds the monolith air contactor that holds the adsorbent.
// The states W (adsorbent inventory per train) and trains are defined by
// the assembler from the adsorbent units it feeds.
//
// Air passes N parallel vessels of diameter D at face velocity v. The
// vessels hold the inventory as washcoat, which sets their length and so
// the laminar channel pressure drop the fan must overcome.
func buildDAC(b *block) error {
	air := property.Air(4.2e-4)
	in := b.inlet("in", Vapour, air)
	captured := b.outlet("captured", Adsorbed, property.Pure(property.CO2))
	depleted := b.outlet("depleted", Vapour, air)

	target := b.global("co2_target")
	frac := b.global("capture_fraction")
	xco2 := b.global("air_co2")
	pAmb := b.global("P_amb")

	D := b.param("D", 2, "m", 0.5, 5, 0.01, inf, "vessel diameter")
	rho := b.param("rho_pack", 85.43, "kg/m3", 20, 250, 1e-3, inf, "washcoat loading of the monolith")
	fill := b.param("fill", 0.95, "", 0.5, 1, 1e-3, 1, "fraction of the vessel volume filled with monolith")
	mu := b.param("mu", 1.85e-5, "Pa s", 1.5e-5, 2.2e-5, 0, inf, "air viscosity")
	ri := b.param("Ri", 1.05e-3, "m", 5e-4, 3e-3, 1e-6, inf, "channel inner radius")
	vel := b.decision("v", 0.1, 10, 1, "m/s")
	W := b.m.AddState(b.name("W"), "kg")
	trains := b.m.AddState(b.name("trains"), "")

	b.state("air_demand", "kmol/s", func(v *Values) float64 {
		return div(v.At(target), v.At(xco2)*v.At(frac))
	})
	co2 := func(v *Values) float64 {
		return math.Min(v.At(target), v.At(frac)*v.At(in.F)*v.At(in.X[property.CO2]))
	}
	b.m.defineOutlet(captured, func(v *Values) property.Flows {
		var n property.Flows
		n[property.CO2] = co2(v)
		return n
	}, func(v *Values) float64 { return v.At(in.T) }, func(v *Values) float64 { return v.At(in.P) })
	b.m.defineOutlet(depleted, func(v *Values) property.Flows {
		n := in.Flows(v)
		n[property.CO2] -= co2(v)
		return n
	}, func(v *Values) float64 { return v.At(in.T) }, func(v *Values) float64 { return v.At(pAmb) })

	Q := b.state("Q", "m3/s", func(v *Values) float64 {
		return property.VolumetricFlow(v.At(in.F), v.At(in.T), v.At(pAmb))
	})
	area := func(v *Values) float64 { d := v.At(D); return math.Pi * d * d / 4 }
	N := b.state("N", "", func(v *Values) float64 { return div(v.At(Q), v.At(vel)*area(v)) })
	S := b.state("S", "m3", func(v *Values) float64 { return div(v.At(W), v.At(fill)*v.At(rho)) })
	L := b.state("L", "m", func(v *Values) float64 { return div(v.At(S), v.At(N)*area(v)) })
	b.state("DP", "Pa", func(v *Values) float64 {
		r := v.At(ri)
		return 8 * v.At(L) * v.At(mu) * v.At(vel) / (r * r)
	})
	b.capital("vessels", ReactorCost,
		func(v *Values) float64 { return v.At(trains) * v.At(S) },
		func(v *Values) float64 { return v.At(trains) * v.At(N) }, nil)
	return nil
}
