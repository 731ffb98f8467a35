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

// buildCompressor builds a polytropic gas compressor lifting its feed to
// P_out. A feed already above P_out passes through unchanged.
func buildCompressor(b *block) error {
	co2 := property.Pure(property.CO2)
	in := b.inlet("in", Vapour, co2)
	out := b.outlet("out", Vapour, co2)

	pOut := b.param("P_out", 1000, "kPa", 101.325, 10000, 1, inf, "discharge pressure")
	ep := b.param("Ep", 0.75, "", 0.5, 0.9, 0.05, 1, "polytropic efficiency")
	kappa := b.param("kappa", 1.3, "", 1.2, 1.4, 1.01, 2, "isentropic exponent")
	z := b.param("Z", 0.98, "", 0.9, 1, 0.5, 1.2, "compressibility factor")

	ratio := b.state("ratio", "", func(v *Values) float64 {
		return math.Max(1, div(v.At(pOut), v.At(in.P)))
	})
	power := b.state("power", "kW", func(v *Values) float64 {
		return polytropicWork(v.At(in.F), v.At(in.T), v.At(ratio), v.At(z), v.At(kappa), v.At(ep))
	})
	b.electricity("compressor", func(v *Values) float64 { return v.At(power) })
	b.capital("compressor", CompressorCost, func(v *Values) float64 { return v.At(power) }, nil, nil)

	b.m.defineOutlet(out, in.Flows, func(v *Values) float64 {
		n := polytropicExponent(v.At(kappa), v.At(ep))
		return v.At(in.T) * math.Pow(v.At(ratio), (n-1)/n)
	}, func(v *Values) float64 { return math.Max(v.At(pOut), v.At(in.P)) })
	return nil
}
