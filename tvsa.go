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
	"fmt"
	"math"

	"github.com/spatialmodel/co2ch4/property"
)

// polytropicExponent returns n for isentropic exponent kappa and
// polytropic efficiency ep.
func polytropicExponent(kappa, ep float64) float64 {
	return 1 / (1 - (kappa-1)/(kappa*ep))
}

// polytropicWork returns the power [kW] to compress F kmol/s from T by
// pressure ratio r.
func polytropicWork(F, T, r, z, kappa, ep float64) float64 {
	if F <= 0 || r <= 1 {
		return 0
	}
	n := polytropicExponent(kappa, ep)
	e := (n - 1) / n
	return z * property.R * T * (math.Pow(r, e) - 1) * F / (e * ep)
}

// buildTVSA builds a temperature-vacuum swing desorption bed for the
// sorbent named by the unit variant. The adsorbed CO2 is released at
// T_des under vacuum and pumped back to ambient pressure.
func buildTVSA(b *block) error {
	s, ok := Sorbents[b.u.Variant]
	if !ok {
		return &BuildError{Unit: b.u.Name, Reason: fmt.Sprintf("unknown sorbent %q", b.u.Variant)}
	}
	co2 := property.Pure(property.CO2)
	in := b.inlet("in", Adsorbed, co2)
	out := b.outlet("out", Vapour, co2)

	tAmb := b.global("T_amb")
	pAmb := b.global("P_amb")
	xco2 := b.global("air_co2")
	price := b.global("sorbent_cost")
	repl := b.global("sorbent_replacement")

	beds := b.param("beds", 3, "", 2, 4, 1, inf, "number of beds cycling in parallel")
	k := b.param("k", 2e-4, "1/s", 1e-5, 1e-2, 0, inf, "adsorption mass-transfer rate constant")
	tRegen := b.fixed("t_regen", 0, "s", "regeneration time")
	ep := b.param("Ep", 0.75, "", 0.5, 0.9, 0.05, 1, "vacuum pump polytropic efficiency")
	kappa := b.param("kappa", 1.3, "", 1.2, 1.4, 1.01, 2, "isentropic exponent of CO2")
	z := b.param("Z", 0.98, "", 0.9, 1, 0.5, 1.2, "compressibility factor")

	tDes := b.decision("T_des", 80, 120, 100, "C")
	pVac := b.decision("p_vac", 5, 90, 20, "kPa")
	t := b.decision("t_ads", 100, 20000, 2000, "s")

	tDesK := func(v *Values) float64 { return v.At(tDes) + 273.15 }
	qAds := b.state("q_ads", "kmol/kg", func(v *Values) float64 {
		p := v.At(xco2) * v.At(pAmb) / 1000
		return s.Isotherm.Loading(p, v.At(tAmb)) / 1000
	})
	qDes := b.state("q_des", "kmol/kg", func(v *Values) float64 {
		p := v.At(pVac) / 1000 * 4e-4
		return s.Isotherm.Loading(p, tDesK(v)) / 1000
	})
	dq := b.state("Dq", "kmol/kg", func(v *Values) float64 { return v.At(qAds) - v.At(qDes) })
	q := b.state("q", "kmol/kg", func(v *Values) float64 {
		return v.At(dq) * (1 - math.Exp(-v.At(k)*v.At(t)))
	})
	cycle := func(v *Values) float64 { return v.At(t) + v.At(tRegen) }
	nCO2 := func(v *Values) float64 { return v.At(in.F) * v.At(in.X[property.CO2]) }
	W := b.state("W", "kg", func(v *Values) float64 {
		n := nCO2(v)
		if n == 0 {
			return 0
		}
		if v.At(q) <= 0 {
			return math.Inf(1)
		}
		return n * cycle(v) / v.At(q)
	})
	b.le("capacity", 1e-3, func(v *Values) float64 { return -v.At(dq) })

	heat := b.state("Q_heat", "kW", func(v *Values) float64 {
		sensible := v.At(W) * s.Cp / 1000 * (tDesK(v) - v.At(tAmb)) / cycle(v)
		return sensible + s.Isotherm.Chemical.Q*nCO2(v)
	})
	b.electricity("regeneration", func(v *Values) float64 { return v.At(heat) })
	pump := b.state("vacuum_power", "kW", func(v *Values) float64 {
		return polytropicWork(nCO2(v), tDesK(v), v.At(pAmb)/v.At(pVac), v.At(z), v.At(kappa), v.At(ep))
	})
	b.electricity("vacuum_pump", func(v *Values) float64 { return v.At(pump) })
	b.capital("vacuum_pump", CompressorCost, func(v *Values) float64 { return v.At(pump) }, nil, nil)

	b.inventory("sorbent", func(v *Values) float64 { return v.At(beds) * v.At(price) * v.At(W) })
	b.consumable("sorbent", func(v *Values) float64 {
		return v.At(repl) * v.At(beds) * v.At(price) * v.At(W)
	})

	b.m.defineOutlet(out, in.Flows, tDesK, func(v *Values) float64 { return v.At(pAmb) })
	return nil
}
