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

// Methanation reactor modes.
const (
	// DFMIntegrated adsorbs CO2 from air on a dual-function material and
	// methanates it in place.
	DFMIntegrated = "integrated"
	// DFMPackedBed methanates a gaseous CO2 feed over a packed catalyst.
	DFMPackedBed = "packed-bed"
)

// DFMVariants lists the methanation reactor modes.
var DFMVariants = []string{DFMIntegrated, DFMPackedBed}

// buildDFM builds a Sabatier methanation reactor,
// CO2 + 4 H2 -> CH4 + 2 H2O.
func buildDFM(b *block) error {
	integrated := false
	switch b.u.Variant {
	case DFMIntegrated:
		integrated = true
	case DFMPackedBed:
	default:
		return &BuildError{Unit: b.u.Name, Reason: fmt.Sprintf("unknown methanation mode %q", b.u.Variant)}
	}
	co2Phase := Vapour
	if integrated {
		co2Phase = Adsorbed
	}
	inCO2 := b.inlet("co2", co2Phase, property.Pure(property.CO2))
	inH2 := b.inlet("h2", Vapour, property.Pure(property.H2))
	out := b.outlet("out", Vapour, property.Composition{property.CH4: 1.0 / 3, property.H2O: 2.0 / 3})

	tAmb := b.global("T_amb")
	X := b.param("X", 1, "", 0.5, 1, 0, 1, "CO2 conversion")
	excess := b.param("h2_excess", 0, "", 0, 0.2, 0, inf, "hydrogen fed above stoichiometry")
	tR := b.param("T_reaction", 796.15, "K", 523.15, 823.15, 273.15, inf, "reaction temperature")
	dHr := b.param("dH_r", 164000, "kJ/kmol", 150000, 180000, 0, inf, "heat released per kmol CH4")

	nCO2 := func(v *Values) float64 { return v.At(inCO2.F) * v.At(inCO2.X[property.CO2]) }
	nH2 := func(v *Values) float64 { return v.At(inH2.F) * v.At(inH2.X[property.H2]) }
	b.state("h2_demand", "kmol/s", func(v *Values) float64 {
		return 4 * v.At(X) * nCO2(v) * (1 + v.At(excess))
	})
	rate := b.state("r", "kmol/s", func(v *Values) float64 {
		return math.Max(0, math.Min(v.At(X)*nCO2(v), nH2(v)/4))
	})
	feedHeat := func(v *Values) float64 {
		n := inCO2.Flows(v)
		h := inH2.Flows(v)
		return n.SensibleHeat(v.At(inCO2.T), v.At(tR)) + h.SensibleHeat(v.At(inH2.T), v.At(tR))
	}

	var duty VarID
	if integrated {
		price := b.global("dfm_cost")
		repl := b.global("sorbent_replacement")
		dHads := b.param("dH_ads", 151790, "kJ/kmol", 100000, 200000, 0, inf, "CO2 desorption enthalpy")
		qEq := b.param("q_eq", 1.14934e-3, "kmol/kg", 5e-4, 2e-3, 1e-9, inf, "equilibrium CO2 capacity")
		k := b.param("k", 2.3654e-4, "1/s", 1e-5, 1e-2, 0, inf, "adsorption rate constant")
		cp := b.param("cp", 0.718, "kJ/(kg K)", 0.5, 1.2, 0, inf, "material heat capacity")
		tRegen := b.fixed("t_regen", 0, "s", "regeneration time")
		trains := b.param("trains", 2, "", 2, 2, 1, inf, "reactor trains alternating adsorption and reaction")
		t := b.decision("t_ads", 100, 20000, 2000, "s")

		cycle := func(v *Values) float64 { return v.At(t) + v.At(tRegen) }
		q := b.state("q", "kmol/kg", func(v *Values) float64 {
			return v.At(qEq) * (1 - math.Exp(-v.At(k)*v.At(t)))
		})
		W := b.state("W", "kg", func(v *Values) float64 {
			n := nCO2(v)
			if n == 0 {
				return 0
			}
			return n * cycle(v) / v.At(q)
		})
		duty = b.state("Q_duty", "kW", func(v *Values) float64 {
			swing := v.At(W) * v.At(cp) * (v.At(tR) - v.At(tAmb)) / cycle(v)
			h := inH2.Flows(v)
			return swing + v.At(dHads)*nCO2(v) + h.SensibleHeat(v.At(inH2.T), v.At(tR)) - v.At(dHr)*v.At(rate)
		})
		b.inventory("dfm", func(v *Values) float64 { return v.At(trains) * v.At(price) * v.At(W) })
		b.consumable("dfm", func(v *Values) float64 {
			return v.At(repl) * v.At(trains) * v.At(price) * v.At(W)
		})
	} else {
		ghsv := b.param("GHSV", 5000, "1/h", 1000, 20000, 1, inf, "gas hourly space velocity")
		Q := b.state("Q_feed", "m3/s", func(v *Values) float64 {
			F := v.At(inCO2.F) + v.At(inH2.F)
			return property.VolumetricFlow(F, v.At(tR), math.Min(v.At(inCO2.P), v.At(inH2.P)))
		})
		vol := b.state("volume", "m3", func(v *Values) float64 {
			return v.At(Q) * secondsPerHour / v.At(ghsv)
		})
		b.capital("reactor", ReactorCost, func(v *Values) float64 { return v.At(vol) }, nil, nil)
		duty = b.state("Q_duty", "kW", func(v *Values) float64 {
			return feedHeat(v) - v.At(dHr)*v.At(rate)
		})
	}
	b.electricity("heating", func(v *Values) float64 { return pos(v.At(duty)) })
	b.heat("reaction", func(v *Values) float64 { return pos(-v.At(duty)) })

	b.m.defineOutlet(out, func(v *Values) property.Flows {
		n := inCO2.Flows(v)
		h := inH2.Flows(v)
		for c := range n {
			n[c] += h[c]
		}
		r := v.At(rate)
		n[property.CO2] -= r
		n[property.H2] -= 4 * r
		n[property.CH4] += r
		n[property.H2O] += 2 * r
		return n
	}, func(v *Values) float64 { return v.At(tR) },
		func(v *Values) float64 { return math.Min(v.At(inCO2.P), v.At(inH2.P)) })
	return nil
}
