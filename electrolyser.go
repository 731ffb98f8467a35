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

	"github.com/spatialmodel/co2ch4/property"
)

// electrolyserTech describes a water electrolysis technology.
type electrolyserTech struct {
	// energy is the specific electricity demand at nominal current
	// density [kJ/kmol H2].
	energy float64

	// capex is the stack cost per kW of nominal power [USD/kW].
	capex float64

	// tOp is the operating temperature [°C].
	tOp float64

	// v0 is the open-circuit voltage extrapolated from the linear
	// polarisation curve [V] and vtn the thermoneutral voltage [V].
	v0, vtn float64

	// jNom is the nominal current density [A/m²], valid within
	// [jLo, jHi].
	jNom, jLo, jHi float64
}

// Electrolyser technologies.
const (
	AEL   = "AEL"
	SOEL  = "SOEL"
	PEMEL = "PEMEL"
)

// ElectrolyserVariants lists the electrolyser technologies.
var ElectrolyserVariants = []string{AEL, SOEL, PEMEL}

var electrolysers = map[string]*electrolyserTech{
	AEL:   {energy: 463680, capex: 950, tOp: 25, v0: 1.50, vtn: 1.481, jNom: 4000, jLo: 1000, jHi: 8000},
	SOEL:  {energy: 269900, capex: 4200, tOp: 700, v0: 0.95, vtn: 1.287, jNom: 7000, jLo: 2000, jHi: 12000},
	PEMEL: {energy: 483840, capex: 1450, tOp: 25, v0: 1.55, vtn: 1.481, jNom: 20000, jLo: 5000, jHi: 40000},
}

// buildElectrolyser builds a water electrolyser. The hydrogen it makes
// matches its water feed mole for mole. The cell voltage follows a linear
// polarisation curve through the nominal point so the current density j
// trades stack area against electricity.
func buildElectrolyser(b *block) error {
	tech, ok := electrolysers[b.u.Variant]
	if !ok {
		return &BuildError{Unit: b.u.Name, Reason: fmt.Sprintf("unknown electrolyser technology %q", b.u.Variant)}
	}
	in := b.inlet("water", Liquid, property.Pure(property.H2O))
	h2 := b.outlet("h2", Vapour, property.Pure(property.H2))
	o2 := b.outlet("o2", Vapour, property.Pure(property.O2))

	bigM := b.global("big_m")
	e := b.param("e", tech.energy, "kJ/kmol", tech.energy*0.8, tech.energy*1.2, 1, inf, "specific electricity demand at nominal current density")
	capex := b.param("capex", tech.capex, "USD/kW", tech.capex*0.25, tech.capex*2, 0, inf, "stack cost per kW of nominal power")
	tOp := b.param("T_op", tech.tOp, "C", tech.tOp, tech.tOp, -273.15, inf, "operating temperature")
	v0 := b.param("V0", tech.v0, "V", tech.v0*0.9, tech.v0*1.1, 0, inf, "polarisation curve intercept")
	jNom := b.param("j_nom", tech.jNom, "A/m2", tech.jNom, tech.jNom, 1, inf, "nominal current density")
	vtn := b.param("V_tn", tech.vtn, "V", tech.vtn, tech.vtn, 0, inf, "thermoneutral voltage")
	j := b.decision("j", tech.jLo, tech.jHi, tech.jNom, "A/m2")

	tK := func(v *Values) float64 { return v.At(tOp) + 273.15 }
	nH2 := func(v *Values) float64 { return v.At(in.F) * v.At(in.X[property.H2O]) }

	I := b.state("I", "A", func(v *Values) float64 { return 2 * property.Faraday * nH2(v) })
	vNom := b.state("V_nom", "V", func(v *Values) float64 { return v.At(e) * 1e3 / (2 * property.Faraday) })
	V := b.state("V", "V", func(v *Values) float64 {
		r := (v.At(vNom) - v.At(v0)) / v.At(jNom)
		return v.At(v0) + r*v.At(j)
	})
	area := b.state("area", "m2", func(v *Values) float64 { return div(v.At(I), v.At(j)) })
	power := b.state("power", "kW", func(v *Values) float64 { return v.At(V) * v.At(I) / 1e3 })
	b.electricity("stack", func(v *Values) float64 { return v.At(power) })

	// Operation away from the thermoneutral voltage releases heat above
	// it and needs heat below it. A deficit is met electrically.
	excess := b.state("Q_excess", "kW", func(v *Values) float64 {
		return (v.At(V) - v.At(vtn)) * v.At(I) / 1e3
	})
	b.electricity("heat_deficit", func(v *Values) float64 { return pos(-v.At(excess)) })
	b.heat("stack", func(v *Values) float64 { return pos(v.At(excess)) })
	b.electricity("feed_heating", func(v *Values) float64 {
		T := tK(v)
		if T <= 373.15 {
			return 0
		}
		n := nH2(v)
		return n * (property.WaterLatentHeat + property.SensibleHeat(property.H2O, 373.15, T))
	})

	b.inventory("stack", func(v *Values) float64 {
		return v.At(area) * v.At(capex) * v.At(vNom) * v.At(jNom) / 1000
	})
	b.le("select", 1, func(v *Values) float64 {
		return nH2(v) - v.At(bigM)*b.selected(v)
	})

	b.m.defineOutlet(h2, func(v *Values) property.Flows {
		var n property.Flows
		n[property.H2] = nH2(v)
		return n
	}, tK, func(v *Values) float64 { return v.At(in.P) })
	b.m.defineOutlet(o2, func(v *Values) property.Flows {
		var n property.Flows
		n[property.O2] = nH2(v) / 2
		return n
	}, tK, func(v *Values) float64 { return v.At(in.P) })
	return nil
}
