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

// Steam levels raised by the steam generator.
const (
	LowPressureSteam    = "LP"
	MediumPressureSteam = "MP"
	HighPressureSteam   = "HP"
)

// SteamVariants lists the steam levels.
var SteamVariants = []string{LowPressureSteam, MediumPressureSteam, HighPressureSteam}

// steamLevels are the saturation temperatures of the steam levels [K].
var steamLevels = map[string]float64{
	LowPressureSteam:    423.15,
	MediumPressureSteam: 473.15,
	HighPressureSteam:   523.15,
}

// lmtd returns the log-mean temperature difference of terminal
// differences a and c, or their mean when they are close.
func lmtd(a, c float64) float64 {
	if a <= 0 || c <= 0 {
		return math.NaN()
	}
	if math.Abs(a-c) < 1e-6*math.Max(a, c) {
		return (a + c) / 2
	}
	return (a - c) / math.Log(a/c)
}

// buildSteamGenerator builds a waste-heat boiler that cools the reactor
// product by raising saturated steam. Steam is credited at the cost of
// making it in a fired boiler, less the turbine work lost letting HP
// steam down to its level.
func buildSteamGenerator(b *block) error {
	tSat, ok := steamLevels[b.u.Variant]
	if !ok {
		return &BuildError{Unit: b.u.Name, Reason: fmt.Sprintf("unknown steam level %q", b.u.Variant)}
	}
	lib := b.m.Library()
	row, err := lib.Steam(tSat)
	if err != nil {
		return &BuildError{Unit: b.u.Name, Reason: err.Error()}
	}
	hp, err := lib.Steam(steamLevels[HighPressureSteam])
	if err != nil {
		return &BuildError{Unit: b.u.Name, Reason: err.Error()}
	}
	nominal := property.Composition{property.CH4: 1.0 / 3, property.H2O: 2.0 / 3}
	in := b.inlet("in", Vapour, nominal)
	out := b.outlet("out", Vapour, nominal)

	fuel := b.global("fuel_price")
	bfw := b.global("bfw_price")
	elec := b.global("electricity_price")
	hours := b.global("operating_hours")
	bigM := b.global("big_m")
	dT := b.param("dT_min", 20, "K", 5, 50, 0.1, inf, "minimum approach temperature")
	U := b.param("U", 154.0/3600, "kW/(m2 K)", 0.01, 0.2, 1e-6, inf, "overall heat transfer coefficient")
	etaB := b.param("eta_boiler", 0.8, "", 0.5, 1, 0.01, 1, "efficiency of the fired boiler displaced")
	etaT := b.param("eta_turb", 0.85, "", 0.5, 1, 0, 1, "efficiency of the let-down turbine")

	const mw = 18.015
	tOut := b.state("T_out", "K", func(v *Values) float64 {
		return math.Min(v.At(in.T), tSat+v.At(dT))
	})
	duty := b.state("Q", "kW", func(v *Values) float64 {
		return in.Flows(v).SensibleHeat(v.At(tOut), v.At(in.T))
	})
	steam := b.state("steam", "kmol/s", func(v *Values) float64 {
		return v.At(duty) / (row.Hfg * mw)
	})
	area := b.state("area", "m2", func(v *Values) float64 {
		q := v.At(duty)
		if q <= 0 {
			return 0
		}
		return q / (v.At(U) * lmtd(v.At(in.T)-tSat, v.At(tOut)-tSat))
	})
	b.capital("exchanger", HeatExchangerCost, func(v *Values) float64 { return v.At(area) }, nil, nil)
	price := b.state("price", "USD/kmol", func(v *Values) float64 {
		p := v.At(fuel)*hp.Hfg*mw/v.At(etaB) + v.At(bfw)
		return p - (hp.Hg-row.Hg)*mw*v.At(etaT)*v.At(elec)/secondsPerHour
	})
	b.revenue("steam", func(v *Values) float64 {
		return v.At(steam) * v.At(price) * secondsPerHour * v.At(hours)
	})
	b.le("select", 1, func(v *Values) float64 {
		return v.At(steam) - v.At(bigM)*b.selected(v)
	})

	b.m.defineOutlet(out, in.Flows, func(v *Values) float64 { return v.At(tOut) },
		func(v *Values) float64 { return v.At(in.P) })
	return nil
}
