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

// fanTech describes an air-intake fan technology (Seider et al., 2017).
type fanTech struct {
	ident string

	// qmax is the capacity of one fan [m³/s] and maxH its maximum
	// head [Pa].
	qmax, maxH float64

	// vendor is the purchased cost of one fan as a polynomial of its
	// capacity in ACFM, in 2013 USD.
	vendor Polynomial

	// head is the head factor as a function of the pressure rise [Pa].
	head Piecewise
}

// Fan technologies.
const (
	CentrifugalBackward = "centrifugal-backward"
	CentrifugalRadial   = "centrifugal-radial"
	VaneAxial           = "vane-axial"
)

// FanVariants lists the fan technologies.
var FanVariants = []string{CentrifugalBackward, CentrifugalRadial, VaneAxial}

var fans = map[string]*fanTech{
	CentrifugalBackward: {
		ident: "backward", qmax: 47.2222, maxH: 10000,
		vendor: Polynomial{1585, 0.264, 1e-6},
		head:   Piecewise{Breaks: []float64{2000, 3700, 7500}, Values: []float64{1.15, 1.3, 1.45, 1.55}},
	},
	CentrifugalRadial: {
		ident: "radial", qmax: 9.4444, maxH: 7500,
		vendor: Polynomial{1042.9, 0.264, 3e-6},
		head:   Piecewise{Breaks: []float64{2000, 3700, 7500}, Values: []float64{1.15, 1.3, 1.45, 1.45}},
	},
	VaneAxial: {
		ident: "axial", qmax: 377.7778, maxH: 4000,
		vendor: Polynomial{1042.9, 0.1562, 2e-8, 8e-14},
		head:   Piecewise{Breaks: []float64{2000, 4000}, Values: []float64{1.15, 1.3, 1.3}},
	},
}

// acfmPerM3s converts m³/s to actual cubic feet per minute.
const acfmPerM3s = 2118.88

// buildFan builds an air-intake fan. Its pressure rise DP is a state that
// the assembler binds to the pressure drop of the downstream contactor.
func buildFan(b *block) error {
	tech, ok := fans[b.u.Variant]
	if !ok {
		return &BuildError{Unit: b.u.Name, Reason: fmt.Sprintf("unknown fan technology %q", b.u.Variant)}
	}
	air := property.Air(4.2e-4)
	in := b.inlet("in", Vapour, air)
	out := b.outlet("out", Vapour, air)

	etaF := b.param("eta_fan", 0.6, "", 0.3, 0.9, 0.01, 1, "fan efficiency")
	etaM := b.param("eta_motor", 0.9, "", 0.5, 1, 0.01, 1, "motor efficiency")
	fm := b.param("FM", 2.5, "", 1, 4, 0, inf, "fan material factor")
	qmax := b.param("Q_max", tech.qmax, "m3/s", tech.qmax, tech.qmax, 0.01, inf, "capacity of one fan")
	maxH := b.param("max_head", tech.maxH, "Pa", tech.maxH, tech.maxH, 0, inf, "maximum fan head")
	dp := b.m.AddState(b.name("DP"), "Pa")

	Q := b.state("Q", "m3/s", func(v *Values) float64 {
		return property.VolumetricFlow(v.At(in.F), v.At(in.T), v.At(in.P))
	})
	N := b.state("N", "", func(v *Values) float64 { return div(v.At(Q), v.At(qmax)) })
	power := b.state("power", "kW", func(v *Values) float64 {
		return v.At(Q) * v.At(dp) / (1e3 * v.At(etaF) * v.At(etaM))
	})
	b.electricity("fan", func(v *Values) float64 { return v.At(power) })
	fh := b.state("FH", "", func(v *Values) float64 { return tech.head.At(v.At(dp)) })
	corr := &Correlation{
		Name: "fan-" + tech.ident, SizeUnit: "ACFM",
		Lower: 1000, Upper: tech.qmax * acfmPerM3s,
		Curve: tech.vendor, Basis: CEPCI2013,
	}
	b.capital("fans", corr,
		func(v *Values) float64 { return v.At(Q) * acfmPerM3s },
		func(v *Values) float64 { return v.At(N) },
		func(v *Values) float64 { return v.At(fh) * v.At(fm) })
	b.le("head", tech.maxH, func(v *Values) float64 {
		return b.selected(v)*v.At(dp) - v.At(maxH)
	})

	b.m.defineOutlet(out, in.Flows, func(v *Values) float64 { return v.At(in.T) },
		func(v *Values) float64 { return v.At(in.P) + v.At(dp)/1000 })
	return nil
}
