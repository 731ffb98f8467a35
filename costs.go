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
	"sort"
)

// Curve is a purchased-cost curve of equipment size.
type Curve interface {
	Cost(size float64) float64
}

// PowerLaw is the cost curve a + b·S^n.
type PowerLaw struct {
	A, B, N float64
}

// Cost implements Curve.
func (p PowerLaw) Cost(s float64) float64 { return p.A + p.B*math.Pow(s, p.N) }

// Polynomial is a vendor cost curve Σ C[i]·S^i.
type Polynomial []float64

// Cost implements Curve.
func (p Polynomial) Cost(s float64) float64 {
	var c float64
	for i := len(p) - 1; i >= 0; i-- {
		c = c*s + p[i]
	}
	return c
}

// Piecewise is a step function: Values[i] applies up to and including
// Breaks[i], and the last value applies above the last break.
type Piecewise struct {
	Breaks []float64
	Values []float64
}

// At returns the value of the step function at x.
func (p Piecewise) At(x float64) float64 {
	for i, b := range p.Breaks {
		if x <= b {
			return p.Values[i]
		}
	}
	return p.Values[len(p.Values)-1]
}

func (p Piecewise) validate() error {
	if len(p.Values) != len(p.Breaks)+1 && len(p.Values) != len(p.Breaks) {
		return fmt.Errorf("%d breaks but %d values", len(p.Breaks), len(p.Values))
	}
	if !sort.Float64sAreSorted(p.Breaks) {
		return fmt.Errorf("breaks are not sorted")
	}
	return nil
}

// Correlation is an equipment cost correlation.
type Correlation struct {
	Name     string
	SizeUnit string

	// Lower and Upper are the validated size range of one unit.
	Lower, Upper float64

	Curve Curve

	// Basis is the CEPCI of the year the curve was fitted in. Zero means
	// the curve is in current USD.
	Basis float64
}

// Purchased returns the base-year purchased cost of equipment of total
// size s together with the number of parallel units it is split into.
// Sizes above Upper are split into s/Upper units.
func (c *Correlation) Purchased(s float64) (cost, n float64) {
	if s <= 0 {
		return 0, 0
	}
	n = 1
	if c.Upper > 0 && s > c.Upper {
		n = s / c.Upper
	}
	return c.PurchasedN(s, n), n
}

// PurchasedN returns the base-year purchased cost of n parallel units of
// total size s.
func (c *Correlation) PurchasedN(s, n float64) float64 {
	if s <= 0 || n <= 0 {
		return 0
	}
	return n * c.Curve.Cost(s/n)
}

// Escalate converts a base-year cost to the year with cost index cepci.
func (c *Correlation) Escalate(cost, cepci float64) float64 {
	if c.Basis == 0 {
		return cost
	}
	return cost * cepci / c.Basis
}

// CEPCI indices of the correlation basis years.
const (
	CEPCI2007 = 509.7
	CEPCI2013 = 567.0
)

// Cost correlations (Towler and Sinnott, 2021; Seider et al., 2017).
var (
	CompressorCost = &Correlation{Name: "Compressor_Centrifugal", SizeUnit: "kW", Lower: 1, Upper: 30000,
		Curve: PowerLaw{A: 490000, B: 16800, N: 0.6}, Basis: CEPCI2007}
	PumpCost = &Correlation{Name: "Pump", SizeUnit: "kW", Lower: 1, Upper: 2500,
		Curve: PowerLaw{A: 950, B: 1770, N: 0.6}, Basis: CEPCI2007}
	AxialFanCost = &Correlation{Name: "Axial_Fan", SizeUnit: "m3/h", Lower: 100, Upper: 170000,
		Curve: PowerLaw{A: 4200, B: 27, N: 0.8}, Basis: CEPCI2007}
	CentrifugalFanCost = &Correlation{Name: "Centrifugal_Fan", SizeUnit: "m3/h", Lower: 100, Upper: 170000,
		Curve: PowerLaw{A: 53000, B: 28000, N: 0.8}, Basis: CEPCI2007}
	HeatExchangerCost = &Correlation{Name: "HEX_Shell&Tube", SizeUnit: "m2", Lower: 10, Upper: 1000,
		Curve: PowerLaw{A: 24000, B: 46, N: 1.2}, Basis: CEPCI2007}
	ReactorCost = &Correlation{Name: "Reactor", SizeUnit: "m3", Lower: 0.5, Upper: 100,
		Curve: PowerLaw{A: 53000, B: 28000, N: 0.8}, Basis: CEPCI2007}
	AirCoolerCost = &Correlation{Name: "Air-Cooler", SizeUnit: "ft2", Lower: 40, Upper: 150,
		Curve: PowerLaw{A: 0, B: 2835, N: 0.45}, Basis: CEPCI2013}
	VesselCost = &Correlation{Name: "Vertical_Vessel", SizeUnit: "kg", Lower: 160, Upper: 250000,
		Curve: PowerLaw{A: 10000, B: 29, N: 0.85}, Basis: CEPCI2007}
)

// Correlations lists the tabulated cost correlations by name.
var Correlations = map[string]*Correlation{}

func init() {
	for _, c := range []*Correlation{CompressorCost, PumpCost, AxialFanCost,
		CentrifugalFanCost, HeatExchangerCost, ReactorCost, AirCoolerCost, VesselCost} {
		if c.Lower <= 0 || c.Upper <= c.Lower {
			panic(fmt.Errorf("co2ch4: correlation %s has invalid range [%g, %g]", c.Name, c.Lower, c.Upper))
		}
		Correlations[c.Name] = c
	}
	for name, f := range fans {
		if err := f.head.validate(); err != nil {
			panic(fmt.Errorf("co2ch4: fan %s head factor: %v", name, err))
		}
	}
}
