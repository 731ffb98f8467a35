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

	"github.com/ctessum/unit"
)

// Dimensions outside the SI base set.
var (
	// AmountDim is amount of substance, counted in kmol.
	AmountDim = unit.NewDimension("kmol")
	// CurrencyDim is money, counted in USD.
	CurrencyDim = unit.NewDimension("USD")
)

// Dimensions of the global parameters.
var (
	MolarFlow           = unit.Dimensions{AmountDim: 1, unit.TimeDim: -1}
	CurrencyPerEnergy   = unit.Dimensions{CurrencyDim: 1, unit.MassDim: -1, unit.LengthDim: -2, unit.TimeDim: 2}
	CurrencyPerAmount   = unit.Dimensions{CurrencyDim: 1, AmountDim: -1}
	CurrencyPerKilogram = unit.Dimensions{CurrencyDim: 1, unit.MassDim: -1}
)

const (
	secondsPerHour = 3600.0
	secondsPerYear = 365 * 24 * secondsPerHour
)

var inf = math.Inf(1)

// global is a model-wide parameter.
type global struct {
	name                 string
	value                float64
	units                string
	lower, upper         float64
	hardLower, hardUpper float64
	dims                 unit.Dimensions

	// si is the SI value of one working unit.
	si    float64
	usage string
}

// globals are declared in every model.
var globals = []global{
	{"co2_target", 0.008333, "kmol/s", 0, 10, 0, 100, MolarFlow, 1,
		"CO2 capture and methanation target"},
	{"capture_fraction", 1, "", 0.05, 1, 1e-6, 1, unit.Dimless, 1,
		"fraction of the CO2 in the air feed that the contactor captures"},
	{"air_co2", 4.2e-4, "", 2e-4, 1e-3, 1e-6, 0.1, unit.Dimless, 1,
		"CO2 mole fraction of ambient air"},
	{"T_amb", 293, "K", 253, 313, 200, 350, unit.Kelvin, 1,
		"ambient temperature"},
	{"P_amb", 101.325, "kPa", 80, 110, 50, 200, unit.Pascal, 1000,
		"ambient pressure"},
	{"electricity_price", 0.22, "USD/kWh", 0, 1, 0, inf, CurrencyPerEnergy, 1 / 3.6e6,
		"price of electricity"},
	{"water_price", 1.1 * 1.72e-3 * 18.02e-3 * 1000, "USD/kmol", 0, 1, 0, inf, CurrencyPerAmount, 1,
		"price of fresh process water"},
	{"fuel_price", 5.6869e-6, "USD/kJ", 0, 1e-4, 0, inf, CurrencyPerEnergy, 1e-3,
		"price of boiler fuel"},
	{"bfw_price", 0, "USD/kmol", 0, 1, 0, inf, CurrencyPerAmount, 1,
		"price of boiler feed water"},
	{"sorbent_cost", 15, "USD/kg", 1, 100, 0, inf, CurrencyPerKilogram, 1,
		"purchase price of TVSA sorbent"},
	{"dfm_cost", 272, "USD/kg", 10, 1000, 0, inf, CurrencyPerKilogram, 1,
		"purchase price of dual-function material"},
	{"ch4_price", 9, "USD/kmol", 0, 100, -inf, inf, CurrencyPerAmount, 1,
		"value of methane product"},
	{"h2_price", -200, "USD/kmol", -1000, 100, -inf, inf, CurrencyPerAmount, 1,
		"value of hydrogen left in the product"},
	{"discount_rate", 0, "", 0, 0.2, 0, 1, unit.Dimless, 1,
		"discount rate of the capital recovery factor"},
	{"plant_life", 20, "yr", 5, 40, 1, 200, unit.Second, secondsPerYear,
		"economic life of the plant"},
	{"operating_hours", 7920, "h/yr", 1000, 8760, 0, 8760, unit.Dimless, 1 / 8760.0,
		"operating hours per year"},
	{"cepci", 900, "", 300, 1500, 1, inf, nil, 1,
		"chemical engineering plant cost index of the cost year"},
	{"installation_factor", 1, "", 1, 6, 0, inf, unit.Dimless, 1,
		"ratio of installed to purchased equipment cost"},
	{"sorbent_replacement", 0.1, "1/yr", 0, 1, 0, inf, unit.Herz, 1 / secondsPerYear,
		"fraction of the sorbent and DFM inventory replaced per year"},
	{"big_m", 1e4, "kmol/s", 1, 1e8, 1e-6, inf, MolarFlow, 1,
		"big-M bound of selection constraints"},
}

// declareGlobals adds the global parameters to m.
func (m *Model) declareGlobals() {
	for _, g := range globals {
		id := m.AddParameter(g.name, g.value, g.units, g.lower, g.upper, g.hardLower, g.hardUpper)
		v := m.vars[id]
		v.Usage = g.usage
		v.dims = g.dims
		v.si = g.si
	}
}
