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

	"gonum.org/v1/gonum/floats"
)

// CapitalRecoveryFactor returns the annuity factor i(1+i)^n/((1+i)^n-1)
// that spreads a capital cost over n years at discount rate i. It is 1/n
// at i = 0.
func CapitalRecoveryFactor(i, n float64) float64 {
	if n <= 0 {
		return math.NaN()
	}
	if math.Abs(i) < 1e-9 {
		// Second-order expansion around i = 0.
		return 1/n + i/2 + i*i*(n*n-1)/(12*n)
	}
	f := math.Pow(1+i, n)
	return i * f / (f - 1)
}

// AnnualisedCost returns the total annualised cost crf·capex + opex.
func AnnualisedCost(crf, capex, opex float64) float64 {
	return crf*capex + opex
}

// capitalItem is purchased equipment or inventory of one unit.
type capitalItem struct {
	unit, item string
	corr       *Correlation

	// size, count and factor describe correlated equipment. count and
	// factor may be nil.
	size, count, factor Expr

	// cost is the current-year price of inventory.
	cost Expr

	id VarID
}

// evaluate returns the base-year purchased cost, the purchased cost in
// the cost year, the installed cost and the unclipped installed cost.
func (c *capitalItem) evaluate(v *Values, cepci, installation float64) (purchased, escalated, installed, raw float64) {
	if c.corr == nil {
		raw = c.cost(v)
		purchased = pos(raw)
		return purchased, purchased, purchased, raw
	}
	s := c.size(v)
	var p float64
	if c.count == nil {
		p, _ = c.corr.Purchased(s)
	} else {
		p = c.corr.PurchasedN(s, c.count(v))
	}
	if c.factor != nil {
		p *= c.factor(v)
	}
	raw = c.corr.Escalate(p, cepci) * installation
	if raw < 0 {
		return 0, 0, 0, raw
	}
	return p, c.corr.Escalate(p, cepci), raw, raw
}

// unitSize returns the size of one unit of correlated equipment and the
// number of units.
func (c *capitalItem) unitSize(v *Values) (size, n float64) {
	s := c.size(v)
	if c.count == nil {
		_, n = c.corr.Purchased(s)
	} else {
		n = c.count(v)
	}
	if s <= 0 || n <= 0 {
		return 0, 0
	}
	return s / n, n
}

// flowItem is a utility demand, consumable or revenue of one unit.
type flowItem struct {
	unit, item, units string
	f                 Expr
	id                VarID
}

// economics collects the cost items of a model.
type economics struct {
	capital     []*capitalItem
	electricity []*flowItem
	water       []*flowItem
	consumables []*flowItem
	revenue     []*flowItem
	heat        []*flowItem

	crf, capex, power, elecCost, waterCost, consCost, opex, rev, tac, profit VarID
}

func newEconomics() *economics { return new(economics) }

func (e *economics) addCapital(m *Model, unitName, item string, c *Correlation, size, count, factor Expr) {
	ci := &capitalItem{unit: unitName, item: item, corr: c, size: size, count: count, factor: factor}
	e.addCapitalItem(m, ci)
}

func (e *economics) addInventory(m *Model, unitName, item string, cost Expr) {
	e.addCapitalItem(m, &capitalItem{unit: unitName, item: item, cost: cost})
}

func (e *economics) addCapitalItem(m *Model, ci *capitalItem) {
	ci.id = m.AddState(ci.unit+".capex."+ci.item, "USD")
	cepci, inst := m.index["cepci"], m.index["installation_factor"]
	m.Define(ci.id, func(v *Values) float64 {
		_, _, installed, _ := ci.evaluate(v, v.At(cepci), v.At(inst))
		return installed
	})
	e.capital = append(e.capital, ci)
}

// addFlow registers an item in list. Cost items are clipped at zero;
// revenue and heat are not.
func (e *economics) addFlow(m *Model, list *[]*flowItem, unitName, item, units string, f Expr) {
	kind := "revenue"
	clip := true
	switch list {
	case &e.electricity:
		kind = "power"
	case &e.water:
		kind = "water"
	case &e.consumables:
		kind = "consumables"
	case &e.heat:
		kind, clip = "heat", false
	default:
		clip = false
	}
	fi := &flowItem{unit: unitName, item: item, units: units, f: f}
	fi.id = m.AddState(unitName+"."+kind+"."+item, units)
	if clip {
		m.Define(fi.id, func(v *Values) float64 { return pos(f(v)) })
	} else {
		m.Define(fi.id, f)
	}
	*list = append(*list, fi)
}

func sumItems(v *Values, items []*flowItem) float64 {
	x := make([]float64, len(items))
	for i, it := range items {
		x[i] = v.At(it.id)
	}
	return floats.Sum(x)
}

// finalize defines the economic totals.
func (e *economics) finalize(m *Model) {
	g := func(name string) VarID { return m.index[name] }
	rate, life := g("discount_rate"), g("plant_life")
	hours, elec, water := g("operating_hours"), g("electricity_price"), g("water_price")

	e.crf = m.AddState("econ.CRF", "1/yr")
	m.Define(e.crf, func(v *Values) float64 { return CapitalRecoveryFactor(v.At(rate), v.At(life)) })

	e.capex = m.AddState("econ.CAPEX", "USD")
	m.Define(e.capex, func(v *Values) float64 {
		x := make([]float64, len(e.capital))
		for i, c := range e.capital {
			x[i] = v.At(c.id)
		}
		return floats.Sum(x)
	})
	e.power = m.AddState("econ.power", "kW")
	m.Define(e.power, func(v *Values) float64 { return sumItems(v, e.electricity) })
	e.elecCost = m.AddState("econ.electricity", "USD/yr")
	m.Define(e.elecCost, func(v *Values) float64 {
		return v.At(e.power) * v.At(elec) * v.At(hours)
	})
	e.waterCost = m.AddState("econ.water", "USD/yr")
	m.Define(e.waterCost, func(v *Values) float64 {
		return sumItems(v, e.water) * v.At(water) * secondsPerHour * v.At(hours)
	})
	e.consCost = m.AddState("econ.consumables", "USD/yr")
	m.Define(e.consCost, func(v *Values) float64 { return sumItems(v, e.consumables) })
	e.opex = m.AddState("econ.OPEX", "USD/yr")
	m.Define(e.opex, func(v *Values) float64 {
		return v.At(e.elecCost) + v.At(e.waterCost) + v.At(e.consCost)
	})
	e.rev = m.AddState("econ.Revenue", "USD/yr")
	m.Define(e.rev, func(v *Values) float64 { return sumItems(v, e.revenue) })
	e.tac = m.AddState("econ.TAC", "USD/yr")
	m.Define(e.tac, func(v *Values) float64 {
		return AnnualisedCost(v.At(e.crf), v.At(e.capex), v.At(e.opex))
	})
	e.profit = m.AddState("econ.Profit", "USD/yr")
	m.Define(e.profit, func(v *Values) float64 { return v.At(e.rev) - v.At(e.tac) })
}

// UnitCost is the capital cost of one item of equipment or inventory.
type UnitCost struct {
	Unit, Item string

	// Purchased is in the correlation basis year, Escalated in the cost
	// year and Installed includes the installation factor.
	Purchased, Escalated, Installed float64
}

// LineItem is one annual cost, demand or revenue.
type LineItem struct {
	Unit, Item, Units string
	Value             float64
}

// CostRecord is the economic evaluation of a solved model.
type CostRecord struct {
	Capital []UnitCost

	Electricity, Water, Consumables, Revenue, Heat []LineItem

	CRF float64

	// CAPEX is the installed capital cost [USD].
	CAPEX float64

	// Power is the total electricity demand [kW].
	Power float64

	// Annual costs [USD/yr].
	ElectricityCost, WaterCost, ConsumablesCost float64
	OPEX, RevenueTotal, TAC, Profit            float64
}

func lineItems(v *Values, items []*flowItem) []LineItem {
	o := make([]LineItem, len(items))
	for i, it := range items {
		o[i] = LineItem{Unit: it.unit, Item: it.item, Units: it.units, Value: v.At(it.id)}
	}
	return o
}

// record evaluates the cost record at v. Negative raw costs are clipped
// and reported as warnings.
func (e *economics) record(m *Model, v *Values) (CostRecord, []string) {
	var warn []string
	cepci, inst := v.At(m.index["cepci"]), v.At(m.index["installation_factor"])
	r := CostRecord{
		CRF:             v.At(e.crf),
		CAPEX:           v.At(e.capex),
		Power:           v.At(e.power),
		ElectricityCost: v.At(e.elecCost),
		WaterCost:       v.At(e.waterCost),
		ConsumablesCost: v.At(e.consCost),
		OPEX:            v.At(e.opex),
		RevenueTotal:    v.At(e.rev),
		TAC:             v.At(e.tac),
		Profit:          v.At(e.profit),
		Electricity:     lineItems(v, e.electricity),
		Water:           lineItems(v, e.water),
		Consumables:     lineItems(v, e.consumables),
		Revenue:         lineItems(v, e.revenue),
		Heat:            lineItems(v, e.heat),
	}
	for _, c := range e.capital {
		p, esc, installed, raw := c.evaluate(v, cepci, inst)
		if raw < 0 {
			warn = append(warn, fmt.Sprintf("modelling error: %s %s cost correlation gives %g USD; clipped to zero", c.unit, c.item, raw))
		}
		if c.corr != nil {
			if s, n := c.unitSize(v); n > 0 && (s < c.corr.Lower || s > c.corr.Upper*(1+1e-9)) {
				warn = append(warn, fmt.Sprintf("%s %s size %g %s per unit outside validated range [%g, %g] of correlation %s",
					c.unit, c.item, s, c.corr.SizeUnit, c.corr.Lower, c.corr.Upper, c.corr.Name))
			}
		}
		r.Capital = append(r.Capital, UnitCost{Unit: c.unit, Item: c.item, Purchased: p, Escalated: esc, Installed: installed})
	}
	for _, list := range [][]*flowItem{e.electricity, e.water, e.consumables} {
		for _, it := range list {
			if raw := it.f(v); raw < 0 {
				warn = append(warn, fmt.Sprintf("modelling error: %s %s is %g %s; clipped to zero", it.unit, it.item, raw, it.units))
			}
		}
	}
	return r, warn
}
