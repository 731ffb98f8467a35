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

// UnitType is the closed set of unit families.
type UnitType int

// Unit families.
const (
	SourceUnit UnitType = iota
	SinkUnit
	SplitterUnit
	MixerUnit
	FanUnit
	DACUnit
	TVSAUnit
	ElectrolyserUnit
	DFMUnit
	CompressorUnit
	SteamGeneratorUnit
	AirCoolerUnit
	SeparatorUnit
)

var unitTypeNames = []string{
	SourceUnit:         "source",
	SinkUnit:           "sink",
	SplitterUnit:       "splitter",
	MixerUnit:          "mixer",
	FanUnit:            "fan",
	DACUnit:            "dac",
	TVSAUnit:           "tvsa",
	ElectrolyserUnit:   "electrolyser",
	DFMUnit:            "dfm",
	CompressorUnit:     "compressor",
	SteamGeneratorUnit: "steam",
	AirCoolerUnit:      "aircooler",
	SeparatorUnit:      "separator",
}

func (t UnitType) String() string {
	if t < 0 || int(t) >= len(unitTypeNames) {
		return fmt.Sprintf("UnitType(%d)", int(t))
	}
	return unitTypeNames[t]
}

// Unit is a unit instance in the flowsheet.
type Unit struct {
	Name    string
	Type    UnitType
	Variant string

	Inlets, Outlets []*Port

	// Selection is the selection variable of the variant, or NoVar
	// when the unit is always present.
	Selection VarID
}

// Inlet returns the named inlet port, or nil.
func (u *Unit) Inlet(name string) *Port {
	for _, p := range u.Inlets {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Outlet returns the named outlet port, or nil.
func (u *Unit) Outlet(name string) *Port {
	for _, p := range u.Outlets {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// builder adds the ports, variables and constraints of a unit family.
type builder func(b *block) error

// builders is the dispatch table of the process-unit families. Boundary
// units and splitters and mixers are added by their own constructors.
var builders map[UnitType]builder

func init() {
	builders = map[UnitType]builder{
		FanUnit:            buildFan,
		DACUnit:            buildDAC,
		TVSAUnit:           buildTVSA,
		ElectrolyserUnit:   buildElectrolyser,
		DFMUnit:            buildDFM,
		CompressorUnit:     buildCompressor,
		SteamGeneratorUnit: buildSteamGenerator,
		AirCoolerUnit:      buildAirCooler,
		SeparatorUnit:      buildSeparator,
	}
}

func (m *Model) newUnit(name string, t UnitType, variant string, sel VarID) *Unit {
	u := &Unit{Name: name, Type: t, Variant: variant, Selection: sel}
	if m.sealed {
		m.fail(&BuildError{Unit: name, Reason: "model is already compiled"})
	}
	for _, e := range m.units {
		if e.Name == name {
			m.fail(&BuildError{Unit: name, Reason: "unit name used twice"})
		}
	}
	m.units = append(m.units, u)
	return u
}

// AddUnit adds a process unit of family t and variant. sel is the
// selection variable of the variant, or NoVar.
func (m *Model) AddUnit(name string, t UnitType, variant string, sel VarID) (*Unit, error) {
	build, ok := builders[t]
	if !ok {
		return nil, &BuildError{Unit: name, Reason: fmt.Sprintf("no builder for unit type %v", t)}
	}
	u := m.newUnit(name, t, variant, sel)
	if err := build(&block{m: m, u: u}); err != nil {
		return nil, err
	}
	return u, m.Err()
}

// Unit returns the named unit, or nil.
func (m *Model) Unit(name string) *Unit {
	for _, u := range m.units {
		if u.Name == name {
			return u
		}
	}
	return nil
}

// block is the construction context of one unit. Names it creates are
// prefixed with the unit name.
type block struct {
	m *Model
	u *Unit
}

func (b *block) name(n string) string { return b.u.Name + "." + n }

// param declares a unit parameter. Overrides are applied after assembly.
func (b *block) param(name string, value float64, units string, lower, upper, hardLower, hardUpper float64, usage string) VarID {
	id := b.m.AddParameter(b.name(name), value, units, lower, upper, hardLower, hardUpper)
	b.m.vars[id].Usage = usage
	return id
}

// fixed declares a parameter that may take any non-negative value.
func (b *block) fixed(name string, value float64, units, usage string) VarID {
	return b.param(name, value, units, 0, math.Inf(1), 0, math.Inf(1), usage)
}

func (b *block) decision(name string, lower, upper, initial float64, units string) VarID {
	return b.m.AddDecision(b.name(name), lower, upper, initial, units)
}

// state declares a state defined by f.
func (b *block) state(name, units string, f Expr) VarID {
	id := b.m.AddState(b.name(name), units)
	b.m.Define(id, f)
	return id
}

// global returns the model-wide parameter name.
func (b *block) global(name string) VarID {
	id, ok := b.m.Lookup(name)
	if !ok {
		b.m.fail(&BuildError{Unit: b.u.Name, Reason: "missing global parameter " + name})
		return NoVar
	}
	return id
}

func (b *block) eq(name string, scale float64, f Expr) {
	b.m.AddEquality(b.name(name), scale, f)
}

func (b *block) le(name string, scale float64, f Expr) {
	b.m.AddInequality(b.name(name), scale, f)
}

// inlet and outlet add ports to the unit.
func (b *block) inlet(name string, phase Phase, nominal property.Composition) *Port {
	return b.m.newPort(b.u, name, Inlet, phase, nominal)
}

func (b *block) outlet(name string, phase Phase, nominal property.Composition) *Port {
	return b.m.newPort(b.u, name, Outlet, phase, nominal)
}

// capital registers purchased equipment sized by size and costed with
// correlation c. When count is nil, oversize equipment is split into
// parallel units. factor, if not nil, multiplies the purchased cost.
func (b *block) capital(item string, c *Correlation, size, count, factor Expr) {
	b.m.econ.addCapital(b.m, b.u.Name, item, c, size, count, factor)
}

// inventory registers a capital item priced directly in current USD.
func (b *block) inventory(item string, cost Expr) {
	b.m.econ.addInventory(b.m, b.u.Name, item, cost)
}

// electricity registers a power demand [kW].
func (b *block) electricity(item string, kW Expr) {
	b.m.econ.addFlow(b.m, &b.m.econ.electricity, b.u.Name, item, "kW", kW)
}

// water registers a fresh water demand [kmol/s].
func (b *block) water(item string, F Expr) {
	b.m.econ.addFlow(b.m, &b.m.econ.water, b.u.Name, item, "kmol/s", F)
}

// consumable registers a replacement cost [USD/yr].
func (b *block) consumable(item string, cost Expr) {
	b.m.econ.addFlow(b.m, &b.m.econ.consumables, b.u.Name, item, "USD/yr", cost)
}

// revenue registers an income [USD/yr].
func (b *block) revenue(item string, r Expr) {
	b.m.econ.addFlow(b.m, &b.m.econ.revenue, b.u.Name, item, "USD/yr", r)
}

// heat reports recoverable heat [kW]. It is not costed.
func (b *block) heat(item string, kW Expr) {
	b.m.econ.addFlow(b.m, &b.m.econ.heat, b.u.Name, item, "kW", kW)
}

// selected returns the selection value of the unit, or 1.
func (b *block) selected(v *Values) float64 {
	if b.u.Selection == NoVar {
		return 1
	}
	return v.At(b.u.Selection)
}

// div returns a/c, or zero when c is zero.
func div(a, c float64) float64 {
	if c == 0 {
		return 0
	}
	return a / c
}

// pos returns max(x, 0).
func pos(x float64) float64 { return math.Max(x, 0) }
