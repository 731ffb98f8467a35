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

// Ancillaries switch the optional downstream units on or off.
type Ancillaries struct {
	// SteamGenerator recovers reactor heat as steam.
	SteamGenerator bool `toml:"steam_generator"`

	// AirCooler cools the product and condenses water.
	AirCooler bool `toml:"air_cooler"`

	// Separator knocks the condensed water out of the product.
	Separator bool `toml:"separator"`

	// WaterRecycle returns the separated water to the electrolysers.
	// It requires Separator.
	WaterRecycle bool `toml:"water_recycle"`
}

// Configuration describes a superstructure.
type Configuration struct {
	// Choices maps a choice point to a variant or Free. Points left out
	// take DefaultChoices.
	Choices map[string]string `toml:"choices"`

	Ancillaries Ancillaries `toml:"ancillaries"`

	// Units holds parameter overrides by unit name and parameter.
	Units map[string]map[string]float64 `toml:"units"`

	// Parameters holds overrides of global parameters.
	Parameters map[string]float64 `toml:"parameters"`
}

// choice returns the configured choice at point.
func (c *Configuration) choice(point string) string {
	if v, ok := c.Choices[point]; ok {
		return v
	}
	return DefaultChoices[point]
}

// adsorbent is a unit holding the adsorbent inventory of the contactor.
type adsorbent struct {
	W, trains VarID

	// weight is the product of the selection variables on the path to
	// the unit.
	weight Expr
}

// assembler builds the flowsheet of a configuration.
type assembler struct {
	m   *Model
	cfg *Configuration

	// routes are the adsorption branches; h2 and out hold the hydrogen
	// inlet and product outlet of the methanation reactor of each.
	routes  []branch
	h2, out []*Port

	adsorbents []adsorbent
	demands    []VarID
}

// Assemble builds the model of superstructure cfg using property
// library lib, which may be nil for the built-in data.
func Assemble(cfg Configuration, lib *property.Library) (*Model, error) {
	for _, p := range sortedKeys(cfg.Choices) {
		if err := checkChoice(p, cfg.Choices[p]); err != nil {
			return nil, err
		}
	}
	if cfg.Ancillaries.WaterRecycle && !cfg.Ancillaries.Separator {
		return nil, &BuildError{Unit: "water_mix", Reason: "water recycle needs the separator"}
	}
	a := &assembler{m: NewModel(lib), cfg: &cfg}
	if err := a.build(); err != nil {
		return nil, err
	}
	if err := a.m.Err(); err != nil {
		return nil, err
	}
	if err := a.overrides(); err != nil {
		return nil, err
	}
	if err := a.m.validate(); err != nil {
		return nil, err
	}
	return a.m, nil
}

func (a *assembler) g(name string) VarID {
	id, ok := a.m.Lookup(name)
	if !ok {
		a.m.fail(&BuildError{Reason: "assembler refers to missing variable " + name})
		return NoVar
	}
	return id
}

// weight returns the selection weight of a path through brs.
func weight(brs ...branch) Expr {
	return func(v *Values) float64 {
		w := 1.0
		for _, br := range brs {
			if br.sel != NoVar {
				w *= v.At(br.sel)
			}
		}
		return w
	}
}

func (a *assembler) build() error {
	m := a.m
	tAmb, pAmb := a.g("T_amb"), a.g("P_amb")

	dac, err := m.AddUnit("dac", DACUnit, "", NoVar)
	if err != nil {
		return err
	}
	if err := a.intake(dac, tAmb, pAmb); err != nil {
		return err
	}
	if err := a.adsorption(dac); err != nil {
		return err
	}
	feed, recycle, err := a.water(tAmb, pAmb)
	if err != nil {
		return err
	}
	h2, err := a.electrolysis(feed)
	if err != nil {
		return err
	}
	srcs, err := m.fanOut("h2_split", h2, a.routes)
	if err != nil {
		return err
	}
	for i, s := range srcs {
		if err := m.Connect(s, a.h2[i]); err != nil {
			return err
		}
	}
	product, err := m.collect("reactor_mix", a.out)
	if err != nil {
		return err
	}

	m.Define(a.g("dac.W"), func(v *Values) float64 {
		var w float64
		for _, s := range a.adsorbents {
			w += v.At(s.W)
		}
		return w
	})
	m.Define(a.g("dac.trains"), func(v *Values) float64 {
		var n float64
		for _, s := range a.adsorbents {
			n += s.weight(v) * v.At(s.trains)
		}
		return n
	})
	return a.downstream(product, recycle)
}

// intake builds the air feed and fans of the contactor.
func (a *assembler) intake(dac *Unit, tAmb, pAmb VarID) error {
	m := a.m
	demand, xco2 := a.g("dac.air_demand"), a.g("air_co2")
	air, err := m.AddSource("air", Vapour, property.Air(4.2e-4),
		func(v *Values) property.Composition { return property.Air(v.At(xco2)) },
		tAmb, pAmb, func(v *Values) float64 { return v.At(demand) })
	if err != nil {
		return err
	}
	brs, err := m.choose(FanChoice, a.cfg.choice(FanChoice))
	if err != nil {
		return err
	}
	srcs, err := m.fanOut("fan_split", air, brs)
	if err != nil {
		return err
	}
	dp := a.g("dac.DP")
	var outs []*Port
	for i, br := range brs {
		u, err := m.AddUnit(br.unitName("fan"), FanUnit, br.variant, br.sel)
		if err != nil {
			return err
		}
		m.Bind(a.g(u.Name+".DP"), dp)
		if err := m.Connect(srcs[i], u.Inlet("in")); err != nil {
			return err
		}
		outs = append(outs, u.Outlet("out"))
	}
	out, err := m.collect("fan_mix", outs)
	if err != nil {
		return err
	}
	if err := m.Connect(out, dac.Inlet("in")); err != nil {
		return err
	}
	vent, err := m.AddSink("air_vent", Vapour, property.Air(0), nil)
	if err != nil {
		return err
	}
	return m.Connect(dac.Outlet("depleted"), vent)
}

// adsorption builds the methanation routes fed by the captured CO2.
func (a *assembler) adsorption(dac *Unit) error {
	m := a.m
	routes, err := m.choose(AdsorptionChoice, a.cfg.choice(AdsorptionChoice))
	if err != nil {
		return err
	}
	a.routes = routes
	srcs, err := m.fanOut("adsorption_split", dac.Outlet("captured"), routes)
	if err != nil {
		return err
	}
	for i, br := range routes {
		var r *Unit
		switch br.variant {
		case DFMRoute:
			r, err = m.AddUnit("dfm", DFMUnit, DFMIntegrated, br.sel)
			if err != nil {
				return err
			}
			if err := m.Connect(srcs[i], r.Inlet("co2")); err != nil {
				return err
			}
			a.adsorbents = append(a.adsorbents, adsorbent{
				W: a.g("dfm.W"), trains: a.g("dfm.trains"), weight: weight(br),
			})
		case TVSARoute:
			if r, err = a.tvsa(srcs[i], br); err != nil {
				return err
			}
		}
		a.h2 = append(a.h2, r.Inlet("h2"))
		a.out = append(a.out, r.Outlet("out"))
		a.demands = append(a.demands, a.g(r.Name+".h2_demand"))
	}
	return nil
}

// tvsa builds the desorption beds, compressor and packed-bed methanator
// of the TVSA route and returns the methanator.
func (a *assembler) tvsa(src *Port, route branch) (*Unit, error) {
	m := a.m
	brs, err := m.choose(SorbentChoice, a.cfg.choice(SorbentChoice))
	if err != nil {
		return nil, err
	}
	srcs, err := m.fanOut("sorbent_split", src, brs)
	if err != nil {
		return nil, err
	}
	var outs []*Port
	for i, br := range brs {
		u, err := m.AddUnit(br.unitName("tvsa"), TVSAUnit, br.variant, br.sel)
		if err != nil {
			return nil, err
		}
		if err := m.Connect(srcs[i], u.Inlet("in")); err != nil {
			return nil, err
		}
		outs = append(outs, u.Outlet("out"))
		a.adsorbents = append(a.adsorbents, adsorbent{
			W: a.g(u.Name + ".W"), trains: a.g(u.Name + ".beds"), weight: weight(route, br),
		})
	}
	co2, err := m.collect("tvsa_mix", outs)
	if err != nil {
		return nil, err
	}
	comp, err := m.AddUnit("compressor", CompressorUnit, "", route.sel)
	if err != nil {
		return nil, err
	}
	if err := m.Connect(co2, comp.Inlet("in")); err != nil {
		return nil, err
	}
	r, err := m.AddUnit("methanator", DFMUnit, DFMPackedBed, route.sel)
	if err != nil {
		return nil, err
	}
	return r, m.Connect(comp.Outlet("out"), r.Inlet("co2"))
}

// water builds the fresh water supply. With a recycle, the supply is
// mixed with the recycled water, whose inlet is returned for connection.
// The supply makes up the hydrogen demand of the reactors.
func (a *assembler) water(tAmb, pAmb VarID) (feed, recycle *Port, err error) {
	m := a.m
	var recycled VarID = NoVar
	supply, err := m.AddSource("water_supply", Liquid, property.Pure(property.H2O), nil, tAmb, pAmb,
		func(v *Values) float64 {
			var d float64
			for _, id := range a.demands {
				d += v.At(id)
			}
			if recycled != NoVar {
				d -= v.At(recycled)
			}
			return math.Max(0, d)
		})
	if err != nil {
		return nil, nil, err
	}
	b := &block{m: m, u: supply.Unit}
	b.water("fresh", func(v *Values) float64 { return v.At(supply.F) })
	if !a.cfg.Ancillaries.WaterRecycle {
		return supply, nil, nil
	}
	u, out := m.newMixer("water_mix", Liquid, property.Pure(property.H2O), 2)
	if err := m.Connect(supply, u.Inlets[0]); err != nil {
		return nil, nil, err
	}
	recycled = u.Inlets[1].F
	return out, u.Inlets[1], nil
}

// electrolysis builds the electrolysers fed by feed and returns their
// hydrogen. Their oxygen is vented.
func (a *assembler) electrolysis(feed *Port) (*Port, error) {
	m := a.m
	brs, err := m.choose(ElectrolyserChoice, a.cfg.choice(ElectrolyserChoice))
	if err != nil {
		return nil, err
	}
	srcs, err := m.fanOut("electrolyser_split", feed, brs)
	if err != nil {
		return nil, err
	}
	var h2, o2 []*Port
	for i, br := range brs {
		u, err := m.AddUnit(br.unitName("electrolyser"), ElectrolyserUnit, br.variant, br.sel)
		if err != nil {
			return nil, err
		}
		if err := m.Connect(srcs[i], u.Inlet("water")); err != nil {
			return nil, err
		}
		h2 = append(h2, u.Outlet("h2"))
		o2 = append(o2, u.Outlet("o2"))
	}
	oxygen, err := m.collect("o2_mix", o2)
	if err != nil {
		return nil, err
	}
	vent, err := m.AddSink("o2_vent", Vapour, property.Pure(property.O2), nil)
	if err != nil {
		return nil, err
	}
	if err := m.Connect(oxygen, vent); err != nil {
		return nil, err
	}
	return m.collect("h2_mix", h2)
}

// downstream builds the heat recovery and product conditioning units
// after the reactors and the product sink.
func (a *assembler) downstream(p, recycle *Port) error {
	m := a.m
	anc := a.cfg.Ancillaries
	if anc.SteamGenerator {
		brs, err := m.choose(SteamChoice, a.cfg.choice(SteamChoice))
		if err != nil {
			return err
		}
		srcs, err := m.fanOut("steam_split", p, brs)
		if err != nil {
			return err
		}
		var outs []*Port
		for i, br := range brs {
			u, err := m.AddUnit(br.unitName("steam"), SteamGeneratorUnit, br.variant, br.sel)
			if err != nil {
				return err
			}
			if err := m.Connect(srcs[i], u.Inlet("in")); err != nil {
				return err
			}
			outs = append(outs, u.Outlet("out"))
		}
		if p, err = m.collect("steam_mix", outs); err != nil {
			return err
		}
	}
	if anc.AirCooler {
		u, err := m.AddUnit("aircooler", AirCoolerUnit, "", NoVar)
		if err != nil {
			return err
		}
		if err := m.Connect(p, u.Inlet("in")); err != nil {
			return err
		}
		p = u.Outlet("out")
	}
	if anc.Separator {
		u, err := m.AddUnit("separator", SeparatorUnit, "", NoVar)
		if err != nil {
			return err
		}
		if err := m.Connect(p, u.Inlet("in")); err != nil {
			return err
		}
		p = u.Outlet("vapour")
		if recycle != nil {
			err = m.ConnectRecycle(u.Outlet("liquid"), recycle)
		} else {
			var drain *Port
			if drain, err = m.AddSink("water_drain", Liquid, property.Pure(property.H2O), nil); err == nil {
				err = m.Connect(u.Outlet("liquid"), drain)
			}
		}
		if err != nil {
			return err
		}
	}
	sink, err := m.AddSink("product", p.Phase, p.Nominal, map[property.Component]string{
		property.CH4: "ch4_price",
		property.H2:  "h2_price",
	})
	if err != nil {
		return err
	}
	return m.Connect(p, sink)
}

// overrides applies the parameter overrides of the configuration.
func (a *assembler) overrides() error {
	for _, name := range sortedKeys(a.cfg.Parameters) {
		if err := a.m.SetParameter(name, a.cfg.Parameters[name]); err != nil {
			return err
		}
	}
	for _, u := range sortedKeys(a.cfg.Units) {
		if a.m.Unit(u) == nil {
			return &ConfigurationError{Field: "units." + u, Reason: "no such unit"}
		}
		params := a.cfg.Units[u]
		for _, p := range sortedKeys(params) {
			if err := a.m.SetParameter(u+"."+p, params[p]); err != nil {
				return err
			}
		}
	}
	return nil
}
