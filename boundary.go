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
	"sort"

	"github.com/spatialmodel/co2ch4/property"
)

// AddSource adds a feed with a single outlet "out". The composition is
// given by x, or is nominal when x is nil. T and P are the variables the
// feed temperature and pressure are bound to. When flow is nil the feed
// flow is a parameter "<name>.F".
func (m *Model) AddSource(name string, phase Phase, nominal property.Composition, x func(v *Values) property.Composition, T, P VarID, flow Expr) (*Port, error) {
	if err := nominal.Validate(); err != nil {
		return nil, &BuildError{Unit: name, Reason: err.Error()}
	}
	u := m.newUnit(name, SourceUnit, "", NoVar)
	b := &block{m: m, u: u}
	out := b.outlet("out", phase, nominal)
	if flow == nil {
		F := b.fixed("F", 0, "kmol/s", "feed flow")
		flow = func(v *Values) float64 { return v.At(F) }
	}
	if x == nil {
		x = func(*Values) property.Composition { return nominal }
	}
	m.Define(out.F, flow)
	for _, c := range property.Components() {
		c := c
		m.Define(out.X[c], func(v *Values) float64 { return x(v)[c] })
	}
	m.Bind(out.T, T)
	m.Bind(out.P, P)
	return out, m.Err()
}

// AddSink adds a product or vent with a single inlet "in". Each
// component with a named price parameter [USD/kmol] earns revenue.
func (m *Model) AddSink(name string, phase Phase, nominal property.Composition, prices map[property.Component]string) (*Port, error) {
	u := m.newUnit(name, SinkUnit, "", NoVar)
	b := &block{m: m, u: u}
	in := b.inlet("in", phase, nominal)
	if len(prices) == 0 {
		return in, m.Err()
	}
	hours := b.global("operating_hours")
	comps := make([]property.Component, 0, len(prices))
	for c := range prices {
		comps = append(comps, c)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i] < comps[j] })
	for _, c := range comps {
		c := c
		price := b.global(prices[c])
		b.revenue(c.String(), func(v *Values) float64 {
			return in.Flows(v)[c] * v.At(price) * secondsPerHour * v.At(hours)
		})
	}
	return in, m.Err()
}
