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
	"sort"
	"strings"
)

// Free is the choice value that leaves a choice point to the optimiser.
const Free = "free"

// Choice points of the superstructure.
const (
	ElectrolyserChoice = "electrolyser"
	AdsorptionChoice   = "adsorption"
	FanChoice          = "fan"
	SorbentChoice      = "sorbent"
	SteamChoice        = "steam"
)

// Adsorption routes.
const (
	// DFMRoute captures CO2 on a dual-function material and methanates
	// it in place.
	DFMRoute = "DFM"
	// TVSARoute captures CO2 on a sorbent, desorbs it by temperature
	// and vacuum swing and methanates it in a packed bed.
	TVSARoute = "TVSA"
)

// ChoicePoints lists the variants of every choice point.
var ChoicePoints = map[string][]string{
	ElectrolyserChoice: ElectrolyserVariants,
	AdsorptionChoice:   {DFMRoute, TVSARoute},
	FanChoice:          FanVariants,
	SorbentChoice:      SorbentVariants,
	SteamChoice:        SteamVariants,
}

// DefaultChoices are used for choice points a configuration leaves out.
var DefaultChoices = map[string]string{
	ElectrolyserChoice: PEMEL,
	AdsorptionChoice:   DFMRoute,
	FanChoice:          VaneAxial,
	SorbentChoice:      MIL101PEI800,
	SteamChoice:        LowPressureSteam,
}

// Group is a free choice point: exactly one of its selection variables
// is 1 in any solution.
type Group struct {
	Point    string
	Variants []string
	Vars     []VarID
}

// branch is one instantiated variant of a choice point.
type branch struct {
	point, variant string

	// sel is the selection variable, or NoVar when the choice is fixed.
	sel VarID
}

// ident returns the short name of a variant used in unit names.
func ident(point, variant string) string {
	switch point {
	case FanChoice:
		if f, ok := fans[variant]; ok {
			return f.ident
		}
	case SorbentChoice:
		if s, ok := Sorbents[variant]; ok {
			return s.Ident
		}
	}
	return strings.ToLower(variant)
}

// unitName returns the name of the unit of branch br of a choice point
// whose fixed-choice unit is called base.
func (br branch) unitName(base string) string {
	if br.sel == NoVar {
		return base
	}
	return base + "_" + ident(br.point, br.variant)
}

// checkChoice returns a BuildError unless variant is a variant of point
// or Free.
func checkChoice(point, variant string) error {
	variants, ok := ChoicePoints[point]
	if !ok {
		return &BuildError{Reason: fmt.Sprintf("unknown choice point %q", point)}
	}
	if variant == Free {
		return nil
	}
	for _, v := range variants {
		if v == variant {
			return nil
		}
	}
	return &BuildError{Reason: fmt.Sprintf("unknown %s variant %q; valid variants are %s or %s",
		point, variant, strings.Join(variants, ", "), Free)}
}

// choose returns the branches to instantiate at a choice point. A free
// choice gets one selection variable per variant in an exactly-one group.
func (m *Model) choose(point, choice string) ([]branch, error) {
	if err := checkChoice(point, choice); err != nil {
		return nil, err
	}
	if choice != Free {
		if m.choices == nil {
			m.choices = make(map[string]string)
		}
		m.choices[point] = choice
		return []branch{{point: point, variant: choice, sel: NoVar}}, nil
	}
	g := &Group{Point: point, Variants: ChoicePoints[point]}
	brs := make([]branch, len(g.Variants))
	for i, v := range g.Variants {
		id := m.AddSelection("select." + point + "." + v)
		g.Vars = append(g.Vars, id)
		brs[i] = branch{point: point, variant: v, sel: id}
	}
	m.groups = append(m.groups, g)
	return brs, nil
}

// fanOut returns one outlet per branch carrying the stream from src. A
// single branch gets src itself. Several branches get a split of src by
// their selection variables, and each branch flow is limited by the split
// inlet flow times its selection.
func (m *Model) fanOut(name string, src *Port, brs []branch) ([]*Port, error) {
	if len(brs) == 1 {
		return []*Port{src}, nil
	}
	fr := make([]VarID, len(brs))
	for i, br := range brs {
		fr[i] = br.sel
	}
	outs, err := m.Split(name, src, fr)
	if err != nil {
		return nil, err
	}
	in := m.Unit(name).Inlet("in")
	for i, o := range outs {
		o, y := o, brs[i].sel
		m.AddInequality(name+".select."+brs[i].variant, 1, func(v *Values) float64 {
			return v.At(o.F) - v.At(in.F)*v.At(y)
		})
	}
	return outs, nil
}

// collect returns a single outlet carrying the streams of outs.
func (m *Model) collect(name string, outs []*Port) (*Port, error) {
	if len(outs) == 1 {
		return outs[0], nil
	}
	return m.Mix(name, outs...)
}

// Choices returns the variant of every fixed choice point.
func (m *Model) Choices() map[string]string {
	o := make(map[string]string, len(m.choices))
	for k, v := range m.choices {
		o[k] = v
	}
	return o
}

// chosen returns the variant of every choice point at v. A free choice
// takes the variant whose selection variable is largest.
func (m *Model) chosen(v *Values) map[string]string {
	o := m.Choices()
	for _, g := range m.groups {
		best, bestY := "", -1.0
		for i, id := range g.Vars {
			if y := v.At(id); y > bestY {
				best, bestY = g.Variants[i], y
			}
		}
		o[g.Point] = best
	}
	return o
}

// sortedKeys returns the keys of a map in order.
func sortedKeys[T any](x map[string]T) []string {
	k := make([]string, 0, len(x))
	for n := range x {
		k = append(k, n)
	}
	sort.Strings(k)
	return k
}
