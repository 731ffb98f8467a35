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

package nlp

import (
	"fmt"
	"math"
)

// assignment is a value for each integer variable, keyed by index.
type assignment map[int]float64

// axis is one independent integer decision: either a group, whose
// choices set one member to 1, or a single ungrouped integer variable.
type axis struct {
	choices []assignment
}

// enumerate returns every combination of integer values allowed by the
// bounds and groups of p, with the last axis varying fastest.
func enumerate(p *Problem, max int) ([]assignment, error) {
	grouped := make(map[int]bool)
	var axes []axis
	for g, grp := range p.Groups {
		var ax axis
		for _, i := range grp {
			if p.Variables[i].Upper < 1 {
				continue
			}
			ok := true
			for _, j := range grp {
				if j != i && p.Variables[j].Lower > 0 {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			a := make(assignment, len(grp))
			for _, j := range grp {
				a[j] = 0
			}
			a[i] = 1
			ax.choices = append(ax.choices, a)
		}
		if len(ax.choices) == 0 {
			return nil, fmt.Errorf("nlp: bounds of group %d leave no feasible choice", g)
		}
		for _, i := range grp {
			grouped[i] = true
		}
		axes = append(axes, ax)
	}
	for i, v := range p.Variables {
		if !v.Integer || grouped[i] {
			continue
		}
		lo, hi := math.Ceil(v.Lower), math.Floor(v.Upper)
		if lo > hi {
			return nil, fmt.Errorf("nlp: integer variable %s has no integer value in [%g, %g]", v.Name, v.Lower, v.Upper)
		}
		if hi-lo+1 > float64(max) {
			return nil, fmt.Errorf("nlp: integer variable %s has too many values", v.Name)
		}
		var ax axis
		for k := lo; k <= hi; k++ {
			ax.choices = append(ax.choices, assignment{i: k})
		}
		axes = append(axes, ax)
	}

	n := 1
	for _, ax := range axes {
		n *= len(ax.choices)
		if n > max {
			return nil, fmt.Errorf("nlp: more than %d integer combinations", max)
		}
	}
	o := make([]assignment, 0, n)
	pos := make([]int, len(axes))
	for {
		a := make(assignment)
		for k, ax := range axes {
			for i, v := range ax.choices[pos[k]] {
				a[i] = v
			}
		}
		o = append(o, a)
		k := len(axes) - 1
		for ; k >= 0; k-- {
			pos[k]++
			if pos[k] < len(axes[k].choices) {
				break
			}
			pos[k] = 0
		}
		if k < 0 {
			break
		}
	}
	return o, nil
}
