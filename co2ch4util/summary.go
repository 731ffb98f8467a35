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

package co2ch4util

import (
	"fmt"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/spatialmodel/co2ch4"
)

// Summary holds statistics of one output over the solved scenarios of a
// sweep.
type Summary struct {
	Output string

	// N is the number of scenarios that were solved and Failed the
	// number that were not.
	N, Failed int

	Min, Max, Mean, StdDev float64

	// Slope and RSquared hold the least-squares regression of the
	// output on each swept parameter that takes more than one value.
	Slope, RSquared map[string]float64
}

// Summarize computes statistics of the named field of the scenario
// records, such as "TAC".
func Summarize(scenarios []co2ch4.Scenario, output string) (*Summary, error) {
	s := &Summary{
		Output:   output,
		Slope:    make(map[string]float64),
		RSquared: make(map[string]float64),
	}
	var y []float64
	x := make(map[string][]float64)
	var names []string
	for _, sc := range scenarios {
		if sc.Failed || sc.Solution == nil {
			s.Failed++
			continue
		}
		v, ok := sc.Solution.Record()[output]
		if !ok {
			return nil, fmt.Errorf("co2ch4util: summarizing: scenario %d has no output %s", sc.Index, output)
		}
		y = append(y, v)
		for _, p := range sc.Parameters {
			if _, ok := x[p.Name]; !ok {
				names = append(names, p.Name)
			}
			x[p.Name] = append(x[p.Name], p.Value)
		}
	}
	s.N = len(y)
	if s.N == 0 {
		return s, nil
	}
	var d stats.Stats
	for _, v := range y {
		d.Update(v)
	}
	s.Min, s.Max, s.Mean = d.Min(), d.Max(), d.Mean()
	if s.N > 1 {
		s.StdDev = d.SampleStandardDeviation()
	}
	for _, n := range names {
		xs := x[n]
		if len(xs) != len(y) || !varies(xs) {
			continue
		}
		slope, _, r2, _, _, _ := stats.LinearRegression(xs, y)
		s.Slope[n] = slope
		s.RSquared[n] = r2
	}
	return s, nil
}

func varies(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return true
		}
	}
	return false
}
