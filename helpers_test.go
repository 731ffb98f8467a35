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
	"context"
	"math"
	"sync"
	"testing"

	"github.com/spatialmodel/co2ch4/nlp"
)

// fakeSolver returns the initial point of every problem. The first
// failures calls report status fail instead of optimal.
type fakeSolver struct {
	mu       sync.Mutex
	calls    int
	failures int
	fail     nlp.Status
	starts   [][]float64
}

func (s *fakeSolver) Solve(ctx context.Context, p *nlp.Problem, set nlp.Settings) (*nlp.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	x := make([]float64, len(p.Variables))
	for i, v := range p.Variables {
		x[i] = v.Initial
		if i < len(set.WarmStart) && !math.IsNaN(set.WarmStart[i]) {
			x[i] = set.WarmStart[i]
		}
	}
	// Pick the first variant of every free choice.
	for _, g := range p.Groups {
		for k, i := range g {
			x[i] = 0
			if k == 0 {
				x[i] = 1
			}
		}
	}
	eq, ineq := make([]float64, p.NumEq), make([]float64, p.NumIneq)
	f := p.Func(x, eq, ineq)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.starts = append(s.starts, append([]float64(nil), set.WarmStart...))
	status := nlp.Optimal
	if s.calls <= s.failures {
		status = s.fail
	}
	return &nlp.Result{Status: status, X: x, Objective: f, Iterations: 1, Evaluations: 1}, nil
}

// approx reports whether a and b agree to within a relative tolerance.
func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// assemble builds cfg or fails the test.
func assemble(t *testing.T, cfg Configuration) *Model {
	t.Helper()
	m, err := Assemble(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// evaluated returns the values of m at its initial point.
func evaluated(t *testing.T, m *Model) *Values {
	t.Helper()
	v := m.newValues()
	if err := m.evaluate(v); err != nil {
		t.Fatal(err)
	}
	return v
}

// fixedConfigs are superstructures with every choice fixed.
var fixedConfigs = map[string]Configuration{
	"DFM-PEMEL": {Choices: map[string]string{ElectrolyserChoice: PEMEL, AdsorptionChoice: DFMRoute}},
	"DFM-SOEL-ancillaries": {
		Choices:     map[string]string{ElectrolyserChoice: SOEL, AdsorptionChoice: DFMRoute, SteamChoice: MediumPressureSteam},
		Ancillaries: Ancillaries{SteamGenerator: true, AirCooler: true, Separator: true},
	},
	"TVSA-AEL": {
		Choices: map[string]string{
			ElectrolyserChoice: AEL, AdsorptionChoice: TVSARoute,
			SorbentChoice: APDESNFC, FanChoice: CentrifugalBackward,
		},
	},
	"TVSA-recycle": {
		Choices: map[string]string{
			ElectrolyserChoice: PEMEL, AdsorptionChoice: TVSARoute,
			SorbentChoice: LewatitVPOC106, SteamChoice: HighPressureSteam,
		},
		Ancillaries: Ancillaries{SteamGenerator: true, AirCooler: true, Separator: true, WaterRecycle: true},
	},
}

// freeConfig leaves every choice to the optimiser.
var freeConfig = Configuration{
	Choices: map[string]string{
		ElectrolyserChoice: Free, AdsorptionChoice: Free, FanChoice: Free,
		SorbentChoice: Free, SteamChoice: Free,
	},
	Ancillaries: Ancillaries{SteamGenerator: true, AirCooler: true, Separator: true, WaterRecycle: true},
}
