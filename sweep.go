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
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/co2ch4/internal/hash"
	"github.com/spatialmodel/co2ch4/nlp"
	"github.com/spatialmodel/co2ch4/property"
	"golang.org/x/sync/errgroup"
)

// GridAxis is one swept parameter and its values.
type GridAxis struct {
	Parameter string
	Values    []float64
}

// Grid is the cartesian product of its axes, with the last axis varying
// fastest.
type Grid []GridAxis

// Len returns the number of points in g.
func (g Grid) Len() int {
	if len(g) == 0 {
		return 0
	}
	n := 1
	for _, a := range g {
		n *= len(a.Values)
	}
	return n
}

// Point returns the parameter values of point i.
func (g Grid) Point(i int) []ParameterValue {
	o := make([]ParameterValue, len(g))
	for k := len(g) - 1; k >= 0; k-- {
		n := len(g[k].Values)
		o[k] = ParameterValue{Name: g[k].Parameter, Value: g[k].Values[i%n]}
		i /= n
	}
	return o
}

// ParameterValue is the value of one parameter in a scenario.
type ParameterValue struct {
	Name  string
	Value float64
}

// Scenario is the result of one grid point.
type Scenario struct {
	Index int

	// ID is a hash of the parameter values and Config the ID of the
	// superstructure configuration.
	ID, Config string

	Parameters []ParameterValue

	// Status is the status of the last solve, or nlp.SolverError for a
	// scenario that failed without one. Outcome tells these apart.
	Status nlp.Status

	// Solution is the best point found. It may be set for a failed
	// scenario whose solve did not succeed.
	Solution *Solution

	// Err is the failure of a failed scenario.
	Err    error
	Failed bool

	// Attempts is the number of solves made.
	Attempts int
}

// Outcome names how the scenario ended. It is the solver status, except
// for scenarios that failed before or outside a solve, which are named by
// the kind of error: "domain-error", "build-error",
// "configuration-error" or "cancelled".
func (sc Scenario) Outcome() string {
	if !sc.Failed || sc.Err == nil {
		return sc.Status.String()
	}
	var (
		sf *SolveFailure
		de *DomainError
		be *BuildError
		ce *ConfigurationError
	)
	switch {
	case errors.As(sc.Err, &sf):
		return sf.Status.String()
	case errors.As(sc.Err, &de):
		return "domain-error"
	case errors.As(sc.Err, &be):
		return "build-error"
	case errors.As(sc.Err, &ce):
		return "configuration-error"
	case errors.Is(sc.Err, context.Canceled), errors.Is(sc.Err, context.DeadlineExceeded):
		return "cancelled"
	}
	return sc.Status.String()
}

// Sweep solves a superstructure over a grid of parameter values.
type Sweep struct {
	Config    Configuration
	Objective Objective

	// Solver is shared by the workers and must be safe for concurrent
	// use. Nil uses an nlp.AugmentedLagrangian.
	Solver nlp.Solver

	Settings SolveSettings

	// WarmStart starts each point from the decisions of the previous
	// successful point solved by the same worker.
	WarmStart bool

	// Workers defaults to runtime.GOMAXPROCS(0).
	Workers int

	// Retries is the number of extra solves of a point after a
	// SolveFailure, each from a different perturbed start.
	Retries int

	Log     logrus.FieldLogger
	Library *property.Library
}

func (s *Sweep) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// validate checks the objective and grid against a probe model.
func (s *Sweep) validate(grid Grid) error {
	if s.Objective != ObjectiveTAC && s.Objective != ObjectiveProfit {
		return &ConfigurationError{Field: "objective", Reason: fmt.Sprintf("unsupported objective %v", s.Objective)}
	}
	if len(grid) == 0 {
		return &ConfigurationError{Field: "grid", Reason: "no parameters to sweep"}
	}
	m, err := Assemble(s.Config, s.Library)
	if err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, a := range grid {
		if _, err := m.Parameter(a.Parameter); err != nil {
			return &ConfigurationError{Field: "grid." + a.Parameter, Reason: "parameter is not declared"}
		}
		if seen[a.Parameter] {
			return &ConfigurationError{Field: "grid." + a.Parameter, Reason: "parameter swept twice"}
		}
		seen[a.Parameter] = true
		if len(a.Values) == 0 {
			return &ConfigurationError{Field: "grid." + a.Parameter, Reason: "empty value list"}
		}
	}
	return nil
}

// Run solves every point of grid and returns the scenarios in grid
// order. Point failures are recorded in their scenarios. If ctx is
// cancelled, the points not yet solved are recorded as failed and the
// context error is returned with the scenarios.
func (s *Sweep) Run(ctx context.Context, grid Grid) ([]Scenario, error) {
	if err := s.validate(grid); err != nil {
		return nil, err
	}
	n := grid.Len()
	results := make([]Scenario, n)
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	size := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += size {
		start, end := start, start+size
		if end > n {
			end = n
		}
		g.Go(func() error {
			return s.fold(ctx, grid, results[start:end], start)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, ctx.Err()
}

// fold solves the contiguous points starting at index first on a model
// owned by the calling worker.
func (s *Sweep) fold(ctx context.Context, grid Grid, out []Scenario, first int) error {
	m, err := Assemble(s.Config, s.Library)
	if err != nil {
		return err
	}
	c, err := Compile(m, s.Objective)
	if err != nil {
		return err
	}
	c.Solver = s.Solver
	c.Log = s.log()
	var snapshot map[string]float64
	config := s.Config.ID()
	for k := range out {
		sc := &out[k]
		sc.Index = first + k
		sc.Config = config
		sc.Parameters = grid.Point(sc.Index)
		names := make([]string, len(sc.Parameters))
		values := make([]float64, len(sc.Parameters))
		for i, p := range sc.Parameters {
			names[i], values[i] = p.Name, p.Value
		}
		sc.ID = hash.Parameters(names, values)
		if err := ctx.Err(); err != nil {
			s.fail(sc, err)
			continue
		}
		if err := s.point(ctx, c, sc, snapshot); err != nil {
			s.fail(sc, err)
			continue
		}
		if s.WarmStart {
			snapshot = sc.Solution.Decisions
		}
	}
	return nil
}

func (s *Sweep) fail(sc *Scenario, err error) {
	sc.Failed = true
	sc.Err = err
	var sf *SolveFailure
	if errors.As(err, &sf) {
		sc.Status = sf.Status
	} else {
		sc.Status = nlp.SolverError
	}
	s.log().WithFields(logrus.Fields{
		"scenario": sc.Index,
		"attempt":  sc.Attempts,
		"status":   sc.Outcome(),
	}).WithError(err).Error("co2ch4: scenario failed")
}

// perturbFractions are the positions within their bounds from which
// decisions restart on successive retries.
var perturbFractions = []float64{0.5, 0.25, 0.75}

// perturbed returns the deterministic start of retry attempt k >= 1.
func perturbed(m *Model, k int) map[string]float64 {
	o := make(map[string]float64)
	i := 0
	for _, v := range m.vars {
		if v.Kind != Decision {
			continue
		}
		f := perturbFractions[(k-1+i)%len(perturbFractions)]
		o[v.Name] = v.Lower + f*(v.Upper-v.Lower)
		i++
	}
	return o
}

// point solves one scenario, retrying solve failures.
func (s *Sweep) point(ctx context.Context, c *Compiled, sc *Scenario, snapshot map[string]float64) error {
	for _, p := range sc.Parameters {
		if err := c.Model.SetParameter(p.Name, p.Value); err != nil {
			return err
		}
	}
	op := func() error {
		settings := s.Settings
		start := make(map[string]float64)
		for n, v := range s.Settings.WarmStart {
			start[n] = v
		}
		for n, v := range snapshot {
			start[n] = v
		}
		if sc.Attempts > 0 {
			start = perturbed(c.Model, sc.Attempts)
		}
		settings.WarmStart = start
		sc.Attempts++
		sol, err := c.Solve(ctx, settings)
		sc.Solution = sol
		if sol != nil {
			sc.Status = sol.Status
		}
		var sf *SolveFailure
		if errors.As(err, &sf) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	b := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(max(s.Retries, 0))), ctx)
	err := backoff.RetryNotify(op, b, func(err error, _ time.Duration) {
		s.log().WithFields(logrus.Fields{
			"scenario": sc.Index,
			"attempt":  sc.Attempts,
		}).WithError(err).Warn("co2ch4: retrying scenario")
	})
	if err != nil {
		return err
	}
	s.log().WithFields(logrus.Fields{
		"scenario":  sc.Index,
		"attempt":   sc.Attempts,
		"status":    sc.Status,
		"objective": sc.Solution.ObjectiveValue,
	}).Info("co2ch4: scenario solved")
	return nil
}
