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
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/optimize"
)

// Solver defaults.
const (
	DefaultMaxIterations   = 20000
	DefaultTolerance       = 1e-6
	DefaultOuterIterations = 12
	DefaultRestarts        = 3
	DefaultMaxCombinations = 4096
)

// bad is returned by the merit function in place of non-finite values.
const bad = 1e100

// AugmentedLagrangian solves problems with a Powell-Hestenes-Rockafellar
// augmented Lagrangian outer loop around a Nelder-Mead inner solve in a
// bounded transform of the continuous variables. Integer variables are
// handled by enumerating every combination allowed by their bounds and
// groups and keeping the best feasible one.
type AugmentedLagrangian struct {
	// OuterIterations limits the multiplier updates.
	OuterIterations int

	// Restarts is the number of times the inner solve is restarted from
	// its best point while it keeps improving.
	Restarts int

	// InitialPenalty is the starting penalty parameter.
	InitialPenalty float64

	// MaxCombinations limits the integer enumeration.
	MaxCombinations int

	Log logrus.FieldLogger
}

func (a *AugmentedLagrangian) log() logrus.FieldLogger {
	if a.Log == nil {
		return logrus.StandardLogger()
	}
	return a.Log
}

func orDefault(v, d int) int {
	if v <= 0 {
		return d
	}
	return v
}

// Solve implements Solver.
func (a *AugmentedLagrangian) Solve(ctx context.Context, p *Problem, s Settings) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if s.WarmStart != nil && len(s.WarmStart) != len(p.Variables) {
		return nil, fmt.Errorf("nlp: warm start has %d values but problem has %d variables", len(s.WarmStart), len(p.Variables))
	}
	start := time.Now()
	s.MaxIterations = orDefault(s.MaxIterations, DefaultMaxIterations)
	if s.Tolerance <= 0 {
		s.Tolerance = DefaultTolerance
	}
	var deadline time.Time
	if s.TimeLimit > 0 {
		deadline = start.Add(s.TimeLimit)
	}

	x0 := make([]float64, len(p.Variables))
	for i, v := range p.Variables {
		x0[i] = v.Initial
		if s.WarmStart != nil && !v.Integer && !math.IsNaN(s.WarmStart[i]) {
			x0[i] = s.WarmStart[i]
		}
		x0[i] = math.Max(v.Lower, math.Min(v.Upper, x0[i]))
	}

	combos, err := enumerate(p, orDefault(a.MaxCombinations, DefaultMaxCombinations))
	if err != nil {
		return nil, err
	}
	var best *Result
	var iters, evals int
	for n, c := range combos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x := append([]float64(nil), x0...)
		for i, v := range c {
			x[i] = v
		}
		r, err := a.solveContinuous(ctx, p, s, x, deadline)
		if err != nil {
			return nil, err
		}
		iters += r.Iterations
		evals += r.Evaluations
		a.log().WithFields(logrus.Fields{
			"combination": n,
			"status":      r.Status,
			"objective":   r.Objective,
			"violation":   r.MaxViolation,
		}).Debug("nlp: solved combination")
		if better(r, best) {
			best = r
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			if n < len(combos)-1 {
				best.Status = IterationLimit
				best.Message = "time limit reached during integer enumeration"
			}
			break
		}
	}
	best.Iterations = iters
	best.Evaluations = evals
	best.Runtime = time.Since(start)
	return best, nil
}

func rank(s Status) int {
	switch s {
	case Optimal, LocallyOptimal, Unbounded:
		return 0
	case IterationLimit:
		return 1
	case Infeasible:
		return 2
	default:
		return 3
	}
}

// better reports whether r should replace best.
func better(r, best *Result) bool {
	if best == nil {
		return true
	}
	ra, rb := rank(r.Status), rank(best.Status)
	if ra != rb {
		return ra < rb
	}
	if ra == 2 {
		return r.MaxViolation < best.MaxViolation
	}
	return r.Objective < best.Objective
}

// solveContinuous solves p with the integer variables held at their
// values in x.
func (a *AugmentedLagrangian) solveContinuous(ctx context.Context, p *Problem, s Settings, x []float64, deadline time.Time) (*Result, error) {
	eq := make([]float64, p.NumEq)
	ineq := make([]float64, p.NumIneq)
	evaluate := func(x []float64) (float64, float64) {
		f := p.Func(x, eq, ineq)
		return f, violation(eq, ineq)
	}
	tr := newTransform(p.Variables, x)

	f0, v0 := evaluate(x)
	if tr.dim() == 0 {
		r := &Result{X: x, Objective: f0, MaxViolation: v0, Evaluations: 1}
		r.Status, r.Message = classify(f0, v0, s.Tolerance, optimize.Success)
		return r, nil
	}
	fs := 1.0
	if !math.IsNaN(f0) && !math.IsInf(f0, 0) {
		fs = math.Max(math.Abs(f0), 1)
	}

	lambda := make([]float64, p.NumEq)
	nu := make([]float64, p.NumIneq)
	mu := a.InitialPenalty
	if mu <= 0 {
		mu = 10
	}
	xw := append([]float64(nil), x...)
	merit := func(z []float64) float64 {
		tr.toX(z, xw)
		f := p.Func(xw, eq, ineq)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return bad
		}
		m := f / fs
		for i, h := range eq {
			m += lambda[i]*h + 0.5*mu*h*h
		}
		for j, g := range ineq {
			t := math.Max(0, nu[j]+mu*g)
			m += (t*t - nu[j]*nu[j]) / (2 * mu)
		}
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return bad
		}
		return m
	}

	z := tr.toZ(x)
	r := &Result{X: x}
	var status optimize.Status
	prev := math.Inf(1)
	outer := orDefault(a.OuterIterations, DefaultOuterIterations)
	for k := 0; k < outer; k++ {
		var iters, evals int
		var err error
		z, status, iters, evals, err = a.minimize(ctx, merit, z, s.MaxIterations, deadline)
		r.Iterations += iters
		r.Evaluations += evals
		if err != nil {
			return nil, err
		}
		tr.toX(z, r.X)
		r.Objective, r.MaxViolation = evaluate(r.X)
		if r.MaxViolation <= s.Tolerance || isLimit(status) || math.IsNaN(r.MaxViolation) {
			break
		}
		for i, h := range eq {
			lambda[i] += mu * h
		}
		for j, g := range ineq {
			nu[j] = math.Max(0, nu[j]+mu*g)
		}
		if r.MaxViolation > 0.25*prev {
			mu *= 10
		}
		prev = r.MaxViolation
	}
	r.Status, r.Message = classify(r.Objective/fs, r.MaxViolation, s.Tolerance, status)
	return r, nil
}

func isLimit(s optimize.Status) bool {
	switch s {
	case optimize.IterationLimit, optimize.RuntimeLimit, optimize.FunctionEvaluationLimit:
		return true
	}
	return false
}

func isConverged(s optimize.Status) bool {
	switch s {
	case optimize.Success, optimize.FunctionConvergence, optimize.MethodConverge,
		optimize.FunctionThreshold, optimize.StepConvergence:
		return true
	}
	return false
}

// classify maps a scaled objective, violation and inner status to a
// solve status.
func classify(f, viol, tol float64, s optimize.Status) (Status, string) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 1) || math.IsNaN(viol):
		return SolverError, "objective or constraints not finite"
	case s == optimize.FunctionNegativeInfinity || math.IsInf(f, -1) || f < -1e15:
		return Unbounded, "objective decreasing without bound"
	case isLimit(s):
		return IterationLimit, fmt.Sprintf("inner solve stopped: %v", s)
	case viol > tol:
		return Infeasible, fmt.Sprintf("constraint violation %g exceeds %g", viol, tol)
	case isConverged(s):
		return Optimal, ""
	default:
		return LocallyOptimal, fmt.Sprintf("inner solve stopped: %v", s)
	}
}

// minimize runs Nelder-Mead from z0, restarting from the best point
// while the restarts keep improving.
func (a *AugmentedLagrangian) minimize(ctx context.Context, f func([]float64) float64, z0 []float64, maxIter int, deadline time.Time) ([]float64, optimize.Status, int, int, error) {
	z := append([]float64(nil), z0...)
	fz := f(z)
	var status optimize.Status
	var iters, evals int
	problem := optimize.Problem{
		Func: f,
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}
	restarts := a.Restarts
	if restarts == 0 {
		restarts = DefaultRestarts
	} else if restarts < 0 {
		restarts = 0
	}
	for r := 0; r <= restarts; r++ {
		settings := &optimize.Settings{
			MajorIterations: maxIter,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-12,
				Relative:   1e-12,
				Iterations: 50,
			},
		}
		if !deadline.IsZero() {
			rem := time.Until(deadline)
			if rem <= 0 {
				return z, optimize.RuntimeLimit, iters, evals, nil
			}
			settings.Runtime = rem
		}
		res, err := optimize.Minimize(problem, z, settings, &optimize.NelderMead{SimplexSize: 0.1})
		if cerr := ctx.Err(); cerr != nil {
			return nil, status, iters, evals, cerr
		}
		if res == nil {
			return z, optimize.Failure, iters, evals, nil
		}
		if err != nil {
			a.log().WithError(err).Debug("nlp: inner solve")
		}
		iters += res.MajorIterations
		evals += res.FuncEvaluations
		status = res.Status
		improved := res.F < fz-1e-10*math.Max(1, math.Abs(fz))
		if res.F < fz {
			z = append(z[:0], res.X...)
			fz = res.F
		}
		if isLimit(status) || (r > 0 && !improved) || fz >= bad {
			break
		}
	}
	if fz >= bad {
		status = optimize.Failure
	}
	return z, status, iters, evals, nil
}

const (
	twoSided = iota
	lowerOnly
	upperOnly
	unbounded
)

// transform maps the free continuous variables to an unconstrained space.
type transform struct {
	idx    []int
	kind   []int
	lo, hi []float64
	scale  []float64
}

func newTransform(vars []Variable, x []float64) *transform {
	t := new(transform)
	for i, v := range vars {
		if v.Integer || v.Lower == v.Upper {
			continue
		}
		t.idx = append(t.idx, i)
		t.lo = append(t.lo, v.Lower)
		t.hi = append(t.hi, v.Upper)
		t.scale = append(t.scale, math.Max(math.Abs(x[i]), 1))
		switch lo, hi := math.IsInf(v.Lower, -1), math.IsInf(v.Upper, 1); {
		case !lo && !hi:
			t.kind = append(t.kind, twoSided)
		case !lo:
			t.kind = append(t.kind, lowerOnly)
		case !hi:
			t.kind = append(t.kind, upperOnly)
		default:
			t.kind = append(t.kind, unbounded)
		}
	}
	return t
}

func (t *transform) dim() int { return len(t.idx) }

func (t *transform) toZ(x []float64) []float64 {
	z := make([]float64, len(t.idx))
	for k, i := range t.idx {
		switch t.kind[k] {
		case twoSided:
			u := 2*(x[i]-t.lo[k])/(t.hi[k]-t.lo[k]) - 1
			z[k] = math.Asin(math.Max(-1, math.Min(1, u)))
		case lowerOnly:
			d := (x[i]-t.lo[k])/t.scale[k] + 1
			z[k] = math.Sqrt(d*d - 1)
		case upperOnly:
			d := (t.hi[k]-x[i])/t.scale[k] + 1
			z[k] = math.Sqrt(d*d - 1)
		default:
			z[k] = x[i] / t.scale[k]
		}
	}
	return z
}

func (t *transform) toX(z, x []float64) {
	for k, i := range t.idx {
		switch t.kind[k] {
		case twoSided:
			x[i] = t.lo[k] + (t.hi[k]-t.lo[k])*(1+math.Sin(z[k]))/2
		case lowerOnly:
			x[i] = t.lo[k] + t.scale[k]*(math.Sqrt(z[k]*z[k]+1)-1)
		case upperOnly:
			x[i] = t.hi[k] - t.scale[k]*(math.Sqrt(z[k]*z[k]+1)-1)
		default:
			x[i] = t.scale[k] * z[k]
		}
	}
}
