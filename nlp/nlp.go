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

// Package nlp defines the interface between the process model and a
// numerical optimiser, and provides a solver for small bounded mixed-integer
// nonlinear programs.
package nlp

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Status is the outcome of a solve.
type Status int

// Solve outcomes.
const (
	Optimal Status = iota
	LocallyOptimal
	Infeasible
	Unbounded
	SolverError
	IterationLimit
)

var statusNames = []string{
	Optimal:        "optimal",
	LocallyOptimal: "locally-optimal",
	Infeasible:     "infeasible",
	Unbounded:      "unbounded",
	SolverError:    "solver-error",
	IterationLimit: "iteration-limit",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus returns the status with the given name.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return -1, fmt.Errorf("nlp: unknown status %q", name)
}

// Success reports whether s carries a usable solution.
func (s Status) Success() bool { return s == Optimal || s == LocallyOptimal }

// Variable is one optimisation variable.
type Variable struct {
	Name         string
	Lower, Upper float64
	Initial      float64

	// Integer variables take whole values within their bounds.
	Integer bool
}

// Problem is a minimisation problem
//
//	min f(x)  s.t.  eq(x) = 0, ineq(x) <= 0, Lower <= x <= Upper.
type Problem struct {
	Variables []Variable

	// NumEq and NumIneq are the lengths of the eq and ineq slices
	// passed to Func.
	NumEq, NumIneq int

	// Func returns the objective at x and fills eq and ineq with the
	// constraint residuals. It must not retain x, eq or ineq.
	Func func(x, eq, ineq []float64) float64

	// Groups lists sets of integer variables of which exactly one
	// takes the value 1.
	Groups [][]int
}

// Validate checks the problem for structural errors.
func (p *Problem) Validate() error {
	if p.Func == nil {
		return fmt.Errorf("nlp: problem has no function")
	}
	if p.NumEq < 0 || p.NumIneq < 0 {
		return fmt.Errorf("nlp: negative constraint count")
	}
	for i, v := range p.Variables {
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) || v.Lower > v.Upper {
			return fmt.Errorf("nlp: variable %d (%s) has invalid bounds [%g, %g]", i, v.Name, v.Lower, v.Upper)
		}
		if math.IsNaN(v.Initial) {
			return fmt.Errorf("nlp: variable %d (%s) has a NaN initial value", i, v.Name)
		}
		if v.Integer && (math.IsInf(v.Lower, 0) || math.IsInf(v.Upper, 0)) {
			return fmt.Errorf("nlp: integer variable %d (%s) must have finite bounds", i, v.Name)
		}
	}
	seen := make(map[int]bool)
	for g, grp := range p.Groups {
		if len(grp) == 0 {
			return fmt.Errorf("nlp: group %d is empty", g)
		}
		for _, i := range grp {
			if i < 0 || i >= len(p.Variables) {
				return fmt.Errorf("nlp: group %d refers to variable %d of %d", g, i, len(p.Variables))
			}
			if !p.Variables[i].Integer {
				return fmt.Errorf("nlp: group %d includes continuous variable %s", g, p.Variables[i].Name)
			}
			if seen[i] {
				return fmt.Errorf("nlp: variable %s is in more than one group", p.Variables[i].Name)
			}
			seen[i] = true
		}
	}
	return nil
}

// Settings control a solve.
type Settings struct {
	// MaxIterations limits the iterations of each inner solve.
	// Zero means the solver default.
	MaxIterations int

	// TimeLimit limits the wall time of the whole solve.
	// Zero means no limit.
	TimeLimit time.Duration

	// Tolerance is the feasibility tolerance for the scaled residuals.
	// Zero means the solver default.
	Tolerance float64

	// WarmStart, if not nil, replaces the initial values of the variables.
	WarmStart []float64
}

// Result is the outcome of a solve.
type Result struct {
	Status Status

	// X holds the best point found, in the order of Problem.Variables.
	X []float64

	Objective    float64
	MaxViolation float64

	Iterations  int
	Evaluations int
	Runtime     time.Duration

	Message string
}

// Solver solves nonlinear programs.
type Solver interface {
	Solve(ctx context.Context, p *Problem, s Settings) (*Result, error)
}

// violation returns the largest constraint violation.
func violation(eq, ineq []float64) float64 {
	var v float64
	for _, h := range eq {
		if a := math.Abs(h); a > v || math.IsNaN(h) {
			v = a
		}
	}
	for _, g := range ineq {
		if g > v || math.IsNaN(g) {
			v = g
		}
	}
	return v
}
