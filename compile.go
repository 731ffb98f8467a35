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
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/co2ch4/nlp"
)

// Objective is the quantity a solve optimises.
type Objective int

// Objectives.
const (
	// ObjectiveTAC minimises the total annualised cost.
	ObjectiveTAC Objective = iota + 1
	// ObjectiveProfit maximises revenue less the total annualised cost.
	ObjectiveProfit
)

func (o Objective) String() string {
	switch o {
	case ObjectiveTAC:
		return "tac"
	case ObjectiveProfit:
		return "profit"
	}
	return fmt.Sprintf("Objective(%d)", int(o))
}

// ParseObjective returns the objective with the given name.
func ParseObjective(s string) (Objective, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tac":
		return ObjectiveTAC, nil
	case "profit":
		return ObjectiveProfit, nil
	}
	return 0, &ConfigurationError{Field: "objective", Reason: fmt.Sprintf("unsupported objective %q", s)}
}

// Compiled is a model reduced to a nonlinear program.
type Compiled struct {
	Model     *Model
	Objective Objective

	// Solver defaults to an nlp.AugmentedLagrangian.
	Solver nlp.Solver

	Log logrus.FieldLogger

	// free lists the decision and selection variables in problem order.
	free   []VarID
	eq     []*Constraint
	ineq   []*Constraint
	target VarID
	sign   float64
}

// Compile reduces m to the free decision and selection variables and
// builds the scaled objective obj.
func Compile(m *Model, obj Objective) (*Compiled, error) {
	c := &Compiled{Model: m, Objective: obj}
	switch obj {
	case ObjectiveTAC:
		c.sign = 1
	case ObjectiveProfit:
		c.sign = -1
	default:
		return nil, &ConfigurationError{Field: "objective", Reason: fmt.Sprintf("unsupported objective %v", obj)}
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	if obj == ObjectiveTAC {
		c.target = m.econ.tac
	} else {
		c.target = m.econ.profit
	}
	for i, v := range m.vars {
		if v.Kind == Decision || v.Kind == Selection {
			c.free = append(c.free, VarID(i))
		}
	}
	for _, k := range m.constraints {
		if k.Kind == Equality {
			c.eq = append(c.eq, k)
		} else {
			c.ineq = append(c.ineq, k)
		}
	}
	return c, nil
}

// objectiveScale returns max(|f(x0)|, 1) at the current parameter values
// and initial point.
func (c *Compiled) objectiveScale() float64 {
	v := c.Model.newValues()
	if err := c.Model.evaluate(v); err != nil {
		return 1
	}
	f := v.At(c.target)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	return math.Max(math.Abs(f), 1)
}

func (c *Compiled) log() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

// scaled returns the value of a free variable in [0, 1].
func (c *Compiled) scaled(id VarID, x float64) float64 {
	v := c.Model.vars[id]
	if v.Upper <= v.Lower {
		return 0
	}
	return (x - v.Lower) / (v.Upper - v.Lower)
}

// unscaled is the inverse of scaled.
func (c *Compiled) unscaled(id VarID, z float64) float64 {
	v := c.Model.vars[id]
	return v.Lower + z*(v.Upper-v.Lower)
}

// load sets the free variables of vals from the problem vector x.
func (c *Compiled) load(vals *Values, x []float64) {
	for i, id := range c.free {
		if c.Model.vars[id].Kind == Selection {
			vals.x[id] = x[i]
		} else {
			vals.x[id] = c.unscaled(id, x[i])
		}
	}
}

// Problem returns the scaled nonlinear program at the current parameter
// values. Its function is not safe for concurrent use.
func (c *Compiled) Problem() *nlp.Problem {
	m := c.Model
	fscale := c.objectiveScale()
	p := &nlp.Problem{NumEq: len(c.eq), NumIneq: len(c.ineq)}
	pos := make(map[VarID]int, len(c.free))
	for i, id := range c.free {
		v := m.vars[id]
		pos[id] = i
		if v.Kind == Selection {
			p.Variables = append(p.Variables, nlp.Variable{
				Name: v.Name, Lower: v.Lower, Upper: v.Upper, Initial: v.Value, Integer: true,
			})
			continue
		}
		hi := 1.0
		if v.Upper <= v.Lower {
			hi = 0
		}
		p.Variables = append(p.Variables, nlp.Variable{
			Name: v.Name, Lower: 0, Upper: hi,
			Initial: math.Max(0, math.Min(hi, c.scaled(id, v.Value))),
		})
	}
	for _, g := range m.groups {
		grp := make([]int, len(g.Vars))
		for i, id := range g.Vars {
			grp[i] = pos[id]
		}
		p.Groups = append(p.Groups, grp)
	}
	vals := m.newValues()
	p.Func = func(x, eq, ineq []float64) float64 {
		c.load(vals, x)
		if err := m.evaluate(vals); err != nil {
			for i := range eq {
				eq[i] = math.NaN()
			}
			for i := range ineq {
				ineq[i] = math.NaN()
			}
			return math.NaN()
		}
		for i, k := range c.eq {
			eq[i] = k.F(vals) / k.Scale
		}
		for i, k := range c.ineq {
			ineq[i] = k.F(vals) / k.Scale
		}
		return c.sign * vals.At(c.target) / fscale
	}
	return p
}

// SolveSettings control a solve.
type SolveSettings struct {
	// MaxIterations limits the iterations of each inner solve.
	MaxIterations int

	// TimeLimit limits the wall time of the solve. Zero means no limit.
	TimeLimit time.Duration

	// Tolerance is the feasibility tolerance of the scaled residuals.
	Tolerance float64

	// WarmStart holds initial values of decision variables by name.
	// Values of other variables are ignored.
	WarmStart map[string]float64
}

// ConstraintActivity is the state of a constraint at a solution.
type ConstraintActivity struct {
	Name string
	Kind ConstraintKind

	// Value is the residual and Scaled the residual divided by its
	// scale.
	Value, Scaled float64

	// Active is true for equalities and for inequalities holding with
	// equality within the tolerance.
	Active bool
}

// Solution is the result of a solve.
type Solution struct {
	Status nlp.Status

	Objective Objective

	// ObjectiveValue is the unscaled objective [USD/yr].
	ObjectiveValue float64

	// Values holds every model variable by name and Decisions the
	// decision and selection variables among them.
	Values    map[string]float64
	Decisions map[string]float64

	Costs       CostRecord
	Constraints []ConstraintActivity

	// Choices holds the variant of every choice point.
	Choices map[string]string

	Streams  []Stream
	Warnings []string

	Iterations  int
	Evaluations int
	Runtime     time.Duration
	Message     string
}

// Solve solves the compiled model. If the solver does not find a usable
// solution, the best point found is returned with a *SolveFailure.
func (c *Compiled) Solve(ctx context.Context, s SolveSettings) (*Solution, error) {
	m := c.Model
	p := c.Problem()
	ns := nlp.Settings{MaxIterations: s.MaxIterations, TimeLimit: s.TimeLimit, Tolerance: s.Tolerance}
	if len(s.WarmStart) > 0 {
		ns.WarmStart = make([]float64, len(c.free))
		for i, id := range c.free {
			ns.WarmStart[i] = math.NaN()
			if x, ok := s.WarmStart[m.vars[id].Name]; ok && m.vars[id].Kind == Decision && !math.IsNaN(x) {
				ns.WarmStart[i] = c.scaled(id, x)
			}
		}
		for _, name := range sortedKeys(s.WarmStart) {
			if _, ok := m.index[name]; !ok {
				return nil, &ConfigurationError{Field: "WarmStart", Reason: "no such variable " + name}
			}
		}
	}
	solver := c.Solver
	if solver == nil {
		solver = &nlp.AugmentedLagrangian{Log: c.log()}
	}
	c.log().WithFields(logrus.Fields{
		"variables":    len(p.Variables),
		"equalities":   p.NumEq,
		"inequalities": p.NumIneq,
		"groups":       len(p.Groups),
		"objective":    c.Objective,
	}).Debug("co2ch4: solving")
	res, err := solver.Solve(ctx, p, ns)
	if err != nil {
		return nil, fmt.Errorf("co2ch4: solving: %w", err)
	}
	tol := s.Tolerance
	if tol <= 0 {
		tol = nlp.DefaultTolerance
	}
	sol, err := c.solution(res, tol)
	if err != nil {
		return nil, err
	}
	for _, w := range sol.Warnings {
		c.log().WithField("status", sol.Status).Warn(w)
	}
	if !res.Status.Success() {
		return sol, &SolveFailure{Status: res.Status, Message: res.Message}
	}
	return sol, nil
}

// solution evaluates the model at the solver result.
func (c *Compiled) solution(res *nlp.Result, tol float64) (*Solution, error) {
	m := c.Model
	vals := m.newValues()
	c.load(vals, res.X)
	if err := m.evaluate(vals); err != nil {
		return nil, err
	}
	sol := &Solution{
		Status:         res.Status,
		Objective:      c.Objective,
		ObjectiveValue: vals.At(c.target),
		Values:         make(map[string]float64, len(m.vars)),
		Decisions:      make(map[string]float64, len(c.free)),
		Choices:        m.chosen(vals),
		Streams:        m.streams(vals),
		Iterations:     res.Iterations,
		Evaluations:    res.Evaluations,
		Runtime:        res.Runtime,
		Message:        res.Message,
	}
	for i, v := range m.vars {
		sol.Values[v.Name] = vals.x[i]
		if v.Kind == Decision || v.Kind == Selection {
			sol.Decisions[v.Name] = vals.x[i]
		}
		if v.Kind == Parameter && (v.Value < v.Lower || v.Value > v.Upper) {
			sol.Warnings = append(sol.Warnings, fmt.Sprintf("parameter %s=%g outside validated range [%g, %g]",
				v.Name, v.Value, v.Lower, v.Upper))
		}
	}
	var warn []string
	sol.Costs, warn = m.econ.record(m, vals)
	sol.Warnings = append(sol.Warnings, warn...)
	for _, k := range m.constraints {
		r := k.F(vals)
		a := ConstraintActivity{Name: k.Name, Kind: k.Kind, Value: r, Scaled: r / k.Scale}
		a.Active = k.Kind == Equality || math.Abs(a.Scaled) <= tol
		sol.Constraints = append(sol.Constraints, a)
	}
	return sol, nil
}

// Record flattens the solution into named outputs: the economic totals,
// the installed cost of each capital item, each cost line item and the
// value of each decision and selection.
func (s *Solution) Record() map[string]float64 {
	c := s.Costs
	r := map[string]float64{
		"TAC":             c.TAC,
		"CAPEX":           c.CAPEX,
		"OPEX":            c.OPEX,
		"Revenue":         c.RevenueTotal,
		"Profit":          c.Profit,
		"CRF":             c.CRF,
		"Power":           c.Power,
		"ElectricityCost": c.ElectricityCost,
		"WaterCost":       c.WaterCost,
		"ConsumablesCost": c.ConsumablesCost,
		"Objective":       s.ObjectiveValue,
	}
	for _, u := range c.Capital {
		r["capex."+u.Unit+"."+u.Item] += u.Installed
	}
	for kind, items := range map[string][]LineItem{
		"power": c.Electricity, "water": c.Water, "consumables": c.Consumables,
		"revenue": c.Revenue, "heat": c.Heat,
	} {
		for _, it := range items {
			r[kind+"."+it.Unit+"."+it.Item] = it.Value
		}
	}
	for n, v := range s.Decisions {
		r[n] = v
	}
	return r
}
