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

// Package co2ch4 builds and solves techno-economic optimisation models of a
// plant that turns CO2 captured from air and electrolytic hydrogen into
// methane. A superstructure of competing unit variants is assembled into a
// Model of variables and constraints, compiled into a nonlinear program and
// handed to a solver; a sensitivity driver re-solves the model over grids of
// parameter values.
package co2ch4

import (
	"fmt"
	"math"

	"github.com/ctessum/unit"
	"github.com/spatialmodel/co2ch4/property"
)

// Version is the version of this module.
const Version = "0.1.0"

// VarID identifies a model variable.
type VarID int

// NoVar is the VarID of a missing variable.
const NoVar VarID = -1

// VarKind is the role a variable plays in the model.
type VarKind int

// Variable kinds.
const (
	// Parameter variables are fixed inputs.
	Parameter VarKind = iota
	// Decision variables are chosen by the solver within bounds.
	Decision
	// State variables are computed from a single defining relation.
	State
	// Selection variables are binary unit-variant selectors.
	Selection
)

func (k VarKind) String() string {
	switch k {
	case Parameter:
		return "parameter"
	case Decision:
		return "decision"
	case State:
		return "state"
	case Selection:
		return "selection"
	}
	return fmt.Sprintf("VarKind(%d)", int(k))
}

// Var is a model variable.
type Var struct {
	Name string
	Kind VarKind
	Unit string

	// Value is the value of a parameter or the initial value
	// of a decision or selection.
	Value float64

	// Lower and Upper are the bounds of a decision or selection, or the
	// validated range of a parameter.
	Lower, Upper float64

	// HardLower and HardUpper bound the values a parameter may take.
	HardLower, HardUpper float64

	// Usage describes a parameter.
	Usage string

	// si is the value in SI units of one working unit of a parameter
	// with dimensions dims.
	si   float64
	dims unit.Dimensions
}

// Values is the current value of every model variable during evaluation.
// States are computed on first access in each pass.
type Values struct {
	x     []float64
	epoch []uint32
	busy  []bool
	cur   uint32
	m     *Model
	cycle VarID
}

// At returns the value of variable id.
func (v *Values) At(id VarID) float64 {
	def := v.m.defs[id]
	if def == nil || v.epoch[id] == v.cur || v.m.tears[id] {
		return v.x[id]
	}
	if v.busy[id] {
		if v.cycle == NoVar {
			v.cycle = id
		}
		return math.NaN()
	}
	v.busy[id] = true
	val := def(v)
	v.busy[id] = false
	v.x[id] = val
	v.epoch[id] = v.cur
	return val
}

// Expr is a scalar expression over the model variables.
type Expr func(v *Values) float64

// ConstraintKind distinguishes equality and inequality constraints.
type ConstraintKind int

const (
	// Equality constraints hold F(v) = 0.
	Equality ConstraintKind = iota
	// Inequality constraints hold F(v) <= 0.
	Inequality
)

// Constraint is a residual constraint on the model variables.
type Constraint struct {
	Name  string
	Kind  ConstraintKind
	F     Expr
	Scale float64
	Unit  string
}

// Model is a set of variables, defining relations and constraints built
// from a superstructure configuration.
type Model struct {
	vars        []*Var
	index       map[string]VarID
	defs        []Expr
	tears       []bool
	constraints []*Constraint

	units   []*Unit
	ports   []*Port
	groups  []*Group
	choices map[string]string
	econ    *economics
	lib     *property.Library

	sealed bool
	errs   []error
}

// NewModel returns an empty model using property library lib.
func NewModel(lib *property.Library) *Model {
	if lib == nil {
		lib = property.Default()
	}
	m := &Model{
		index: make(map[string]VarID),
		lib:   lib,
	}
	m.econ = newEconomics()
	m.declareGlobals()
	return m
}

// Library returns the property library of the model.
func (m *Model) Library() *property.Library { return m.lib }

func (m *Model) fail(err error) {
	m.errs = append(m.errs, err)
}

// Err returns the first error recorded during construction.
func (m *Model) Err() error {
	if len(m.errs) > 0 {
		return m.errs[0]
	}
	return nil
}

func (m *Model) addVar(v *Var) VarID {
	if _, ok := m.index[v.Name]; ok {
		m.fail(&BuildError{Reason: fmt.Sprintf("variable %s declared twice", v.Name)})
		return m.index[v.Name]
	}
	id := VarID(len(m.vars))
	m.vars = append(m.vars, v)
	m.defs = append(m.defs, nil)
	m.tears = append(m.tears, false)
	m.index[v.Name] = id
	return id
}

// AddParameter adds a fixed parameter. Values outside [lower, upper] give
// a warning in the solution; values outside [hardLower, hardUpper] are
// rejected with a DomainError.
func (m *Model) AddParameter(name string, value float64, units string, lower, upper, hardLower, hardUpper float64) VarID {
	return m.addVar(&Var{
		Name: name, Kind: Parameter, Unit: units, Value: value,
		Lower: lower, Upper: upper, HardLower: hardLower, HardUpper: hardUpper,
	})
}

// AddDecision adds a free variable with bounds and an initial value.
func (m *Model) AddDecision(name string, lower, upper, initial float64, units string) VarID {
	return m.addVar(&Var{Name: name, Kind: Decision, Unit: units, Lower: lower, Upper: upper, Value: initial})
}

// AddState adds a variable that must later be given exactly one defining
// relation with Define.
func (m *Model) AddState(name, units string) VarID {
	return m.addVar(&Var{Name: name, Kind: State, Unit: units})
}

// AddSelection adds a binary selection variable.
func (m *Model) AddSelection(name string) VarID {
	return m.addVar(&Var{Name: name, Kind: Selection, Lower: 0, Upper: 1})
}

// Define sets the defining relation of state id.
func (m *Model) Define(id VarID, f Expr) {
	v := m.vars[id]
	switch {
	case v.Kind != State:
		m.fail(&BuildError{Reason: fmt.Sprintf("%s %s cannot be defined", v.Kind, v.Name)})
	case m.defs[id] != nil:
		m.fail(&BuildError{Reason: fmt.Sprintf("%s has more than one defining relation", v.Name)})
	default:
		m.defs[id] = f
	}
}

// Bind defines state dst as equal to variable src.
func (m *Model) Bind(dst, src VarID) {
	m.Define(dst, func(v *Values) float64 { return v.At(src) })
}

// AddEquality adds the constraint f = 0 with residual scale.
func (m *Model) AddEquality(name string, scale float64, f Expr) {
	m.addConstraint(name, Equality, scale, f)
}

// AddInequality adds the constraint f <= 0 with residual scale.
func (m *Model) AddInequality(name string, scale float64, f Expr) {
	m.addConstraint(name, Inequality, scale, f)
}

func (m *Model) addConstraint(name string, k ConstraintKind, scale float64, f Expr) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	m.constraints = append(m.constraints, &Constraint{Name: name, Kind: k, F: f, Scale: scale})
}

// Lookup returns the variable with the given name.
func (m *Model) Lookup(name string) (VarID, bool) {
	id, ok := m.index[name]
	return id, ok
}

// Var returns variable id.
func (m *Model) Var(id VarID) *Var { return m.vars[id] }

// Vars returns the model variables in declaration order.
func (m *Model) Vars() []*Var { return m.vars }

// Constraints returns the model constraints.
func (m *Model) Constraints() []*Constraint { return m.constraints }

// Units returns the unit instances of the model.
func (m *Model) Units() []*Unit { return m.units }

// Groups returns the free choice points of the model.
func (m *Model) Groups() []*Group { return m.groups }

// Parameters returns the names of all parameters.
func (m *Model) Parameters() []string {
	var o []string
	for _, v := range m.vars {
		if v.Kind == Parameter {
			o = append(o, v.Name)
		}
	}
	return o
}

func (m *Model) parameter(name string) (*Var, error) {
	id, ok := m.index[name]
	if !ok {
		return nil, &ConfigurationError{Field: name, Reason: "no such parameter"}
	}
	v := m.vars[id]
	if v.Kind != Parameter {
		return nil, &ConfigurationError{Field: name, Reason: fmt.Sprintf("is a %s, not a parameter", v.Kind)}
	}
	return v, nil
}

// checkHard returns a DomainError if value is outside the hard range of v.
func checkHard(v *Var, value float64) error {
	if math.IsNaN(value) || value < v.HardLower || value > v.HardUpper {
		u, p := splitName(v.Name)
		return &DomainError{Unit: u, Parameter: p, Value: value, Lower: v.HardLower, Upper: v.HardUpper}
	}
	return nil
}

// SetParameter sets the value of a parameter in working units.
func (m *Model) SetParameter(name string, value float64) error {
	v, err := m.parameter(name)
	if err != nil {
		return err
	}
	if err := checkHard(v, value); err != nil {
		return err
	}
	v.Value = value
	return nil
}

// Parameter returns the value of a parameter in working units.
func (m *Model) Parameter(name string) (float64, error) {
	v, err := m.parameter(name)
	if err != nil {
		return math.NaN(), err
	}
	return v.Value, nil
}

// SetQuantity sets a parameter from a dimensioned quantity in SI units.
func (m *Model) SetQuantity(name string, q *unit.Unit) error {
	v, err := m.parameter(name)
	if err != nil {
		return err
	}
	if v.dims == nil {
		return &ConfigurationError{Field: name, Reason: "has no declared dimensions"}
	}
	if err := q.Check(v.dims); err != nil {
		u, p := splitName(name)
		return &BuildError{Unit: u, Reason: fmt.Sprintf("inconsistent units for %s: %v", p, err)}
	}
	return m.SetParameter(name, q.Value()/v.si)
}

// Quantity returns a parameter as a dimensioned quantity in SI units.
func (m *Model) Quantity(name string) (*unit.Unit, error) {
	v, err := m.parameter(name)
	if err != nil {
		return nil, err
	}
	if v.dims == nil {
		return nil, &ConfigurationError{Field: name, Reason: "has no declared dimensions"}
	}
	return unit.New(v.Value*v.si, v.dims), nil
}

// splitName splits a variable name into its unit and local parts.
func splitName(name string) (string, string) {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}

// newValues returns an evaluation workspace with parameters and initial
// values loaded.
func (m *Model) newValues() *Values {
	v := &Values{
		x:     make([]float64, len(m.vars)),
		epoch: make([]uint32, len(m.vars)),
		busy:  make([]bool, len(m.vars)),
		m:     m,
		cycle: NoVar,
	}
	for i, vv := range m.vars {
		if vv.Kind != State {
			v.x[i] = vv.Value
		}
	}
	// Recycle inlets start empty at ambient conditions.
	tAmb, pAmb := m.vars[m.index["T_amb"]].Value, m.vars[m.index["P_amb"]].Value
	for _, p := range m.ports {
		if !p.recycle || p.Dir != Inlet {
			continue
		}
		for c, x := range p.X {
			v.x[x] = p.Nominal[c]
		}
		v.x[p.T], v.x[p.P] = tAmb, pAmb
	}
	return v
}

// maxRecyclePasses limits the successive substitution of recycles.
const maxRecyclePasses = 500

// recycleTolerance is the relative change at which recycles are converged.
const recycleTolerance = 1e-12

// evaluate computes every state from the current parameter, decision and
// selection values in v. Recycle streams are converged by successive
// substitution.
func (m *Model) evaluate(v *Values) error {
	v.cycle = NoVar
	var tears []VarID
	for i, t := range m.tears {
		if t {
			tears = append(tears, VarID(i))
		}
	}
	for pass := 0; ; pass++ {
		v.cur++
		for i := range m.vars {
			v.At(VarID(i))
		}
		if v.cycle != NoVar {
			return &BuildError{Reason: fmt.Sprintf("cycle through %s is not declared as a recycle", m.vars[v.cycle].Name)}
		}
		if len(tears) == 0 {
			return nil
		}
		var change float64
		for _, t := range tears {
			val := m.defs[t](v)
			d := math.Abs(val-v.x[t]) / math.Max(1, math.Abs(val))
			if d > change || math.IsNaN(d) {
				change = d
			}
			v.x[t] = val
		}
		if change <= recycleTolerance {
			// Refresh states that read the previous tear values.
			v.cur++
			for i := range m.vars {
				v.At(VarID(i))
			}
			return nil
		}
		if pass >= maxRecyclePasses || math.IsNaN(change) {
			return fmt.Errorf("co2ch4: recycle did not converge after %d passes (change %g)", pass+1, change)
		}
	}
}

// seal completes construction: optional inlets left unconnected carry no
// flow and the economic totals are defined. Units cannot be added to a
// sealed model.
func (m *Model) seal() {
	if m.sealed {
		return
	}
	m.sealed = true
	for _, p := range m.ports {
		if p.peer != nil || !p.Optional || p.Dir != Inlet {
			continue
		}
		p := p
		m.Define(p.F, func(*Values) float64 { return 0 })
		for c, x := range p.X {
			c := c
			m.Define(x, func(*Values) float64 { return p.Nominal[c] })
		}
		tAmb, pAmb := m.index["T_amb"], m.index["P_amb"]
		m.Bind(p.T, tAmb)
		m.Bind(p.P, pAmb)
	}
	m.econ.finalize(m)
}

// validate checks that every state has a defining relation and every
// port is connected.
func (m *Model) validate() error {
	m.seal()
	if err := m.Err(); err != nil {
		return err
	}
	for _, p := range m.ports {
		if p.peer == nil && !p.Optional {
			return &BuildError{Unit: p.Unit.Name, Port: p.Name, Reason: "not connected"}
		}
	}
	for i, v := range m.vars {
		if v.Kind == State && m.defs[i] == nil {
			return &BuildError{Reason: fmt.Sprintf("routing does not close: %s has no defining relation", v.Name)}
		}
	}
	vals := m.newValues()
	if err := m.evaluate(vals); err != nil {
		if _, ok := err.(*BuildError); ok {
			return err
		}
	}
	return nil
}
