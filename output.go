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
	"math"

	"github.com/Knetic/govaluate"
)

// Outputter computes derived outputs of a solution from expressions over
// its variables and record fields. Names containing dots are written in
// brackets, as in "[econ.TAC] / [product.in.F]". An output may refer to
// other outputs.
type Outputter struct {
	expressions map[string]*govaluate.EvaluableExpression
}

func floatArgs(name string, n int, args []interface{}) ([]float64, error) {
	if n >= 0 && len(args) != n {
		return nil, fmt.Errorf("co2ch4: got %d arguments for function '%s', but needs %d", len(args), name, n)
	}
	o := make([]float64, len(args))
	for i, a := range args {
		f, ok := a.(float64)
		if !ok {
			return nil, fmt.Errorf("co2ch4: argument %d of function '%s' is %T, not a number", i, name, a)
		}
		o[i] = f
	}
	return o, nil
}

// NewOutputter compiles the output expressions. The default functions
// exp(x), log(x), sqrt(x), max(x, ...), min(x, ...) and pos(x) are
// available, together with any in functions.
func NewOutputter(outputVariables map[string]string, functions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	unary := func(name string, f func(float64) float64) govaluate.ExpressionFunction {
		return func(args ...interface{}) (interface{}, error) {
			x, err := floatArgs(name, 1, args)
			if err != nil {
				return nil, err
			}
			return f(x[0]), nil
		}
	}
	reduce := func(name string, f func(a, b float64) float64) govaluate.ExpressionFunction {
		return func(args ...interface{}) (interface{}, error) {
			x, err := floatArgs(name, -1, args)
			if err != nil {
				return nil, err
			}
			if len(x) == 0 {
				return nil, fmt.Errorf("co2ch4: function '%s' needs at least one argument", name)
			}
			r := x[0]
			for _, v := range x[1:] {
				r = f(r, v)
			}
			return r, nil
		}
	}
	funcs := map[string]govaluate.ExpressionFunction{
		"exp":  unary("exp", math.Exp),
		"log":  unary("log", math.Log),
		"sqrt": unary("sqrt", math.Sqrt),
		"pos":  unary("pos", pos),
		"max":  reduce("max", math.Max),
		"min":  reduce("min", math.Min),
	}
	for k, f := range functions {
		funcs[k] = f
	}
	o := &Outputter{expressions: make(map[string]*govaluate.EvaluableExpression)}
	for _, name := range sortedKeys(outputVariables) {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(outputVariables[name], funcs)
		if err != nil {
			return nil, &ConfigurationError{Field: "OutputVariables." + name, Reason: err.Error()}
		}
		o.expressions[name] = e
	}
	for _, name := range sortedKeys(o.expressions) {
		if err := o.checkCycle(name, map[string]bool{}); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Outputter) checkCycle(name string, path map[string]bool) error {
	if path[name] {
		return &ConfigurationError{Field: "OutputVariables." + name, Reason: "expression refers to itself"}
	}
	path[name] = true
	for _, v := range o.expressions[name].Vars() {
		if _, ok := o.expressions[v]; ok {
			if err := o.checkCycle(v, path); err != nil {
				return err
			}
		}
	}
	delete(path, name)
	return nil
}

// Names returns the output names in order.
func (o *Outputter) Names() []string { return sortedKeys(o.expressions) }

// Outputs evaluates the outputs at sol.
func (o *Outputter) Outputs(sol *Solution) (map[string]float64, error) {
	params := make(map[string]interface{}, len(sol.Values))
	for k, v := range sol.Values {
		params[k] = v
	}
	for k, v := range sol.Record() {
		params[k] = v
	}
	out := make(map[string]float64, len(o.expressions))
	var eval func(name string) (float64, error)
	eval = func(name string) (float64, error) {
		if v, ok := out[name]; ok {
			return v, nil
		}
		e := o.expressions[name]
		for _, v := range e.Vars() {
			if _, ok := o.expressions[v]; ok {
				x, err := eval(v)
				if err != nil {
					return 0, err
				}
				params[v] = x
			} else if _, ok := params[v]; !ok {
				return 0, fmt.Errorf("co2ch4: output %s: undefined variable name '%s'", name, v)
			}
		}
		r, err := e.Evaluate(params)
		if err != nil {
			return 0, fmt.Errorf("co2ch4: output %s: %v", name, err)
		}
		f, ok := r.(float64)
		if !ok {
			return 0, fmt.Errorf("co2ch4: output %s is %T, not a number", name, r)
		}
		out[name] = f
		return f, nil
	}
	for _, name := range o.Names() {
		if _, err := eval(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}
