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
	"errors"
	"testing"

	"github.com/Knetic/govaluate"
	"github.com/kr/pretty"
)

func outputSolution() *Solution {
	return &Solution{
		Values: map[string]float64{"product.in.F": 2, "x": 3},
		Costs:  CostRecord{TAC: 10, OPEX: 4},
	}
}

func TestOutputs(t *testing.T) {
	o, err := NewOutputter(map[string]string{
		"rate":    "[product.in.F] * 2",
		"cost":    "TAC / rate",
		"biggest": "max(x, 1, 7)",
		"share":   "pos(OPEX - TAC) + OPEX / TAC",
		"twice":   "double(x)",
	}, map[string]govaluate.ExpressionFunction{
		"double": func(args ...interface{}) (interface{}, error) {
			return args[0].(float64) * 2, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := o.Names(), []string{"biggest", "cost", "rate", "share", "twice"}; pretty.Sprint(got) != pretty.Sprint(want) {
		t.Errorf("names = %v, want %v", got, want)
	}
	out, err := o.Outputs(outputSolution())
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]float64{"rate": 4, "cost": 2.5, "biggest": 7, "share": 0.4, "twice": 6}
	if diff := pretty.Diff(out, want); len(diff) > 0 {
		t.Errorf("outputs differ: %v", diff)
	}
}

func TestOutputErrors(t *testing.T) {
	for _, test := range []struct {
		name  string
		vars  map[string]string
		field string
	}{
		{"parse", map[string]string{"bad": "1 +"}, "OutputVariables.bad"},
		{"self", map[string]string{"a": "a + 1"}, "OutputVariables.a"},
		{"cycle", map[string]string{"a": "b + 1", "b": "a * 2"}, "OutputVariables.a"},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewOutputter(test.vars, nil)
			var ce *ConfigurationError
			if !errors.As(err, &ce) || ce.Field != test.field {
				t.Errorf("error = %v, want a ConfigurationError for %s", err, test.field)
			}
		})
	}

	o, err := NewOutputter(map[string]string{"y2": "y * 2", "l": "log(x, 2)"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.Outputs(outputSolution()); err == nil {
		t.Error("undefined variable evaluated")
	}
}
