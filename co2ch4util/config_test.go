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
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kr/pretty"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/co2ch4"
)

func TestGetGrid(t *testing.T) {
	tests := []struct {
		name string
		val  interface{}
		want co2ch4.Grid
	}{
		{
			name: "json",
			val:  `{"sorbent_cost": [5, 15, 45], "electricity_price": [0.05]}`,
			want: co2ch4.Grid{
				{Parameter: "electricity_price", Values: []float64{0.05}},
				{Parameter: "sorbent_cost", Values: []float64{5, 15, 45}},
			},
		},
		{
			name: "table",
			val:  map[string]interface{}{"co2_target": []interface{}{int64(1), 2.5}},
			want: co2ch4.Grid{{Parameter: "co2_target", Values: []float64{1, 2.5}}},
		},
		{
			name: "empty",
			val:  "{}\n",
			want: co2ch4.Grid{},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := viper.New()
			cfg.Set("Sweep", test.val)
			g, err := getGrid("Sweep", cfg)
			if err != nil {
				t.Fatal(err)
			}
			if diff := pretty.Diff(g, test.want); len(diff) > 0 {
				t.Error(diff)
			}
		})
	}
}

func TestGetGridInvalid(t *testing.T) {
	for _, val := range []interface{}{`{"a": [1, "x"]}`, `[1, 2]`, 42} {
		cfg := viper.New()
		cfg.Set("Sweep", val)
		_, err := getGrid("Sweep", cfg)
		var ce *co2ch4.ConfigurationError
		if !errors.As(err, &ce) {
			t.Errorf("%v: error = %v, want a ConfigurationError", val, err)
		}
	}
}

func TestGetStringMapString(t *testing.T) {
	want := map[string]string{"a": "TAC / 2", "b": "CAPEX"}
	for _, val := range []interface{}{
		`{"a": "TAC / 2", "b": "CAPEX"}`,
		map[string]interface{}{"a": "TAC / 2", "b": "CAPEX"},
		map[string]string{"a": "TAC / 2", "b": "CAPEX"},
	} {
		cfg := viper.New()
		cfg.Set("OutputVariables", val)
		got, err := GetStringMapString("OutputVariables", cfg)
		if err != nil {
			t.Fatal(err)
		}
		if diff := pretty.Diff(got, want); len(diff) > 0 {
			t.Errorf("%T: %v", val, diff)
		}
	}
}

func TestCheckOutputVars(t *testing.T) {
	os.Setenv("CO2CH4_TEST_NAME", "cost")
	defer os.Unsetenv("CO2CH4_TEST_NAME")
	got := checkOutputVars(map[string]string{"${CO2CH4_TEST_NAME}": "TAC +\r\nCAPEX"})
	want := map[string]string{"cost": "TAC + CAPEX"}
	if diff := pretty.Diff(got, want); len(diff) > 0 {
		t.Error(diff)
	}
}

func TestCheckOutputFile(t *testing.T) {
	if _, err := checkOutputFile(""); err == nil {
		t.Error("empty file name should be an error")
	}
	if _, err := checkOutputFile(filepath.Join("no", "such", "dir", "out.csv")); err == nil {
		t.Error("missing directory should be an error")
	}
	if _, err := checkOutputFile("out.csv"); err != nil {
		t.Error(err)
	}
}

func TestSolveSettings(t *testing.T) {
	cfg := viper.New()
	cfg.Set("solver.MaxIterations", 50)
	cfg.Set("solver.TimeLimit", "90s")
	cfg.Set("solver.Tolerance", 1e-5)
	s, err := solveSettings(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := co2ch4.SolveSettings{MaxIterations: 50, TimeLimit: 90 * time.Second, Tolerance: 1e-5}
	if diff := pretty.Diff(s, want); len(diff) > 0 {
		t.Error(diff)
	}

	cfg.Set("solver.TimeLimit", "soon")
	if _, err := solveSettings(cfg); err == nil {
		t.Error("invalid time limit should be an error")
	}
}

func TestReadSuperstructure(t *testing.T) {
	cfg, err := readSuperstructure("")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Choices) != 0 {
		t.Errorf("default configuration has choices %v", cfg.Choices)
	}
	if _, err := readSuperstructure("missing.toml"); err == nil {
		t.Error("missing file should be an error")
	}
}
