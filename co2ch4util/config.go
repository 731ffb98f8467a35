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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/co2ch4"
	"github.com/spf13/cast"
)

// checkOutputVars removes end lines and expands environment
// variables in the output expressions.
func checkOutputVars(vars map[string]string) map[string]string {
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`co2ch4util: you need to specify an output file (for example: OutputFile="output.csv")`)
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("co2ch4util: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// readSuperstructure reads the superstructure configuration file, or
// returns the default configuration if name is empty.
func readSuperstructure(name string) (co2ch4.Configuration, error) {
	if name == "" {
		return co2ch4.Configuration{}, nil
	}
	return co2ch4.ReadConfigurationFile(os.ExpandEnv(name))
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		if err := json.NewDecoder(bytes.NewBufferString(v)).Decode(&o); err != nil {
			return nil, fmt.Errorf("co2ch4util: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("co2ch4util: invalid type for %s: %#v", varName, i)
	}
}

// getGrid returns the sweep grid from a viper configuration. The
// variable is a map from parameter name to a list of values, given
// either as a table in a configuration file or as a json object on the
// command line. Axes are ordered by parameter name.
func getGrid(varName string, cfg *viper.Viper) (co2ch4.Grid, error) {
	var m map[string]interface{}
	switch v := cfg.Get(varName).(type) {
	case nil:
	case map[string]interface{}:
		m = v
	case map[string][]float64:
		m = make(map[string]interface{}, len(v))
		for k, x := range v {
			m[k] = x
		}
	case string:
		if strings.TrimSpace(v) == "" {
			break
		}
		if err := json.NewDecoder(bytes.NewBufferString(v)).Decode(&m); err != nil {
			return nil, &co2ch4.ConfigurationError{Field: varName, Reason: err.Error()}
		}
	default:
		return nil, &co2ch4.ConfigurationError{Field: varName, Reason: fmt.Sprintf("invalid type %T", v)}
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	g := make(co2ch4.Grid, len(names))
	for i, k := range names {
		var vals []float64
		switch x := m[k].(type) {
		case []float64:
			vals = x
		default:
			s, err := cast.ToSliceE(x)
			if err != nil {
				return nil, &co2ch4.ConfigurationError{Field: varName + "." + k, Reason: err.Error()}
			}
			for _, e := range s {
				f, err := cast.ToFloat64E(e)
				if err != nil {
					return nil, &co2ch4.ConfigurationError{Field: varName + "." + k, Reason: err.Error()}
				}
				vals = append(vals, f)
			}
		}
		g[i] = co2ch4.GridAxis{Parameter: k, Values: vals}
	}
	return g, nil
}

// solveSettings returns the solver settings from a viper configuration.
func solveSettings(cfg *viper.Viper) (co2ch4.SolveSettings, error) {
	tl, err := cast.ToDurationE(cfg.Get("solver.TimeLimit"))
	if err != nil {
		return co2ch4.SolveSettings{}, &co2ch4.ConfigurationError{Field: "solver.TimeLimit", Reason: err.Error()}
	}
	return co2ch4.SolveSettings{
		MaxIterations: cfg.GetInt("solver.MaxIterations"),
		TimeLimit:     tl,
		Tolerance:     cfg.GetFloat64("solver.Tolerance"),
	}, nil
}
