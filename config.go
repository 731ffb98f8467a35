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
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/co2ch4/internal/hash"
)

// ReadConfiguration decodes a superstructure configuration from TOML, for
// example:
//
//	[choices]
//	electrolyser = "free"
//	adsorption = "DFM"
//
//	[ancillaries]
//	steam_generator = true
//
//	[parameters]
//	co2_target = 1.0
//
//	[units.dac]
//	D = 2.5
//
// Keys that do not correspond to a configuration field are an error.
func ReadConfiguration(r io.Reader) (Configuration, error) {
	var cfg Configuration
	meta, err := toml.DecodeReader(r, &cfg)
	if err != nil {
		return cfg, &ConfigurationError{Field: "superstructure", Reason: err.Error()}
	}
	if u := meta.Undecoded(); len(u) > 0 {
		keys := make([]string, len(u))
		for i, k := range u {
			keys[i] = k.String()
		}
		return cfg, &ConfigurationError{Field: "superstructure", Reason: "unknown keys " + strings.Join(keys, ", ")}
	}
	return cfg, nil
}

// ReadConfigurationFile decodes the superstructure configuration in file
// name.
func ReadConfigurationFile(name string) (Configuration, error) {
	f, err := os.Open(name)
	if err != nil {
		return Configuration{}, &ConfigurationError{Field: "superstructure", Reason: err.Error()}
	}
	defer f.Close()
	return ReadConfiguration(f)
}

// ID returns a stable identifier of the superstructure. Empty and missing
// tables give the same ID.
func (c Configuration) ID() string {
	if len(c.Choices) == 0 {
		c.Choices = nil
	}
	if len(c.Parameters) == 0 {
		c.Parameters = nil
	}
	var units map[string]map[string]float64
	for u, p := range c.Units {
		if len(p) == 0 {
			continue
		}
		if units == nil {
			units = make(map[string]map[string]float64)
		}
		units[u] = p
	}
	c.Units = units
	return hash.Hash(c)
}
