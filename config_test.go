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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

const plantConfig = `
[choices]
electrolyser = "free"
adsorption = "DFM"

[ancillaries]
steam_generator = true
separator = true

[parameters]
co2_target = 1.0
electricity_price = 0.05

[units.dac]
D = 2.5
`

func TestReadConfiguration(t *testing.T) {
	cfg, err := ReadConfiguration(strings.NewReader(plantConfig))
	if err != nil {
		t.Fatal(err)
	}
	want := Configuration{
		Choices:     map[string]string{ElectrolyserChoice: Free, AdsorptionChoice: DFMRoute},
		Ancillaries: Ancillaries{SteamGenerator: true, Separator: true},
		Units:       map[string]map[string]float64{"dac": {"D": 2.5}},
		Parameters:  map[string]float64{"co2_target": 1, "electricity_price": 0.05},
	}
	if diff := pretty.Diff(cfg, want); len(diff) > 0 {
		t.Errorf("configuration differs: %v", diff)
	}
	if _, err := Assemble(cfg, nil); err != nil {
		t.Error(err)
	}
}

func TestReadConfigurationInvalid(t *testing.T) {
	for _, in := range []string{
		"[choices]\nelectrolyser = 3\n",
		"[ancillaries]\nboiler = true\n",
		"co2_target = 1\n",
		"[parameters\n",
	} {
		_, err := ReadConfiguration(strings.NewReader(in))
		var ce *ConfigurationError
		if !errors.As(err, &ce) || ce.Field != "superstructure" {
			t.Errorf("%q: error = %v, want a ConfigurationError", in, err)
		}
	}
}

func TestReadConfigurationFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "plant.toml")
	if err := os.WriteFile(name, []byte(plantConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadConfigurationFile(name); err != nil {
		t.Error(err)
	}
	var ce *ConfigurationError
	if _, err := ReadConfigurationFile(name + ".missing"); !errors.As(err, &ce) {
		t.Errorf("error = %v, want a ConfigurationError", err)
	}
}

func TestConfigurationID(t *testing.T) {
	cfg, err := ReadConfiguration(strings.NewReader(plantConfig))
	if err != nil {
		t.Fatal(err)
	}
	same := Configuration{
		Choices:     map[string]string{AdsorptionChoice: DFMRoute, ElectrolyserChoice: Free},
		Ancillaries: Ancillaries{SteamGenerator: true, Separator: true},
		Units:       map[string]map[string]float64{"dac": {"D": 2.5}, "fan": {}},
		Parameters:  map[string]float64{"electricity_price": 0.05, "co2_target": 1},
	}
	if cfg.ID() != same.ID() {
		t.Errorf("equal configurations have ids %s and %s", cfg.ID(), same.ID())
	}
	if cfg.ID() != cfg.ID() {
		t.Error("id is not stable")
	}
	if (Configuration{}).ID() != (Configuration{Choices: map[string]string{}, Units: map[string]map[string]float64{}}).ID() {
		t.Error("empty tables change the id")
	}
	for name, other := range fixedConfigs {
		if other.ID() == cfg.ID() {
			t.Errorf("%s has the same id as the file configuration", name)
		}
	}
	same.Ancillaries.AirCooler = true
	if same.ID() == cfg.ID() {
		t.Error("ancillaries do not change the id")
	}
}
