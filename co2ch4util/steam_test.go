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
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/co2ch4/property"
	"github.com/tealeg/xlsx"
)

// writeSheet saves rows as the named sheet of a new Excel file in dir.
func writeSheet(t *testing.T, dir, sheet string, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	s, err := f.AddSheet(sheet)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		row := s.AddRow()
		for _, v := range r {
			row.AddCell().SetString(v)
		}
	}
	name := filepath.Join(dir, "steam.xlsx")
	if err := f.Save(name); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestLoadSteamTable(t *testing.T) {
	dir, err := os.MkdirTemp("", "co2ch4util")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	// Columns out of order with units in the headers; rows unsorted.
	name := writeSheet(t, dir, "sat", [][]string{
		{"P [kPa]", "T [K]", "hf", "hfg", "hg"},
		{"476.16", "423.15", "632.18", "2113.7", "2745.9"},
		{"101.42", "373.15", "419.17", "2256.4", "2675.6"},
		{"", "", "", "", ""},
		{"1554.9", "473.15", "852.26", "1939.8", "2792.0"},
	})

	t.Run("named sheet", func(t *testing.T) {
		st, err := LoadSteamTable(name, "sat")
		if err != nil {
			t.Fatal(err)
		}
		if len(st.Rows) != 3 {
			t.Fatalf("got %d rows, want 3", len(st.Rows))
		}
		want := property.SteamRow{T: 373.15, P: 101.42, Hf: 419.17, Hfg: 2256.4, Hg: 2675.6}
		if st.Rows[0] != want {
			t.Errorf("first row = %+v, want %+v", st.Rows[0], want)
		}
		lib, err := property.NewLibrary(st)
		if err != nil {
			t.Fatal(err)
		}
		r, err := lib.Steam(398.15)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(r.Hfg-(2256.4+2113.7)/2) > 1e-9 {
			t.Errorf("interpolated hfg = %g", r.Hfg)
		}
	})
	t.Run("first sheet", func(t *testing.T) {
		if _, err := LoadSteamTable(name, ""); err != nil {
			t.Fatal(err)
		}
	})
	t.Run("missing sheet", func(t *testing.T) {
		if _, err := LoadSteamTable(name, "nope"); err == nil {
			t.Error("expected an error")
		}
	})
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadSteamTable(filepath.Join(dir, "missing.xlsx"), ""); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestLoadSteamTableInvalid(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		msg  string
	}{
		{
			name: "missing column",
			rows: [][]string{{"T", "P", "hf", "hg"}, {"373.15", "101.42", "419.17", "2675.6"}},
			msg:  "missing column hfg",
		},
		{
			name: "not a number",
			rows: [][]string{{"T", "P", "hf", "hfg", "hg"}, {"373.15", "x", "419.17", "2256.4", "2675.6"}},
			msg:  "column P",
		},
		{
			name: "one row",
			rows: [][]string{{"T", "P", "hf", "hfg", "hg"}, {"373.15", "101.42", "419.17", "2256.4", "2675.6"}},
			msg:  "at least 2",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dir, err := os.MkdirTemp("", "co2ch4util")
			if err != nil {
				t.Fatal(err)
			}
			defer os.RemoveAll(dir)
			_, err = LoadSteamTable(writeSheet(t, dir, "s", test.rows), "s")
			if err == nil || !strings.Contains(err.Error(), test.msg) {
				t.Errorf("error = %v, want it to contain %q", err, test.msg)
			}
		})
	}
}

func TestLoadLibraryDefault(t *testing.T) {
	lib, err := loadLibrary("", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lib.Steam(400); err != nil {
		t.Error(err)
	}
}
