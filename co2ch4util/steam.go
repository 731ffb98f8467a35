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
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spatialmodel/co2ch4/property"
	"github.com/tealeg/xlsx"
)

// steamColumns are the required header cells of a steam table sheet.
var steamColumns = []string{"T", "P", "hf", "hfg", "hg"}

// LoadSteamTable reads a saturated-steam table from the given sheet of
// a Microsoft Excel file. The first row of the sheet is a header naming
// the columns T [K], P [kPa], hf, hfg and hg [kJ/kg] in any order; text
// after the first space of a header cell is ignored. Empty rows are
// skipped. If sheet is empty, the first sheet in the file is used.
func LoadSteamTable(path, sheet string) (*property.SteamTable, error) {
	f, err := xlsx.OpenFile(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("co2ch4util: opening steam table: %v", err)
	}
	var s *xlsx.Sheet
	if sheet == "" {
		if len(f.Sheets) == 0 {
			return nil, fmt.Errorf("co2ch4util: steam table file %s has no sheets", path)
		}
		s = f.Sheets[0]
	} else {
		var ok bool
		if s, ok = f.Sheet[sheet]; !ok {
			return nil, fmt.Errorf("co2ch4util: reading steam table; no sheet %s", sheet)
		}
	}
	if len(s.Rows) == 0 {
		return nil, fmt.Errorf("co2ch4util: steam table sheet %s is empty", s.Name)
	}

	cols := make(map[string]int)
	for i, c := range s.Rows[0].Cells {
		h := strings.Fields(c.Value)
		if len(h) > 0 {
			cols[strings.ToLower(h[0])] = i
		}
	}
	idx := make([]int, len(steamColumns))
	for i, name := range steamColumns {
		j, ok := cols[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("co2ch4util: steam table sheet %s is missing column %s", s.Name, name)
		}
		idx[i] = j
	}

	st := new(property.SteamTable)
	for r, row := range s.Rows[1:] {
		if row == nil || blank(row) {
			continue
		}
		var v [5]float64
		for i, j := range idx {
			if j >= len(row.Cells) {
				return nil, fmt.Errorf("co2ch4util: steam table row %d: missing %s", r+2, steamColumns[i])
			}
			v[i], err = strconv.ParseFloat(strings.TrimSpace(row.Cells[j].Value), 64)
			if err != nil {
				return nil, fmt.Errorf("co2ch4util: steam table row %d, column %s: %v", r+2, steamColumns[i], err)
			}
		}
		st.Rows = append(st.Rows, property.SteamRow{T: v[0], P: v[1], Hf: v[2], Hfg: v[3], Hg: v[4]})
	}
	st.Sort()
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("co2ch4util: %v", err)
	}
	return st, nil
}

func blank(row *xlsx.Row) bool {
	for _, c := range row.Cells {
		if strings.TrimSpace(c.Value) != "" {
			return false
		}
	}
	return true
}

// loadLibrary returns the property library for a steam table file, or
// the built-in library if path is empty.
func loadLibrary(path, sheet string) (*property.Library, error) {
	if path == "" {
		return property.Default(), nil
	}
	st, err := LoadSteamTable(path, sheet)
	if err != nil {
		return nil, err
	}
	return property.NewLibrary(st)
}
