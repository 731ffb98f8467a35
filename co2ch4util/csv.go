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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/spatialmodel/co2ch4"
)

// records flattens the scenarios, adding the derived outputs of o if it
// is not nil. Failed scenarios without a solution get no values.
func records(scenarios []co2ch4.Scenario, o *co2ch4.Outputter) ([]map[string]float64, error) {
	recs := make([]map[string]float64, len(scenarios))
	for i, sc := range scenarios {
		if sc.Solution == nil {
			continue
		}
		r := sc.Solution.Record()
		if o != nil && !sc.Failed {
			out, err := o.Outputs(sc.Solution)
			if err != nil {
				return nil, err
			}
			for k, v := range out {
				r[k] = v
			}
		}
		recs[i] = r
	}
	return recs, nil
}

// WriteCSV writes one row per scenario: its index, ID, configuration ID,
// outcome, failure flag and attempts, the swept parameters, and the
// flattened solution record with the outputs of o, which may be nil.
// Columns are in a deterministic order.
func WriteCSV(w io.Writer, scenarios []co2ch4.Scenario, o *co2ch4.Outputter) error {
	recs, err := records(scenarios, o)
	if err != nil {
		return err
	}
	var params []string
	seen := make(map[string]bool)
	for _, sc := range scenarios {
		for _, p := range sc.Parameters {
			if !seen[p.Name] {
				seen[p.Name] = true
				params = append(params, p.Name)
			}
		}
	}
	keys := make(map[string]bool)
	for _, r := range recs {
		for k := range r {
			if !seen[k] {
				keys[k] = true
			}
		}
	}
	var cols []string
	for k := range keys {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	cw := csv.NewWriter(w)
	header := append([]string{"index", "id", "config", "status", "failed", "attempts"}, params...)
	header = append(header, cols...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("co2ch4util: writing csv: %v", err)
	}
	for i, sc := range scenarios {
		row := []string{
			strconv.Itoa(sc.Index), sc.ID, sc.Config, sc.Outcome(),
			strconv.FormatBool(sc.Failed), strconv.Itoa(sc.Attempts),
		}
		pv := make(map[string]float64, len(sc.Parameters))
		for _, p := range sc.Parameters {
			pv[p.Name] = p.Value
		}
		for _, p := range params {
			if v, ok := pv[p]; ok {
				row = append(row, formatFloat(v))
			} else {
				row = append(row, "")
			}
		}
		for _, c := range cols {
			if v, ok := recs[i][c]; ok {
				row = append(row, formatFloat(v))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("co2ch4util: writing csv: %v", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("co2ch4util: writing csv: %v", err)
	}
	return nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// writeCSVFile writes scenarios to the file name.
func writeCSVFile(name string, scenarios []co2ch4.Scenario, o *co2ch4.Outputter) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("co2ch4util: creating output file: %v", err)
	}
	if err := WriteCSV(f, scenarios, o); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
