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

// Package co2ch4util contains the command-line interface of the co2ch4
// plant optimiser and the file formats it reads and writes.
package co2ch4util

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/co2ch4"
	"github.com/spatialmodel/co2ch4/property"
	"github.com/spf13/cobra"
)

// inputs are the configuration shared by the solve and sweep commands.
type inputs struct {
	config     co2ch4.Configuration
	lib        *property.Library
	objective  co2ch4.Objective
	outputs    *co2ch4.Outputter
	outputFile string
}

func commonInputs(cfg *viper.Viper) (*inputs, error) {
	var in inputs
	var err error
	if in.config, err = readSuperstructure(cfg.GetString("superstructure")); err != nil {
		return nil, err
	}
	if in.lib, err = loadLibrary(cfg.GetString("steamtable"), cfg.GetString("steamsheet")); err != nil {
		return nil, err
	}
	if in.objective, err = co2ch4.ParseObjective(cfg.GetString("objective")); err != nil {
		return nil, err
	}
	vars, err := GetStringMapString("OutputVariables", cfg)
	if err != nil {
		return nil, err
	}
	if in.outputs, err = co2ch4.NewOutputter(checkOutputVars(vars), nil); err != nil {
		return nil, err
	}
	if in.outputFile, err = checkOutputFile(cfg.GetString("OutputFile")); err != nil {
		return nil, err
	}
	return &in, nil
}

// Solve optimises superstructure cfg with property library lib for
// objective obj and writes the solution record, with the derived outputs,
// to outputFile if it is not empty.
//
// If the solver fails, the best point found is returned and written
// together with a *co2ch4.SolveFailure.
func Solve(ctx context.Context, log logrus.FieldLogger, cfg co2ch4.Configuration, lib *property.Library,
	obj co2ch4.Objective, settings co2ch4.SolveSettings, outputs *co2ch4.Outputter, outputFile string) (*co2ch4.Solution, error) {
	m, err := co2ch4.Assemble(cfg, lib)
	if err != nil {
		return nil, err
	}
	c, err := co2ch4.Compile(m, obj)
	if err != nil {
		return nil, err
	}
	c.Log = log
	sol, solveErr := c.Solve(ctx, settings)
	if sol == nil {
		return nil, solveErr
	}
	log.WithFields(logrus.Fields{
		"status":    sol.Status,
		"objective": sol.ObjectiveValue,
	}).Info("co2ch4: solved")
	if outputFile != "" {
		sc := []co2ch4.Scenario{{
			Config: cfg.ID(), Status: sol.Status, Solution: sol,
			Err: solveErr, Failed: solveErr != nil, Attempts: 1,
		}}
		if err := writeCSVFile(outputFile, sc, outputs); err != nil {
			return sol, err
		}
	}
	return sol, solveErr
}

// Sweep runs s over grid, writes the scenarios to outputFile if it is not
// empty and logs statistics of the total annualised cost.
func Sweep(ctx context.Context, s *co2ch4.Sweep, grid co2ch4.Grid, outputs *co2ch4.Outputter, outputFile string) ([]co2ch4.Scenario, error) {
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	results, runErr := s.Run(ctx, grid)
	if results == nil {
		return nil, runErr
	}
	if outputFile != "" {
		if err := writeCSVFile(outputFile, results, outputs); err != nil {
			return results, err
		}
	}
	sum, err := Summarize(results, "TAC")
	if err != nil {
		return results, err
	}
	f := logrus.Fields{
		"solved": sum.N,
		"failed": sum.Failed,
		"min":    sum.Min,
		"max":    sum.Max,
		"mean":   sum.Mean,
	}
	for p, v := range sum.Slope {
		f["slope."+p] = v
	}
	log.WithFields(f).Info("co2ch4: sweep finished")
	return results, runErr
}

// printSummary prints the economic totals and the unit choices of sol.
func printSummary(cmd *cobra.Command, sol *co2ch4.Solution) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "status\t%v\n", sol.Status)
	points := make([]string, 0, len(sol.Choices))
	for p := range sol.Choices {
		points = append(points, p)
	}
	sort.Strings(points)
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%s\n", p, sol.Choices[p])
	}
	c := sol.Costs
	for _, r := range []struct {
		name  string
		value float64
	}{
		{"CAPEX [USD]", c.CAPEX},
		{"OPEX [USD/yr]", c.OPEX},
		{"revenue [USD/yr]", c.RevenueTotal},
		{"TAC [USD/yr]", c.TAC},
		{"profit [USD/yr]", c.Profit},
		{"power [kW]", c.Power},
	} {
		fmt.Fprintf(w, "%s\t%.6g\n", r.name, r.value)
	}
	w.Flush()
}

// WriteParameters writes a table of the parameters of m.
func WriteParameters(out io.Writer, m *co2ch4.Model) error {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "name\tvalue\tunits\trange\tdescription")
	for _, name := range m.Parameters() {
		id, _ := m.Lookup(name)
		v := m.Var(id)
		fmt.Fprintf(w, "%s\t%g\t%s\t[%g, %g]\t%s\n", v.Name, v.Value, v.Unit, v.Lower, v.Upper, v.Usage)
	}
	return w.Flush()
}
