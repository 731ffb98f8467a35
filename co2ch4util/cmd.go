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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/co2ch4"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to co2ch4.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "loglevel",
			usage: `
              loglevel is the minimum level of log messages to print:
              one of debug, info, warning and error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "superstructure",
			usage: `
              superstructure is the path to the TOML file describing the
              unit choices, ancillaries and parameter overrides of the plant.
              If it is empty, the default superstructure is used. It can
              include environment variables.`,
			shorthand:  "s",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{solveCmd.Flags(), sweepCmd.Flags(), paramsCmd.Flags()},
		},
		{
			name: "objective",
			usage: `
              objective is the quantity to optimise: "tac" minimises the
              total annualised cost and "profit" maximises revenue less
              the total annualised cost.`,
			defaultVal: "tac",
			flagsets:   []*pflag.FlagSet{solveCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "steamtable",
			usage: `
              steamtable is the path to a Microsoft Excel file holding a
              saturated-steam table with columns T, P, hf, hfg and hg. If it
              is empty, built-in data is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{solveCmd.Flags(), sweepCmd.Flags(), paramsCmd.Flags()},
		},
		{
			name: "steamsheet",
			usage: `
              steamsheet is the sheet of the steamtable file to read. If it
              is empty, the first sheet is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{solveCmd.Flags(), sweepCmd.Flags(), paramsCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired output CSV file location. It can
              include environment variables.`,
			defaultVal: "co2ch4_output.csv",
			flagsets:   []*pflag.FlagSet{solveCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies derived outputs to be added to the
              output file, as expressions of solution variables and record
              fields. Names containing dots are written in brackets.`,
			defaultVal: map[string]string{
				"MethaneRate":   "[product.in.F] * [product.in.x_CH4]",
				"LevelisedCost": "TAC / (MethaneRate * 3600 * operating_hours)",
			},
			flagsets: []*pflag.FlagSet{solveCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "Sweep",
			usage: `
              Sweep specifies the parameter grid to sweep, as a map from
              parameter name to the list of values it takes.`,
			defaultVal: map[string][]float64{},
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "solver.MaxIterations",
			usage: `
              solver.MaxIterations limits the iterations of each inner solve.
              If < 1, the solver default is used.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{solveCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "solver.TimeLimit",
			usage: `
              solver.TimeLimit limits the wall time of each solve, for
              example "90s". Zero means no limit.`,
			defaultVal: "0s",
			flagsets:   []*pflag.FlagSet{solveCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "solver.Tolerance",
			usage: `
              solver.Tolerance is the feasibility tolerance of the scaled
              constraint residuals.`,
			defaultVal: 1e-6,
			flagsets:   []*pflag.FlagSet{solveCmd.Flags(), sweepCmd.Flags()},
		},
		{
			name: "WarmStart",
			usage: `
              WarmStart specifies whether each sweep point starts from the
              solution of the previous point solved by the same worker.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the number of sweep points solved concurrently.
              If < 1, the number of processors is used.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Retries",
			usage: `
              Retries is the number of times a sweep point whose solve
              fails is solved again from a perturbed start.`,
			defaultVal: 2,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CO2CH4")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, v, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, v, option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, v, option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, v, option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, v, option.usage)
				} else {
					set.IntP(option.name, option.shorthand, v, option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, v, option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, v, option.usage)
				}
			case map[string]string, map[string][]float64:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(v)
				s := b.String()
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(solveCmd)
	Root.AddCommand(sweepCmd)
	Root.AddCommand(paramsCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("co2ch4: problem reading configuration file: %v", err)
		}
	}
	lvl, err := logrus.ParseLevel(Cfg.GetString("loglevel"))
	if err != nil {
		return &co2ch4.ConfigurationError{Field: "loglevel", Reason: err.Error()}
	}
	logrus.SetLevel(lvl)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "co2ch4",
	Short: "A techno-economic optimiser for CO2 methanation plants.",
	Long: `co2ch4 optimises the design and operation of a plant that captures CO2
from air, produces hydrogen by electrolysis and converts both to methane.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CO2CH4_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of co2ch4.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "co2ch4 v%s\n", co2ch4.Version)
	},
	DisableAutoGenTag: true,
}

// interruptContext returns a context that is cancelled on an interrupt
// signal.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// solveCmd is a command that solves a single superstructure.
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a single superstructure.",
	Long: `solve optimises the superstructure given by the configuration,
prints a summary of the costs of the solution and writes the solution
record to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := interruptContext()
		defer cancel()

		in, err := commonInputs(Cfg)
		if err != nil {
			return err
		}
		settings, err := solveSettings(Cfg)
		if err != nil {
			return err
		}
		sol, err := Solve(ctx, logrus.StandardLogger(), in.config, in.lib, in.objective, settings, in.outputs, in.outputFile)
		if sol != nil {
			printSummary(cmd, sol)
		}
		return err
	},
	DisableAutoGenTag: true,
}

// sweepCmd is a command that solves a superstructure over a parameter grid.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Solve a superstructure over a parameter grid.",
	Long: `sweep solves the superstructure given by the configuration at every
point of the Sweep parameter grid, writes one row per point to OutputFile
and logs summary statistics of the total annualised cost.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := interruptContext()
		defer cancel()

		in, err := commonInputs(Cfg)
		if err != nil {
			return err
		}
		settings, err := solveSettings(Cfg)
		if err != nil {
			return err
		}
		grid, err := getGrid("Sweep", Cfg)
		if err != nil {
			return err
		}
		s := &co2ch4.Sweep{
			Config:    in.config,
			Objective: in.objective,
			Settings:  settings,
			WarmStart: Cfg.GetBool("WarmStart"),
			Workers:   Cfg.GetInt("Workers"),
			Retries:   Cfg.GetInt("Retries"),
			Log:       logrus.StandardLogger(),
			Library:   in.lib,
		}
		_, err = Sweep(ctx, s, grid, in.outputs, in.outputFile)
		return err
	},
	DisableAutoGenTag: true,
}

// paramsCmd is a command that lists the parameters of a superstructure.
var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "List the parameters of a superstructure.",
	Long: `params lists every parameter of the superstructure given by the
configuration, with its value, units, validated range and description.
Any of them can be swept or overridden.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readSuperstructure(Cfg.GetString("superstructure"))
		if err != nil {
			return err
		}
		lib, err := loadLibrary(Cfg.GetString("steamtable"), Cfg.GetString("steamsheet"))
		if err != nil {
			return err
		}
		m, err := co2ch4.Assemble(cfg, lib)
		if err != nil {
			return err
		}
		return WriteParameters(cmd.OutOrStdout(), m)
	},
	DisableAutoGenTag: true,
}
