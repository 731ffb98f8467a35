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
	"fmt"

	"github.com/spatialmodel/co2ch4/nlp"
)

// BuildError is returned when a superstructure cannot be constructed.
// It is fatal to model construction.
type BuildError struct {
	Unit   string
	Port   string
	Reason string
}

func (e *BuildError) Error() string {
	switch {
	case e.Port != "":
		return fmt.Sprintf("co2ch4: building %s port %s: %s", e.Unit, e.Port, e.Reason)
	case e.Unit != "":
		return fmt.Sprintf("co2ch4: building %s: %s", e.Unit, e.Reason)
	default:
		return "co2ch4: building model: " + e.Reason
	}
}

// DomainError is returned when a parameter lies outside the range where
// its model is defined. It aborts the scenario it occurs in.
type DomainError struct {
	Unit      string
	Parameter string
	Value     float64
	Lower     float64
	Upper     float64
}

func (e *DomainError) Error() string {
	if e.Unit == "" {
		return fmt.Sprintf("co2ch4: parameter %s=%g outside [%g, %g]", e.Parameter, e.Value, e.Lower, e.Upper)
	}
	return fmt.Sprintf("co2ch4: %s: parameter %s=%g outside [%g, %g]", e.Unit, e.Parameter, e.Value, e.Lower, e.Upper)
}

// SolveFailure is returned when the solver does not find a usable
// solution.
type SolveFailure struct {
	Status  nlp.Status
	Message string
}

func (e *SolveFailure) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("co2ch4: solve failed with status %v", e.Status)
	}
	return fmt.Sprintf("co2ch4: solve failed with status %v: %s", e.Status, e.Message)
}

// ConfigurationError is returned for invalid user configuration.
// It is fatal at sweep start.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("co2ch4: configuration %s: %s", e.Field, e.Reason)
}
