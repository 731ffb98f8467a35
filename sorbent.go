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

import "github.com/spatialmodel/co2ch4/property"

// Sorbent is a TVSA adsorbent.
type Sorbent struct {
	Name  string
	Ident string

	Isotherm property.DualSite

	// Cp is the specific heat capacity [J/(kg K)].
	Cp float64

	// BedDensity is the packed bed density [kg/m³].
	BedDensity float64
}

// Sorbent names.
const (
	APDESNFC       = "APDES-NFC"
	TriPEMCM41     = "Tri-PE-MCM-41"
	MIL101PEI800   = "MIL-101(Cr)-PEI-800"
	LewatitVPOC106 = "Lewatit-VPOC-106"
)

// SorbentVariants lists the sorbents.
var SorbentVariants = []string{APDESNFC, TriPEMCM41, MIL101PEI800, LewatitVPOC106}

// Sorbents holds the isotherms of Stampi-Bombelli et al. (2020) and
// Sinha et al. (2017).
var Sorbents = map[string]*Sorbent{
	APDESNFC: {
		Name: APDESNFC, Ident: "apdes",
		Isotherm: property.DualSite{
			Chemical: property.Toth{T0: 296, B0: 0.560e6, Q: 50000, Tau: 0.368, A: 0.368, Qs0: 2.310, X: 2.501},
			Physical: property.Toth{T0: 296, Tau: 1},
		},
		Cp: 2010, BedDensity: 55.4,
	},
	TriPEMCM41: {
		Name: TriPEMCM41, Ident: "tripe",
		Isotherm: property.DualSite{
			Chemical: property.Toth{T0: 298, B0: 3.135e6, Q: 117.8e3, Tau: 0.236, A: 0.482, Qs0: 2.897, X: 0.207},
			Physical: property.Toth{T0: 298, B0: 0.636, Q: 2.64e3, Tau: 0.872, A: 0.003, Qs0: 8.208, X: 4.539},
		},
		Cp: 1000, BedDensity: 320,
	},
	MIL101PEI800: {
		Name: MIL101PEI800, Ident: "mil101",
		Isotherm: property.DualSite{
			Chemical: property.Toth{T0: 270, B0: 9.960e6, Q: 68.3e3, Tau: 0.243, A: 1.802, Qs0: 3.450, X: 4.504},
			Physical: property.Toth{T0: 270, B0: 93.2, Q: 40.1e3, Tau: 0.163, A: 2.287, Qs0: 6.205, X: 0.579},
		},
		Cp: 892.5, BedDensity: 377.1,
	},
	LewatitVPOC106: {
		Name: LewatitVPOC106, Ident: "lewatit",
		Isotherm: property.DualSite{
			Chemical: property.Toth{T0: 278, B0: 2.540e6, Q: 91.2e3, Tau: 0.442, A: 0.520, Qs0: 2.211, X: 0},
			Physical: property.Toth{T0: 278, B0: 1.51e2, Q: 5.19e3, Tau: 0.636, A: 2.407, Qs0: 1.840, X: 7.186},
		},
		Cp: 1580, BedDensity: 680,
	},
}
