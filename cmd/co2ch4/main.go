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

// Command co2ch4 is a command-line interface for the co2ch4 plant optimiser.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/co2ch4/co2ch4util"
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	if err := co2ch4util.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
