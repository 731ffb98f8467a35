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

// Package hash computes stable identifiers for scenarios and configurations.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"math"
	"reflect"
	"sort"

	"github.com/davecgh/go-spew/spew"
)

var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Hash returns a hash key for the specified object. Objects containing
// maps are printed with sorted keys so that equal values always give
// equal keys.
func Hash(object interface{}) string {
	if s, ok := object.(fmt.Stringer); ok {
		return s.String()
	}
	h := fnv.New128a()
	if !containsMap(reflect.TypeOf(object), 0) {
		e := gob.NewEncoder(h)
		if err := e.Encode(object); err == nil {
			return fmt.Sprintf("%x", h.Sum(nil))
		}
		// gob fails on some values (e.g., NaN map keys); start over.
		h.Reset()
	}
	printer.Fprintf(h, "%#v", object)
	return fmt.Sprintf("%x", h.Sum(nil))
}

func containsMap(t reflect.Type, depth int) bool {
	if t == nil || depth > 8 {
		return false
	}
	switch t.Kind() {
	case reflect.Map:
		return true
	case reflect.Ptr, reflect.Slice, reflect.Array:
		return containsMap(t.Elem(), depth+1)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if containsMap(t.Field(i).Type, depth+1) {
				return true
			}
		}
	}
	return false
}

// Parameters returns a key for a set of named parameter values that does
// not depend on the order in which the names are given.
func Parameters(names []string, values []float64) string {
	if len(names) != len(values) {
		panic(fmt.Errorf("hash: %d names but %d values", len(names), len(values)))
	}
	idx := make([]int, len(names))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return names[idx[a]] < names[idx[b]] })
	h := fnv.New128a()
	var buf [8]byte
	for _, i := range idx {
		h.Write([]byte(names[i]))
		h.Write([]byte{0})
		bits := math.Float64bits(values[i])
		for k := range buf {
			buf[k] = byte(bits >> (8 * uint(k)))
		}
		h.Write(buf[:])
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
