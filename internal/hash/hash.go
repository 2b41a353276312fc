/*
Copyright © 2020 the IceGrid authors.
This file is part of IceGrid.

IceGrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

IceGrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with IceGrid.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package hash computes content fingerprints of gridded data, so that
// datasets can be compared across runs without keeping copies.
package hash

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/davecgh/go-spew/spew"
)

// Hash returns a hash key for the specified object. Map keys are
// sorted, so equal objects have equal keys.
func Hash(object interface{}) string {
	if s, ok := object.(fmt.Stringer); ok {
		return s.String()
	}
	h := fnv.New128a()
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(h, "%#v", object)
	bKey := h.Sum([]byte{})
	return fmt.Sprintf("%x", bKey[0:h.Size()])
}

// Floats returns a hash key for the values in x. All NaN values
// are treated as equal.
func Floats(x []float64) string {
	h := fnv.New128a()
	b := make([]byte, 8)
	for _, v := range x {
		bits := math.Float64bits(v)
		if math.IsNaN(v) {
			bits = math.Float64bits(math.NaN())
		}
		for i := range b {
			b[i] = byte(bits >> (8 * uint(i)))
		}
		h.Write(b)
	}
	bKey := h.Sum([]byte{})
	return fmt.Sprintf("%x", bKey[0:h.Size()])
}
