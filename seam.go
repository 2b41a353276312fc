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

package icegrid

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// SplitSeam splits v into two copies for contouring on the rotated
// polar grid, where contouring across the longitude discontinuity
// draws spurious lines. west keeps the cells with longitude less than
// meridian and east keeps the rest; all other cells are NaN.
// lon holds the cell longitudes, with the shape of one time step of v.
func SplitSeam(v *Variable, lon *sparse.DenseArray, meridian float64) (west, east *Variable, err error) {
	n := len(lon.Elements)
	if n == 0 || len(v.Data.Elements)%n != 0 {
		return nil, nil, fmt.Errorf("icegrid: longitude has %d cells but variable has %d values", n, len(v.Data.Elements))
	}
	west, east = v.Copy(), v.Copy()
	for i := range v.Data.Elements {
		l := lon.Elements[i%n]
		if math.IsNaN(l) || l >= meridian {
			west.Data.Elements[i] = math.NaN()
		}
		if math.IsNaN(l) || l < meridian {
			east.Data.Elements[i] = math.NaN()
		}
	}
	return west, east, nil
}
