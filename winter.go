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
	"time"

	"github.com/ctessum/sparse"
)

// WinterMonths returns the first day of each winter month (November
// through April) for the winters starting in startYear up to but not
// including endYear. For example, WinterMonths(2018, 2020) covers
// November 2018 to April 2019 and November 2019 to April 2020.
func WinterMonths(startYear, endYear int) []time.Time {
	var o []time.Time
	for y := startYear; y < endYear; y++ {
		for m := 0; m < 6; m++ {
			o = append(o, time.Date(y, time.November+time.Month(m), 1, 0, 0, 0, 0, time.UTC))
		}
	}
	return o
}

// SelectTimes returns a copy of d holding only the given time steps,
// in the given order.
func (d *Dataset) SelectTimes(times []time.Time) (*Dataset, error) {
	idx := make([]int, len(times))
	for i, t := range times {
		idx[i] = -1
		for j, dt := range d.Time {
			if dt.Equal(t) {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			return nil, fmt.Errorf("icegrid: time %s is not in the dataset", t.Format("2006-01"))
		}
	}

	o := d.Clone()
	o.Time = append([]time.Time(nil), times...)
	n := d.NumCells()
	for name, v := range d.Vars {
		if !v.timeVarying() {
			continue
		}
		data := sparse.ZerosDense(len(times), d.NX, d.NY)
		for i, j := range idx {
			copy(data.Elements[i*n:(i+1)*n], v.Data.Elements[j*n:(j+1)*n])
		}
		o.Vars[name].Data = data
	}
	return o, nil
}
