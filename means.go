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
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Names of the gap-filled variables that monthly means are
// calculated from.
const (
	IceThicknessFilledVar    = IceThicknessVar + FilledSuffix
	IceThicknessUncFilledVar = "ice_thickness_unc" + FilledSuffix
	IceTypeFilledVar         = "ice_type" + FilledSuffix
)

// Ice type values.
const (
	FirstYearIce = 0
	MultiYearIce = 1
)

// MonthlyMean holds the regional mean sea ice state for one month.
// Thicknesses and uncertainty are in meters; percentages are 0-100.
// Values with no valid grid cells are NaN.
type MonthlyMean struct {
	Time time.Time

	Thickness    float64 // all ice types
	Uncertainty  float64
	MYIThickness float64 // multi-year ice
	FYIThickness float64 // first-year ice

	PercentMYI, PercentFYI float64
}

// MonthlyMeans calculates the mean ice thickness, thickness
// uncertainty, and ice type fractions over all of the grid cells
// with data at each time step of d. It is typically run on a dataset
// that has been gap filled and regionally restricted.
func MonthlyMeans(d *Dataset) ([]MonthlyMean, error) {
	thick, err := d.Var(IceThicknessFilledVar)
	if err != nil {
		return nil, err
	}
	unc, err := d.Var(IceThicknessUncFilledVar)
	if err != nil {
		return nil, err
	}
	iceType, err := d.Var(IceTypeFilledVar)
	if err != nil {
		return nil, err
	}
	n := d.NumCells()
	o := make([]MonthlyMean, len(d.Time))
	for t, tt := range d.Time {
		th := thick.Data.Elements[t*n : (t+1)*n]
		ty := iceType.Data.Elements[t*n : (t+1)*n]
		var all, myi, fyi []float64
		for i, v := range th {
			if math.IsNaN(v) {
				continue
			}
			all = append(all, v)
			switch ty[i] {
			case MultiYearIce:
				myi = append(myi, v)
			case FirstYearIce:
				fyi = append(fyi, v)
			}
		}
		o[t] = MonthlyMean{
			Time:         tt,
			Thickness:    mean(all),
			Uncertainty:  mean(valid(unc.Data.Elements[t*n : (t+1)*n])),
			MYIThickness: mean(myi),
			FYIThickness: mean(fyi),
			PercentMYI:   percent(len(myi), len(all)),
			PercentFYI:   percent(len(fyi), len(all)),
		}
	}
	return o, nil
}

func valid(x []float64) []float64 {
	var o []float64
	for _, v := range x {
		if !math.IsNaN(v) {
			o = append(o, v)
		}
	}
	return o
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}

func percent(n, total int) float64 {
	if total == 0 {
		return math.NaN()
	}
	return 100 * float64(n) / float64(total)
}
