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

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/sirupsen/logrus"
)

// ConcentrationThreshold is the sea ice concentration at or below
// which a grid cell is considered open water.
const ConcentrationThreshold = 0.15

// FilledSuffix is appended to the name of a variable to name its
// gap-filled version.
const FilledSuffix = "_filled"

// IceThicknessVar is the name of the sea ice thickness variable.
const IceThicknessVar = "ice_thickness"

// Filler fills in grid cells where monthly data is missing using
// the value of the nearest grid cell.
type Filler struct {
	// Log receives progress messages. If nil, the logrus standard
	// logger is used.
	Log logrus.FieldLogger
}

func (f *Filler) logger() logrus.FieldLogger {
	if f == nil || f.Log == nil {
		return logrus.StandardLogger()
	}
	return f.Log
}

// Fill returns a copy of d with a gap-filled version of each of the
// named time varying variables added under the variable name plus
// FilledSuffix.
//
// A cell is filled if it is missing, it is neither land nor in the
// Canadian Archipelago, and its sea ice concentration is above
// ConcentrationThreshold. It takes the value of the nearest
// cell (by grid distance) that has data. Ice
// thickness is first set to zero wherever the concentration is at or
// below ConcentrationThreshold.
//
// Distances are measured between grid indices, not longitude and
// latitude, so near the pole and the antimeridian the chosen cell can
// differ from a nearest neighbour search in (lon, lat).
func (f *Filler) Fill(d *Dataset, vars ...string) (*Dataset, error) {
	conc, err := d.Var(ConcentrationVar)
	if err != nil {
		return nil, err
	}
	if !conc.timeVarying() {
		return nil, fmt.Errorf("icegrid: %s must vary in time", ConcentrationVar)
	}
	if len(d.RegionMask) != d.NumCells() {
		return nil, fmt.Errorf("icegrid: region mask has %d cells; should be %d", len(d.RegionMask), d.NumCells())
	}
	log := f.logger()
	n := d.NumCells()

	o := d.Clone()
	for _, name := range vars {
		v, err := d.Var(name)
		if err != nil {
			return nil, err
		}
		if !v.timeVarying() {
			return nil, fmt.Errorf("icegrid: cannot fill %s because it does not vary in time", name)
		}
		filled := v.Copy()
		if filled.Attrs == nil {
			filled.Attrs = make(map[string]string)
		}
		filled.Attrs["note"] = "interpolated from original data"

		var total int
		for t := range d.Time {
			vals := filled.Data.Elements[t*n : (t+1)*n]
			c := conc.Data.Elements[t*n : (t+1)*n]
			if name == IceThicknessVar {
				for i := range vals {
					if c[i] <= ConcentrationThreshold {
						vals[i] = 0
					}
				}
			}
			total += fillNearest(vals, c, d.RegionMask, d.NX, d.NY)
		}
		o.Vars[name+FilledSuffix] = filled
		log.WithFields(logrus.Fields{
			"variable": name,
			"cells":    total,
		}).Info("filled missing grid cells")
	}
	return o, nil
}

// gridPoint is a grid cell center in index space.
type gridPoint struct {
	geom.Point
	index int
	value float64
}

// fillNearest fills the cells of vals that need filling with the
// value of the nearest cell with data and returns the number of cells
// filled.
func fillNearest(vals, conc []float64, mask []int, nx, ny int) int {
	var targets []int
	var sources int
	tree := rtree.NewTree(25, 50)
	for i, v := range vals {
		if !math.IsNaN(v) {
			tree.Insert(&gridPoint{
				Point: geom.Point{X: float64(i / ny), Y: float64(i % ny)},
				index: i,
				value: v,
			})
			sources++
		} else if mask[i] != Land && mask[i] != CanadianArchipelago && conc[i] > ConcentrationThreshold {
			targets = append(targets, i)
		}
	}
	if len(targets) == 0 || sources == 0 {
		return 0
	}
	limit := float64(nx + ny)
	out := make([]float64, len(targets))
	for j, i := range targets {
		p := geom.Point{X: float64(i / ny), Y: float64(i % ny)}
		out[j] = nearest(tree, p, limit).value
	}
	// Sources must not include cells filled in this pass.
	for j, i := range targets {
		vals[i] = out[j]
	}
	return len(targets)
}

// nearest returns the point in tree closest to p, breaking ties by
// grid index. The search box is doubled until it contains a point;
// then a final search with the distance to that point as the radius
// makes sure no closer point lies outside the box.
func nearest(tree *rtree.Rtree, p geom.Point, limit float64) *gridPoint {
	for r := 1.0; r <= 2*limit; r *= 2 {
		found := tree.SearchIntersect(box(p, r))
		if len(found) == 0 {
			continue
		}
		best := closest(found, p)
		dist := distance(best.Point, p)
		if dist > r {
			best = closest(tree.SearchIntersect(box(p, dist)), p)
		}
		return best
	}
	return &gridPoint{value: math.NaN()}
}

func box(p geom.Point, r float64) *geom.Bounds {
	const pad = 0.5
	return &geom.Bounds{
		Min: geom.Point{X: p.X - r - pad, Y: p.Y - r - pad},
		Max: geom.Point{X: p.X + r + pad, Y: p.Y + r + pad},
	}
}

func closest(found []geom.Geom, p geom.Point) *gridPoint {
	var best *gridPoint
	bestDist := math.Inf(1)
	for _, g := range found {
		gp := g.(*gridPoint)
		dist := distance(gp.Point, p)
		if dist < bestDist || (dist == bestDist && gp.index < best.index) {
			best, bestDist = gp, dist
		}
	}
	return best
}

func distance(a, b geom.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
