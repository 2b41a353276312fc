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
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ctessum/sparse"
)

// ErrMissingField is returned when a Dataset lacks a field that an
// operation requires.
var ErrMissingField = errors.New("icegrid: missing field")

// Variable is a gridded data field.
type Variable struct {
	// Dims holds the dimension names, either [time x y] or [x y].
	Dims []string

	LongName string
	Units    string

	// Attrs holds any other descriptive attributes.
	Attrs map[string]string

	Data *sparse.DenseArray
}

// Copy returns a deep copy of v.
func (v *Variable) Copy() *Variable {
	o := &Variable{
		Dims:     append([]string(nil), v.Dims...),
		LongName: v.LongName,
		Units:    v.Units,
		Attrs:    copyAttrs(v.Attrs),
	}
	if v.Data != nil {
		o.Data = copyDense(v.Data)
	}
	return o
}

// timeVarying returns whether v has a time dimension.
func (v *Variable) timeVarying() bool {
	return len(v.Dims) == 3 && v.Dims[0] == TimeDim
}

// Dataset is a set of gridded fields on the polar stereographic grid.
// All fields share the x and y dimensions; time varying fields also
// share the time dimension.
type Dataset struct {
	NX, NY int

	// Time holds the first day of each month in the dataset.
	Time []time.Time

	// Latitude and Longitude are the cell center coordinates
	// with shape [NX, NY].
	Latitude, Longitude *sparse.DenseArray

	// RegionMask holds the NSIDC region key of each grid
	// cell, in row-major (x, y) order.
	RegionMask []int

	// Catalogue describes the keys used in RegionMask.
	Catalogue *RegionCatalogue

	// Vars holds the data variables.
	Vars map[string]*Variable

	// Attrs holds global descriptive attributes.
	Attrs map[string]string
}

// NewDataset returns an empty dataset with nx by ny grid cells and the
// given time steps.
func NewDataset(nx, ny int, times []time.Time) *Dataset {
	return &Dataset{
		NX:         nx,
		NY:         ny,
		Time:       append([]time.Time(nil), times...),
		Latitude:   sparse.ZerosDense(nx, ny),
		Longitude:  sparse.ZerosDense(nx, ny),
		RegionMask: make([]int, nx*ny),
		Vars:       make(map[string]*Variable),
		Attrs:      make(map[string]string),
	}
}

// NumCells returns the number of horizontal grid cells.
func (d *Dataset) NumCells() int { return d.NX * d.NY }

// AddVariable adds v to d under the given name, checking that its
// dimensions and shape match the dataset.
func (d *Dataset) AddVariable(name string, v *Variable) error {
	switch name {
	case RegionMaskVar, LatitudeVar, LongitudeVar, TimeVar:
		return fmt.Errorf("icegrid: %s is a coordinate, not a data variable", name)
	}
	if v.Data == nil {
		return fmt.Errorf("icegrid: variable %s has no data", name)
	}
	want := []int{d.NX, d.NY}
	wantDims := []string{XDim, YDim}
	if len(v.Dims) == 3 {
		want = []int{len(d.Time), d.NX, d.NY}
		wantDims = []string{TimeDim, XDim, YDim}
	}
	if !equalStrings(v.Dims, wantDims) {
		return fmt.Errorf("icegrid: variable %s has dimensions %v; should be %v", name, v.Dims, wantDims)
	}
	if !equalInts(v.Data.Shape, want) {
		return fmt.Errorf("icegrid: variable %s has shape %v; should be %v", name, v.Data.Shape, want)
	}
	d.Vars[name] = v
	return nil
}

// Var returns the named variable or an error wrapping ErrMissingField.
func (d *Dataset) Var(name string) (*Variable, error) {
	v, ok := d.Vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	return v, nil
}

// VarNames returns the names of the data variables in sorted order.
func (d *Dataset) VarNames() []string {
	names := make([]string, 0, len(d.Vars))
	for n := range d.Vars {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of d. Nothing in the copy is shared
// with the receiver.
func (d *Dataset) Clone() *Dataset {
	o := &Dataset{
		NX:         d.NX,
		NY:         d.NY,
		Time:       append([]time.Time(nil), d.Time...),
		RegionMask: append([]int(nil), d.RegionMask...),
		Vars:       make(map[string]*Variable, len(d.Vars)),
		Attrs:      copyAttrs(d.Attrs),
	}
	if d.Latitude != nil {
		o.Latitude = copyDense(d.Latitude)
	}
	if d.Longitude != nil {
		o.Longitude = copyDense(d.Longitude)
	}
	if d.Catalogue != nil {
		o.Catalogue = d.Catalogue.Copy()
	}
	for n, v := range d.Vars {
		o.Vars[n] = v.Copy()
	}
	if o.Attrs == nil {
		o.Attrs = make(map[string]string)
	}
	return o
}

// Check makes sure the coordinate fields are consistent with the
// grid size.
func (d *Dataset) Check() error {
	if d.NX <= 0 || d.NY <= 0 {
		return fmt.Errorf("icegrid: invalid grid size %dx%d", d.NX, d.NY)
	}
	for name, c := range map[string]*sparse.DenseArray{LatitudeVar: d.Latitude, LongitudeVar: d.Longitude} {
		if c == nil {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
		if !equalInts(c.Shape, []int{d.NX, d.NY}) {
			return fmt.Errorf("icegrid: %s has shape %v; should be [%d %d]", name, c.Shape, d.NX, d.NY)
		}
	}
	if len(d.RegionMask) != d.NumCells() {
		return fmt.Errorf("icegrid: region mask has %d cells; should be %d", len(d.RegionMask), d.NumCells())
	}
	if d.Catalogue == nil {
		return fmt.Errorf("%w: %s catalogue", ErrMissingField, RegionMaskVar)
	}
	return nil
}

func copyDense(a *sparse.DenseArray) *sparse.DenseArray {
	o := sparse.ZerosDense(append([]int(nil), a.Shape...)...)
	copy(o.Elements, a.Elements)
	return o
}

func copyAttrs(a map[string]string) map[string]string {
	if a == nil {
		return nil
	}
	o := make(map[string]string, len(a))
	for k, v := range a {
		o[k] = v
	}
	return o
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
