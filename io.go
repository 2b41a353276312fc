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
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// labelSeparator separates region labels in the region_mask "labels"
// attribute, because netCDF classic attributes cannot hold lists
// of strings.
const labelSeparator = ";"

// timeUnits describes the values of the time variable.
const timeUnits = "days since 1970-01-01"

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// Load reads a dataset from a netCDF file.
func Load(rw cdf.ReaderWriterAt) (*Dataset, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("icegrid: opening dataset: %w", err)
	}
	h := f.Header

	shape := h.Lengths(LatitudeVar)
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, LatitudeVar)
	}
	days, err := readFloats(f, TimeVar)
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, len(days))
	for i, d := range days {
		times[i] = epoch.Add(time.Duration(math.Round(d*24)) * time.Hour)
	}

	d := NewDataset(shape[0], shape[1], times)
	for name, c := range map[string]*sparse.DenseArray{LatitudeVar: d.Latitude, LongitudeVar: d.Longitude} {
		vals, err := readFloats(f, name)
		if err != nil {
			return nil, err
		}
		if len(vals) != len(c.Elements) {
			return nil, fmt.Errorf("icegrid: %s has %d values; should be %d", name, len(vals), len(c.Elements))
		}
		copy(c.Elements, vals)
	}

	mask, err := readFloats(f, RegionMaskVar)
	if err != nil {
		return nil, err
	}
	if len(mask) != d.NumCells() {
		return nil, fmt.Errorf("icegrid: %s has %d values; should be %d", RegionMaskVar, len(mask), d.NumCells())
	}
	for i, v := range mask {
		d.RegionMask[i] = int(v)
	}
	if d.Catalogue, err = readCatalogue(h); err != nil {
		return nil, err
	}

	for _, a := range h.Attributes("") {
		if s, ok := h.GetAttribute("", a).(string); ok {
			d.Attrs[a] = s
		}
	}

	for _, name := range h.Variables() {
		switch name {
		case TimeVar, LatitudeVar, LongitudeVar, RegionMaskVar:
			continue
		}
		vals, err := readFloats(f, name)
		if err != nil {
			return nil, err
		}
		v := &Variable{
			Dims:  h.Dimensions(name),
			Attrs: make(map[string]string),
			Data:  sparse.ZerosDense(h.Lengths(name)...),
		}
		if len(vals) != len(v.Data.Elements) {
			return nil, fmt.Errorf("icegrid: variable %s has %d values; should be %d", name, len(vals), len(v.Data.Elements))
		}
		copy(v.Data.Elements, vals)
		for _, a := range h.Attributes(name) {
			s, ok := h.GetAttribute(name, a).(string)
			if !ok {
				continue
			}
			switch a {
			case "long_name":
				v.LongName = s
			case "units":
				v.Units = s
			default:
				v.Attrs[a] = s
			}
		}
		if err := d.AddVariable(name, v); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// readFloats reads all of the values of a numeric variable.
func readFloats(f *cdf.File, name string) ([]float64, error) {
	lengths := f.Header.Lengths(name)
	if len(lengths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	n := 1
	for _, l := range lengths {
		n *= l
	}
	r := f.Reader(name, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("icegrid: reading variable %s: %w", name, err)
	}
	o := make([]float64, n)
	switch b := buf.(type) {
	case []float32:
		for i, v := range b {
			o[i] = float64(v)
		}
	case []float64:
		copy(o, b)
	case []int32:
		for i, v := range b {
			o[i] = float64(v)
		}
	case []int16:
		for i, v := range b {
			o[i] = float64(v)
		}
	case []uint8:
		for i, v := range b {
			o[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("icegrid: variable %s has unsupported type %T", name, buf)
	}
	return o, nil
}

// readCatalogue reads the region catalogue from the region_mask
// attributes.
func readCatalogue(h *cdf.Header) (*RegionCatalogue, error) {
	keys, ok := h.GetAttribute(RegionMaskVar, "keys").([]int32)
	if !ok {
		return nil, fmt.Errorf("%w: %s keys attribute", ErrMissingField, RegionMaskVar)
	}
	labels, ok := h.GetAttribute(RegionMaskVar, "labels").(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s labels attribute", ErrMissingField, RegionMaskVar)
	}
	k := make([]int, len(keys))
	for i, v := range keys {
		k[i] = int(v)
	}
	var l []string
	if labels != "" {
		l = strings.Split(labels, labelSeparator)
	}
	return NewRegionCatalogue(k, l)
}

// Write writes d to netCDF file w. Data variables are written
// as 32-bit floats, in name order.
func (d *Dataset) Write(w *os.File) error {
	if err := d.Check(); err != nil {
		return err
	}
	if len(d.Time) == 0 {
		return fmt.Errorf("icegrid: cannot write a dataset with no time steps")
	}
	for _, l := range d.Catalogue.Labels {
		if strings.Contains(l, labelSeparator) {
			return fmt.Errorf("icegrid: region label %q contains %q", l, labelSeparator)
		}
	}
	h := cdf.NewHeader([]string{TimeDim, XDim, YDim}, []int{len(d.Time), d.NX, d.NY})

	attrNames := make([]string, 0, len(d.Attrs))
	for a := range d.Attrs {
		attrNames = append(attrNames, a)
	}
	sort.Strings(attrNames)
	for _, a := range attrNames {
		if d.Attrs[a] != "" {
			h.AddAttribute("", a, d.Attrs[a])
		}
	}

	h.AddVariable(TimeVar, []string{TimeDim}, []float64{0})
	h.AddAttribute(TimeVar, "units", timeUnits)
	h.AddVariable(LatitudeVar, []string{XDim, YDim}, []float32{0})
	h.AddAttribute(LatitudeVar, "units", "degrees_north")
	h.AddVariable(LongitudeVar, []string{XDim, YDim}, []float32{0})
	h.AddAttribute(LongitudeVar, "units", "degrees_east")
	h.AddVariable(RegionMaskVar, []string{XDim, YDim}, []int32{0})
	h.AddAttribute(RegionMaskVar, "description", "NSIDC region mask for the Arctic")
	keys := make([]int32, len(d.Catalogue.Keys))
	for i, k := range d.Catalogue.Keys {
		keys[i] = int32(k)
	}
	h.AddAttribute(RegionMaskVar, "keys", keys)
	h.AddAttribute(RegionMaskVar, "labels", strings.Join(d.Catalogue.Labels, labelSeparator))

	names := d.VarNames()
	for _, name := range names {
		v := d.Vars[name]
		h.AddVariable(name, v.Dims, []float32{0})
		if v.LongName != "" {
			h.AddAttribute(name, "long_name", v.LongName)
		}
		if v.Units != "" {
			h.AddAttribute(name, "units", v.Units)
		}
		attrs := make([]string, 0, len(v.Attrs))
		for a := range v.Attrs {
			if a != "long_name" && a != "units" && v.Attrs[a] != "" {
				attrs = append(attrs, a)
			}
		}
		sort.Strings(attrs)
		for _, a := range attrs {
			h.AddAttribute(name, a, v.Attrs[a])
		}
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return fmt.Errorf("icegrid: creating netcdf file: %w", err)
	}

	days := make([]float64, len(d.Time))
	for i, t := range d.Time {
		days[i] = t.Sub(epoch).Hours() / 24
	}
	if err := writeValues(f, TimeVar, days); err != nil {
		return err
	}
	if err := writeFloat32(f, LatitudeVar, d.Latitude.Elements); err != nil {
		return err
	}
	if err := writeFloat32(f, LongitudeVar, d.Longitude.Elements); err != nil {
		return err
	}
	mask := make([]int32, len(d.RegionMask))
	for i, r := range d.RegionMask {
		mask[i] = int32(r)
	}
	if err := writeValues(f, RegionMaskVar, mask); err != nil {
		return err
	}
	for _, name := range names {
		if err := writeFloat32(f, name, d.Vars[name].Data.Elements); err != nil {
			return err
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeFloat32(f *cdf.File, name string, data []float64) error {
	data32 := make([]float32, len(data))
	for i, e := range data {
		data32[i] = float32(e)
	}
	return writeValues(f, name, data32)
}

func writeValues(f *cdf.File, name string, data interface{}) error {
	end := f.Header.Lengths(name)
	w := f.Writer(name, make([]int, len(end)), end)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("icegrid: writing variable %s to netcdf file: %w", name, err)
	}
	return nil
}
