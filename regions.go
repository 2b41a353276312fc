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
	"strings"

	"github.com/sirupsen/logrus"
)

// WarningKind identifies a class of non-fatal condition.
type WarningKind int

// Warning kinds.
const (
	// EmptySelectionWarning means that no regions were selected, so
	// every masked variable will be entirely missing.
	EmptySelectionWarning WarningKind = iota + 1
)

func (k WarningKind) String() string {
	switch k {
	case EmptySelectionWarning:
		return "EmptySelectionWarning"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// Warning is a non-fatal condition encountered during an operation.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string { return w.Kind.String() + ": " + w.Message }

// InvalidArgumentTypeError is returned when region keys are not given
// as a list.
type InvalidArgumentTypeError struct {
	Value interface{}
}

func (e *InvalidArgumentTypeError) Error() string {
	return fmt.Sprintf("icegrid: region keys must be a list of integers, "+
		"for example [13] or [10, 11, 12, 13, 15], but got %T (%v)", e.Value, e.Value)
}

// UnknownRegionKeyError is returned when a requested region key is not
// in the region catalogue.
type UnknownRegionKeyError struct {
	Key int
}

func (e *UnknownRegionKeyError) Error() string {
	return fmt.Sprintf("icegrid: region key %d is not in the region catalogue", e.Key)
}

// InternalInconsistencyError is returned when a region key passes
// validation but has no label, which means the catalogue is malformed.
type InternalInconsistencyError struct {
	Key int
}

func (e *InternalInconsistencyError) Error() string {
	return fmt.Sprintf("icegrid: region catalogue has key %d but no label for it", e.Key)
}

// RegionKeys converts a loosely typed value, such as one read from a
// configuration file or decoded from JSON, to a list of region keys.
// Only ordered sequences of integers are accepted; scalars, strings,
// maps and sets result in an *InvalidArgumentTypeError.
func RegionKeys(v interface{}) ([]int, error) {
	switch s := v.(type) {
	case []int:
		return append([]int{}, s...), nil
	case []int32:
		o := make([]int, len(s))
		for i, k := range s {
			o[i] = int(k)
		}
		return o, nil
	case []int64:
		o := make([]int, len(s))
		for i, k := range s {
			o[i] = int(k)
		}
		return o, nil
	case []interface{}:
		o := make([]int, len(s))
		for i, e := range s {
			k, ok := integer(e)
			if !ok {
				return nil, &InvalidArgumentTypeError{Value: v}
			}
			o[i] = k
		}
		return o, nil
	default:
		return nil, &InvalidArgumentTypeError{Value: v}
	}
}

func integer(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// RegionFilter restricts datasets to a subset of the NSIDC regions.
type RegionFilter struct {
	// Log receives the summary of each restriction and any warnings.
	// If nil, the logrus standard logger is used.
	Log logrus.FieldLogger
}

func (f *RegionFilter) logger() logrus.FieldLogger {
	if f == nil || f.Log == nil {
		return logrus.StandardLogger()
	}
	return f.Log
}

// RestrictRegionally returns a copy of d where every data variable
// except the sea ice concentration is missing (NaN) in grid cells whose
// region mask value is not in keys. The global attribute RegionsAttr of
// the copy describes the regions that were kept. d is not modified.
//
// All keys must be in the catalogue of d. An empty list of keys is
// allowed, but results in an EmptySelectionWarning because all data
// will be removed.
func (f *RegionFilter) RestrictRegionally(d *Dataset, keys []int) (*Dataset, []Warning, error) {
	if d.Catalogue == nil {
		return nil, nil, fmt.Errorf("%w: %s catalogue", ErrMissingField, RegionMaskVar)
	}
	if _, ok := d.Vars[ConcentrationVar]; !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingField, ConcentrationVar)
	}
	if len(d.RegionMask) != d.NumCells() {
		return nil, nil, fmt.Errorf("icegrid: region mask has %d cells; should be %d", len(d.RegionMask), d.NumCells())
	}
	for _, k := range keys {
		if !d.Catalogue.Has(k) {
			return nil, nil, &UnknownRegionKeyError{Key: k}
		}
	}
	log := f.logger()

	var warnings []Warning
	if len(keys) == 0 {
		w := Warning{
			Kind:    EmptySelectionWarning,
			Message: "the region key list is empty, so all data will be removed",
		}
		log.Warn(w.String())
		warnings = append(warnings, w)
	}

	labels := make([]string, len(keys))
	for i, k := range keys {
		l, ok := d.Catalogue.Label(k)
		if !ok {
			return nil, nil, &InternalInconsistencyError{Key: k}
		}
		labels[i] = l
	}
	summary := regionSummary(d.Catalogue, keys, labels)

	o := d.Clone()
	keep := o.inRegions(keys)
	for name, v := range o.Vars {
		if name == ConcentrationVar {
			continue
		}
		maskCells(v, keep)
	}
	o.Attrs[RegionsAttr] = summary

	log.WithFields(logrus.Fields{
		"keys":    keys,
		"regions": summary,
	}).Info("restricted dataset to regions")
	return o, warnings, nil
}

// inRegions returns, for each grid cell, whether its region mask
// value is one of keys.
func (d *Dataset) inRegions(keys []int) []bool {
	set := make(map[int]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	keep := make([]bool, len(d.RegionMask))
	for i, r := range d.RegionMask {
		_, keep[i] = set[r]
	}
	return keep
}

// maskCells sets every element of v in a grid cell where keep is false
// to NaN. keep is indexed by horizontal grid cell; time varying
// variables are masked at every time step.
func maskCells(v *Variable, keep []bool) {
	n := len(keep)
	for i := range v.Data.Elements {
		if !keep[i%n] {
			v.Data.Elements[i] = math.NaN()
		}
	}
}

// regionSummary describes the selected regions: "All" if every
// catalogued region is selected, "Inner Arctic" for that combination,
// and otherwise the labels in selection order.
func regionSummary(c *RegionCatalogue, keys []int, labels []string) string {
	selected := make(map[int]struct{}, len(keys))
	for _, k := range keys {
		selected[k] = struct{}{}
	}
	all := true
	for _, k := range c.Keys {
		if _, ok := selected[k]; !ok {
			all = false
			break
		}
	}
	if all {
		return "All"
	}
	if len(selected) == len(InnerArctic) {
		inner := true
		for _, k := range InnerArctic {
			if _, ok := selected[k]; !ok {
				inner = false
				break
			}
		}
		if inner {
			return "Inner Arctic"
		}
	}
	return strings.Join(labels, ", ")
}
