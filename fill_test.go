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
	"math"
	"testing"
	"time"

	"github.com/ctessum/sparse"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// newFillDataset returns a 3x3, single time step dataset where
// every cell is in the Laptev Sea and has 90% ice cover.
func newFillDataset(t *testing.T, thickness []float64) *Dataset {
	d := NewDataset(3, 3, []time.Time{time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)})
	d.Catalogue = NSIDCCatalogue()
	conc := sparse.ZerosDense(1, 3, 3)
	thick := sparse.ZerosDense(1, 3, 3)
	for i := range d.RegionMask {
		d.RegionMask[i] = 10
		conc.Elements[i] = 0.9
	}
	copy(thick.Elements, thickness)
	if err := d.AddVariable(ConcentrationVar, &Variable{Dims: []string{TimeDim, XDim, YDim}, Data: conc}); err != nil {
		t.Fatal(err)
	}
	if err := d.AddVariable(IceThicknessVar, &Variable{Dims: []string{TimeDim, XDim, YDim}, Data: thick}); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestFill(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		in     []float64
		modify func(d *Dataset)
		want   []float64
	}{
		{
			name: "center",
			in:   []float64{1, 2, 3, 4, nan, 6, 7, 8, 9},
			want: []float64{1, 2, 3, 4, 2, 6, 7, 8, 9},
		},
		{
			// Filled cells are not used as sources.
			name: "adjacent",
			in:   []float64{1, 2, 3, 4, nan, nan, 7, 8, 9},
			want: []float64{1, 2, 3, 4, 2, 3, 7, 8, 9},
		},
		{
			name:   "land",
			in:     []float64{1, 2, 3, 4, nan, 6, 7, 8, 9},
			modify: func(d *Dataset) { d.RegionMask[4] = Land },
			want:   []float64{1, 2, 3, 4, nan, 6, 7, 8, 9},
		},
		{
			name:   "canadian archipelago",
			in:     []float64{1, 2, 3, 4, nan, 6, 7, 8, 9},
			modify: func(d *Dataset) { d.RegionMask[4] = CanadianArchipelago },
			want:   []float64{1, 2, 3, 4, nan, 6, 7, 8, 9},
		},
		{
			name: "open water",
			in:   []float64{1, 2, 3, 4, nan, 6, 7, 8, 9},
			modify: func(d *Dataset) {
				d.Vars[ConcentrationVar].Data.Elements[4] = 0.1
				d.Vars[ConcentrationVar].Data.Elements[8] = ConcentrationThreshold
			},
			want: []float64{1, 2, 3, 4, 0, 6, 7, 8, 0},
		},
		{
			name: "far",
			in:   []float64{nan, nan, nan, nan, nan, nan, nan, nan, 5},
			want: []float64{5, 5, 5, 5, 5, 5, 5, 5, 5},
		},
		{
			name: "nothing to fill from",
			in:   []float64{nan, nan, nan, nan, nan, nan, nan, nan, nan},
			want: []float64{nan, nan, nan, nan, nan, nan, nan, nan, nan},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := newFillDataset(t, test.in)
			if test.modify != nil {
				test.modify(d)
			}
			log, _ := logtest.NewNullLogger()
			o, err := (&Filler{Log: log}).Fill(d, IceThicknessVar)
			if err != nil {
				t.Fatal(err)
			}
			v, err := o.Var(IceThicknessFilledVar)
			if err != nil {
				t.Fatal(err)
			}
			if !sameFloats(v.Data.Elements, test.want) {
				t.Errorf("have %v, want %v", v.Data.Elements, test.want)
			}
			if v.Attrs["note"] != "interpolated from original data" {
				t.Errorf("note: have %q", v.Attrs["note"])
			}
			if !sameFloats(o.Vars[IceThicknessVar].Data.Elements, test.in) {
				t.Error("the original variable should not change")
			}
			if !sameFloats(d.Vars[IceThicknessVar].Data.Elements, test.in) {
				t.Error("input was modified")
			}
		})
	}
}

func TestFillOtherVariable(t *testing.T) {
	nan := math.NaN()
	d := newFillDataset(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	iceType := sparse.ZerosDense(1, 3, 3)
	copy(iceType.Elements, []float64{1, 1, 0, 0, nan, 0, nan, 1, 1})
	if err := d.AddVariable("ice_type", &Variable{Dims: []string{TimeDim, XDim, YDim}, Data: iceType}); err != nil {
		t.Fatal(err)
	}
	d.Vars[ConcentrationVar].Data.Elements[6] = 0

	log, hook := logtest.NewNullLogger()
	o, err := (&Filler{Log: log}).Fill(d, "ice_type")
	if err != nil {
		t.Fatal(err)
	}
	// Only ice thickness is zeroed in open water.
	want := []float64{1, 1, 0, 0, 1, 0, nan, 1, 1}
	if !sameFloats(o.Vars[IceTypeFilledVar].Data.Elements, want) {
		t.Errorf("have %v, want %v", o.Vars[IceTypeFilledVar].Data.Elements, want)
	}
	e := hook.LastEntry()
	if e == nil || e.Data["cells"] != 1 || e.Data["variable"] != "ice_type" {
		t.Errorf("log entry: %+v", e)
	}
}

func TestFillErrors(t *testing.T) {
	d := newFillDataset(t, make([]float64, 9))
	if _, err := new(Filler).Fill(d, "missing"); !errors.Is(err, ErrMissingField) {
		t.Errorf("missing variable: have %v", err)
	}
	if err := d.AddVariable("static", &Variable{Dims: []string{XDim, YDim}, Data: sparse.ZerosDense(3, 3)}); err != nil {
		t.Fatal(err)
	}
	if _, err := new(Filler).Fill(d, "static"); err == nil {
		t.Error("variables without a time dimension should not be filled")
	}
	delete(d.Vars, ConcentrationVar)
	if _, err := new(Filler).Fill(d, IceThicknessVar); !errors.Is(err, ErrMissingField) {
		t.Errorf("missing concentration: have %v", err)
	}
}
