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
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// float32s rounds x to single precision, the precision data
// variables are stored with.
func float32s(x []float64) []float64 {
	o := make([]float64, len(x))
	for i, v := range x {
		o[i] = float64(float32(v))
	}
	return o
}

func writeTestFile(t *testing.T, d *Dataset) string {
	path := filepath.Join(t.TempDir(), "test.nc")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadTestFile(t *testing.T, path string) *Dataset {
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	d, err := Load(f)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestWriteLoad(t *testing.T) {
	d := newTestDataset(t)
	d.Vars[IceThicknessVar].Attrs = map[string]string{"source": "ICESat-2"}
	r := loadTestFile(t, writeTestFile(t, d))

	if r.NX != d.NX || r.NY != d.NY {
		t.Fatalf("grid size: have %dx%d, want %dx%d", r.NX, r.NY, d.NX, d.NY)
	}
	if len(r.Time) != len(d.Time) {
		t.Fatalf("times: have %v, want %v", r.Time, d.Time)
	}
	for i := range d.Time {
		if !r.Time[i].Equal(d.Time[i]) {
			t.Errorf("time %d: have %v, want %v", i, r.Time[i], d.Time[i])
		}
	}
	if !reflect.DeepEqual(r.RegionMask, d.RegionMask) {
		t.Errorf("region mask: have %v, want %v", r.RegionMask, d.RegionMask)
	}
	if !reflect.DeepEqual(r.Catalogue, d.Catalogue) {
		t.Errorf("catalogue: have %+v, want %+v", r.Catalogue, d.Catalogue)
	}
	if !reflect.DeepEqual(r.Attrs, d.Attrs) {
		t.Errorf("attributes: have %v, want %v", r.Attrs, d.Attrs)
	}
	if !sameFloats(r.Latitude.Elements, float32s(d.Latitude.Elements)) {
		t.Errorf("latitude: have %v, want %v", r.Latitude.Elements, d.Latitude.Elements)
	}
	if !reflect.DeepEqual(r.VarNames(), d.VarNames()) {
		t.Fatalf("variables: have %v, want %v", r.VarNames(), d.VarNames())
	}
	for _, name := range d.VarNames() {
		have, want := r.Vars[name], d.Vars[name]
		if !reflect.DeepEqual(have.Dims, want.Dims) {
			t.Errorf("%s dims: have %v, want %v", name, have.Dims, want.Dims)
		}
		if have.LongName != want.LongName || have.Units != want.Units {
			t.Errorf("%s metadata: have %q %q, want %q %q", name, have.LongName, have.Units, want.LongName, want.Units)
		}
		if !sameFloats(have.Data.Elements, float32s(want.Data.Elements)) {
			t.Errorf("%s data: have %v, want %v", name, have.Data.Elements, want.Data.Elements)
		}
	}
	if r.Vars[IceThicknessVar].Attrs["source"] != "ICESat-2" {
		t.Errorf("variable attributes: have %v", r.Vars[IceThicknessVar].Attrs)
	}
	if !math.IsNaN(r.Vars[IceThicknessVar].Data.Elements[2]) {
		t.Error("missing values were not kept")
	}
}

func TestWriteLoadRestricted(t *testing.T) {
	o, _, err := new(RegionFilter).RestrictRegionally(newTestDataset(t), InnerArctic)
	if err != nil {
		t.Fatal(err)
	}
	r := loadTestFile(t, writeTestFile(t, o))
	if r.Attrs[RegionsAttr] != "Inner Arctic" {
		t.Errorf("summary: have %q", r.Attrs[RegionsAttr])
	}
	// A restricted file can be restricted again.
	if _, _, err := new(RegionFilter).RestrictRegionally(r, []int{13}); err != nil {
		t.Error(err)
	}
}

func TestWriteBadLabel(t *testing.T) {
	d := newTestDataset(t)
	d.Catalogue.Labels[0] = "a;b"
	f, err := os.Create(filepath.Join(t.TempDir(), "bad.nc"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := d.Write(f); err == nil {
		t.Error("labels containing the separator should not be written")
	}
}

func TestLoadTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunc.nc")
	if err := os.WriteFile(path, []byte("CDF\x01"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := Load(f); err == nil {
		t.Error("a truncated file should not load")
	}
}

func TestLoadedVarMissing(t *testing.T) {
	path := writeTestFile(t, newTestDataset(t))
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	d, err := Load(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Var("ice_type"); !errors.Is(err, ErrMissingField) {
		t.Errorf("have %v, want ErrMissingField", err)
	}
}

func TestWriteEveryVariable(t *testing.T) {
	d := newTestDataset(t)
	delete(d.Vars, ConcentrationVar)
	delete(d.Vars, IceThicknessVar)
	r := loadTestFile(t, writeTestFile(t, d))
	if len(r.Time) != 2 {
		t.Errorf("times: have %d, want 2", len(r.Time))
	}
	if !sameFloats(r.Vars["t2m"].Data.Elements, float32s(d.Vars["t2m"].Data.Elements)) {
		t.Errorf("t2m: have %v, want %v", r.Vars["t2m"].Data.Elements, d.Vars["t2m"].Data.Elements)
	}
	if !sameFloats(r.Longitude.Elements, float32s(d.Longitude.Elements)) {
		t.Errorf("longitude: have %v, want %v", r.Longitude.Elements, d.Longitude.Elements)
	}
}
