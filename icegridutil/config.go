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

package icegridutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/icegrid"
)

// regionKeys converts the Regions configuration value to a list of
// region keys. Values set from the command line or environment are
// strings and are decoded as JSON, so "[13]" is a valid list but "13"
// is not.
func regionKeys(v interface{}) ([]int, error) {
	if s, ok := v.(string); ok {
		var d interface{}
		if err := json.Unmarshal([]byte(s), &d); err != nil {
			return nil, &icegrid.InvalidArgumentTypeError{Value: s}
		}
		v = d
	}
	return icegrid.RegionKeys(v)
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`icegrid: you need to specify an output file configuration variable (for example: OutputFile="output.nc")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("icegrid: the OutputFile directory doesn't exist: %w", err)
	}
	return f, nil
}

// loadDataset reads the dataset in inputFile. If catalogueFile is not
// empty, the region catalogue in it replaces the one in the dataset.
func loadDataset(inputFile, catalogueFile string) (*icegrid.Dataset, error) {
	if inputFile == "" {
		return nil, fmt.Errorf(`icegrid: you need to specify an input file configuration variable (for example: InputFile="icesat2_winter.nc")`)
	}
	f, err := os.Open(os.ExpandEnv(inputFile))
	if err != nil {
		return nil, fmt.Errorf("icegrid: opening InputFile: %w", err)
	}
	defer f.Close()
	d, err := icegrid.Load(f)
	if err != nil {
		return nil, err
	}
	if catalogueFile != "" {
		if d.Catalogue, err = readCatalogue(os.ExpandEnv(catalogueFile)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func readCatalogue(path string) (*icegrid.RegionCatalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("icegrid: opening RegionCatalogue: %w", err)
	}
	defer f.Close()
	return icegrid.ReadCatalogue(f)
}

// catalogue returns the region catalogue in catalogueFile if it is
// specified, and otherwise the one in inputFile.
func catalogue(inputFile, catalogueFile string) (*icegrid.RegionCatalogue, error) {
	if catalogueFile != "" {
		return readCatalogue(catalogueFile)
	}
	d, err := loadDataset(inputFile, "")
	if err != nil {
		return nil, err
	}
	return d.Catalogue, nil
}

// writeDataset writes d to a new netCDF file at path. The file is
// written under a temporary name and only moved to path once it is
// complete, so a failed write leaves nothing at path.
func writeDataset(d *icegrid.Dataset, path string) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("icegrid: creating OutputFile: %w", err)
	}
	if err := f.Chmod(0644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("icegrid: creating OutputFile: %w", err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("icegrid: closing OutputFile: %w", err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("icegrid: moving OutputFile into place: %w", err)
	}
	return nil
}

// Means restricts d to the regions in keys and calculates monthly
// means. If startYear or endYear is not zero, only the winter months
// from November of startYear to April of endYear are included. It
// returns the means and a description of the regions.
func Means(d *icegrid.Dataset, keys []int, startYear, endYear int, log logrus.FieldLogger) ([]icegrid.MonthlyMean, string, error) {
	o, _, err := (&icegrid.RegionFilter{Log: log}).RestrictRegionally(d, keys)
	if err != nil {
		return nil, "", err
	}
	if startYear != 0 || endYear != 0 {
		if endYear <= startYear {
			return nil, "", fmt.Errorf("icegrid: WinterEnd (%d) must be after WinterStart (%d)", endYear, startYear)
		}
		if o, err = o.SelectTimes(icegrid.WinterMonths(startYear, endYear)); err != nil {
			return nil, "", err
		}
	}
	means, err := icegrid.MonthlyMeans(o)
	if err != nil {
		return nil, "", err
	}
	return means, o.Attrs[icegrid.RegionsAttr], nil
}
