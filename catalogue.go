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
	"io"

	"github.com/BurntSushi/toml"
)

// RegionCatalogue is an ordered lookup table from region mask keys
// to region names. Keys[i] is labelled by Labels[i].
type RegionCatalogue struct {
	Keys   []int
	Labels []string
}

// NewRegionCatalogue creates a catalogue, checking that there is one
// label per key and that no key is repeated.
func NewRegionCatalogue(keys []int, labels []string) (*RegionCatalogue, error) {
	if len(keys) != len(labels) {
		return nil, fmt.Errorf("icegrid: region catalogue has %d keys but %d labels", len(keys), len(labels))
	}
	seen := make(map[int]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			return nil, fmt.Errorf("icegrid: region catalogue key %d is repeated", k)
		}
		seen[k] = struct{}{}
	}
	return &RegionCatalogue{
		Keys:   append([]int(nil), keys...),
		Labels: append([]string(nil), labels...),
	}, nil
}

// NSIDCCatalogue returns the NSIDC Arctic region mask catalogue
// (psn25, version 3).
func NSIDCCatalogue() *RegionCatalogue {
	c, err := NewRegionCatalogue(
		[]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 20, 21},
		[]string{
			"non-region oceans",
			"Sea of Okhotsk and Japan",
			"Bering Sea",
			"Hudson Bay",
			"Gulf of St. Lawrence",
			"Baffin Bay, Davis Strait & Labrador Sea",
			"Greenland Sea",
			"Barents Seas",
			"Kara Sea",
			"Laptev Sea",
			"East Siberian Sea",
			"Chukchi Sea",
			"Beaufort Sea",
			"Canadian Archipelago",
			"Arctic Ocean",
			"Land",
			"Coast",
		})
	if err != nil {
		panic(err)
	}
	return c
}

// Region keys with special handling.
const (
	CanadianArchipelago = 14
	Land                = 20
)

// InnerArctic lists the region keys that together make up the
// Inner Arctic: Laptev, East Siberian, Chukchi and Beaufort Seas and
// the Arctic Ocean.
var InnerArctic = []int{10, 11, 12, 13, 15}

// Len returns the number of regions in the catalogue.
func (c *RegionCatalogue) Len() int { return len(c.Keys) }

// Has returns whether key is in the catalogue.
func (c *RegionCatalogue) Has(key int) bool {
	return c.index(key) >= 0
}

// Label returns the label for key. ok is false if the key is not in
// the catalogue or has no label.
func (c *RegionCatalogue) Label(key int) (label string, ok bool) {
	i := c.index(key)
	if i < 0 || i >= len(c.Labels) {
		return "", false
	}
	return c.Labels[i], true
}

func (c *RegionCatalogue) index(key int) int {
	for i, k := range c.Keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Copy returns a deep copy of c.
func (c *RegionCatalogue) Copy() *RegionCatalogue {
	return &RegionCatalogue{
		Keys:   append([]int(nil), c.Keys...),
		Labels: append([]string(nil), c.Labels...),
	}
}

// ReadCatalogue reads a region catalogue in TOML format, e.g.:
//
//	[[region]]
//	key = 13
//	label = "Beaufort Sea"
func ReadCatalogue(r io.Reader) (*RegionCatalogue, error) {
	var f struct {
		Region []struct {
			Key   int    `toml:"key"`
			Label string `toml:"label"`
		} `toml:"region"`
	}
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("icegrid: reading region catalogue: %w", err)
	}
	if len(f.Region) == 0 {
		return nil, fmt.Errorf("icegrid: region catalogue has no regions")
	}
	keys := make([]int, len(f.Region))
	labels := make([]string, len(f.Region))
	for i, r := range f.Region {
		keys[i] = r.Key
		labels[i] = r.Label
	}
	return NewRegionCatalogue(keys, labels)
}
