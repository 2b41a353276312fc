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

// Package icegrid holds the polar stereographic sea ice dataset used in the
// ICESat-2 winter analysis and the operations performed on it: regional
// restriction by NSIDC region mask, gap filling, monthly regional means,
// and preparation of fields for contouring across the longitude seam.
package icegrid

// Version gives the version number.
const Version = "0.1.0"

// Names of the coordinate and special fields in a Dataset.
const (
	// RegionMaskVar is the per-cell NSIDC region identifier.
	RegionMaskVar = "region_mask"

	// ConcentrationVar is the monthly sea ice concentration. It is left
	// unmasked by regional restriction because it is used to compute
	// ice edge contours independently of the region selection.
	ConcentrationVar = "seaice_conc_monthly_cdr"

	LatitudeVar  = "latitude"
	LongitudeVar = "longitude"
	TimeVar      = "time"

	// RegionsAttr is the global attribute that records which regions
	// still hold data after regional restriction.
	RegionsAttr = "regions with data"
)

// Dimension names.
const (
	TimeDim = "time"
	XDim    = "x"
	YDim    = "y"
)
