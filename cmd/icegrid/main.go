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

// Command icegrid is a command-line interface for working with gridded
// Arctic sea ice datasets.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/icegrid/icegridutil"
)

func main() {
	if err := icegridutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
