/*
Copyright © 2022 the stokes authors.
This file is part of stokes.

stokes is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

stokes is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with stokes.  If not, see <http://www.gnu.org/licenses/>.
*/

package stokes

import (
	"testing"
	"time"
)

func TestNoMatchErrorMessage(t *testing.T) {
	target := time.Date(2014, 9, 10, 12, 0, 0, 0, time.FixedZone("HST", -10*3600))
	for _, test := range []struct {
		err  *NoMatchError
		want string
	}{
		{
			err:  &NoMatchError{},
			want: "stokes: no data available",
		},
		{
			err:  &NoMatchError{Target: target},
			want: "stokes: no data available near 2014-09-10T22:00:00Z",
		},
		{
			err:  &NoMatchError{Product: ProductSPLevel1, Dir: "data/sp"},
			want: "stokes: no " + ProductSPLevel1 + " data available in data/sp",
		},
		{
			err:  &NoMatchError{Product: ProductHMIStokes, Dir: "data/hmi", Target: target},
			want: "stokes: no " + ProductHMIStokes + " data available near 2014-09-10T22:00:00Z in data/hmi",
		},
	} {
		if have := test.err.Error(); have != test.want {
			t.Errorf("have %q, want %q", have, test.want)
		}
	}
}
