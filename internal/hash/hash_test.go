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

package hash

import "testing"

type request struct {
	Series string
	Files  []string
	Params map[string]int
}

func TestKey(t *testing.T) {
	a := request{Series: "hmi.S_720s", Files: []string{"a", "b"}, Params: map[string]int{"x": 1, "y": 2}}
	b := request{Series: "hmi.S_720s", Files: []string{"a", "b"}, Params: map[string]int{"y": 2, "x": 1}}
	c := request{Series: "hmi.ME_720s_fd10", Files: []string{"a", "b"}}

	if Key(a) != Key(b) {
		t.Errorf("equal values have different keys: %s != %s", Key(a), Key(b))
	}
	if Key(a) == Key(c) {
		t.Errorf("different values share key %s", Key(a))
	}
	if len(Key(a)) != 16 {
		t.Errorf("key %q has length %d; want 16", Key(a), len(Key(a)))
	}
}
