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
	"fmt"
	"sort"
)

// Header holds the metadata keywords of a decoded image, keyed by
// upper-case keyword name. Values are float64, int, int64, bool or string.
type Header map[string]interface{}

// Has returns whether keyword key is present.
func (h Header) Has(key string) bool {
	_, ok := h[key]
	return ok
}

// Float returns the numeric value of keyword key.
func (h Header) Float(key string) (float64, error) {
	v, ok := h[key]
	if !ok {
		return 0, fmt.Errorf("stokes: header keyword %s not found", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("stokes: header keyword %s is %T, not a number", key, v)
	}
}

// FloatOr returns the numeric value of keyword key, or def if the keyword
// is missing or not numeric.
func (h Header) FloatOr(key string, def float64) float64 {
	v, err := h.Float(key)
	if err != nil {
		return def
	}
	return v
}

// String returns the string value of keyword key.
func (h Header) String(key string) (string, error) {
	v, ok := h[key]
	if !ok {
		return "", fmt.Errorf("stokes: header keyword %s not found", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("stokes: header keyword %s is %T, not a string", key, v)
	}
	return s, nil
}

// Keys returns the keywords in h in sorted order.
func (h Header) Keys() []string {
	o := make([]string, 0, len(h))
	for k := range h {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}
