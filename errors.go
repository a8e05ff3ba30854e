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
	"strings"
	"time"
)

// NoMatchError is returned when no files are available for a data product
// near the requested observation.
type NoMatchError struct {
	Product string    // data product being searched for
	Dir     string    // directory that was searched
	Target  time.Time // requested observation time, if any
}

func (e *NoMatchError) Error() string {
	msg := "stokes: no data available"
	if e.Product != "" {
		msg = fmt.Sprintf("stokes: no %s data available", e.Product)
	}
	if !e.Target.IsZero() {
		msg += " near " + e.Target.UTC().Format(time.RFC3339)
	}
	if e.Dir != "" {
		msg += " in " + e.Dir
	}
	return msg
}

// ShapeMismatchError is returned when assembled data cannot be arranged
// into the expected cube shape.
type ShapeMismatchError struct {
	Op   string // operation that failed
	Want []int  // expected shape
	Got  []int  // shape, or element count, that was supplied
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("stokes: %s: shape mismatch: want %v, got %v", e.Op, e.Want, e.Got)
}

// MissingParameterError is returned when a requested parameter has no
// matching data source.
type MissingParameterError struct {
	Parameter string
	Available []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("stokes: missing data for parameter %q (available: %s)",
		e.Parameter, strings.Join(e.Available, ", "))
}

// RemoteFetchError wraps a failure of the remote search-and-fetch
// collaborator.
type RemoteFetchError struct {
	Series string
	Err    error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("stokes: fetching %s: %v", e.Series, e.Err)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// ConventionMismatchError is returned when a file name does not have enough
// tokens for the naming convention it is being parsed with.
type ConventionMismatchError struct {
	Name       string
	Convention NamingConvention
	Tokens     int // number of tokens found
	Want       int // minimum number of tokens required
}

func (e *ConventionMismatchError) Error() string {
	return fmt.Sprintf("stokes: file name %q has %d %s tokens; at least %d are required",
		e.Name, e.Tokens, e.Convention, e.Want)
}
