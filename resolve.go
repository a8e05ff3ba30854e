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
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// TimeWindow is a closed interval of time.
type TimeWindow struct {
	Start, End time.Time
}

// Around returns the window extending halfWidth on either side of t.
func Around(t time.Time, halfWidth time.Duration) TimeWindow {
	return TimeWindow{Start: t.Add(-halfWidth), End: t.Add(halfWidth)}
}

// Contains returns whether t is inside the window, including its ends.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Within returns the records observed inside window w, in their
// original order.
func Within(records []FileRecord, w TimeWindow) []FileRecord {
	var o []FileRecord
	for _, r := range records {
		if w.Contains(r.Time) {
			o = append(o, r)
		}
	}
	return o
}

// Match is the result of a closest-in-time search.
type Match struct {
	// Records are all of the candidates whose observation time is
	// closest to the target, in candidate order.
	Records []FileRecord

	// Timestamps are the distinct timestamp tokens of Records in the
	// order they were first encountered.
	Timestamps []string

	// Offset is the absolute time difference between the matched
	// observations and the target.
	Offset time.Duration
}

// Paths returns the file paths of the matched records.
func (m *Match) Paths() []string {
	o := make([]string, len(m.Records))
	for i, r := range m.Records {
		o[i] = r.Path
	}
	return o
}

// Closest returns every record whose observation time is nearest to target.
// Ties are kept: an observation is usually spread over several files that
// share one timestamp. It returns a *NoMatchError if records is empty.
func Closest(records []FileRecord, target time.Time) (*Match, error) {
	if len(records) == 0 {
		return nil, &NoMatchError{Target: target}
	}
	diffs := make([]float64, len(records))
	for i, r := range records {
		diffs[i] = math.Abs(r.Time.Sub(target).Seconds())
	}
	min := floats.Min(diffs)

	m := new(Match)
	seen := make(map[string]bool)
	for i, r := range records {
		if diffs[i] != min {
			continue
		}
		m.Records = append(m.Records, r)
		if !seen[r.Timestamp] {
			seen[r.Timestamp] = true
			m.Timestamps = append(m.Timestamps, r.Timestamp)
		}
	}
	m.Offset = time.Duration(min * float64(time.Second))
	return m, nil
}
