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
	"github.com/sirupsen/logrus"
)

// An Observer receives progress reports from an acquisition. Observers
// only watch; they cannot change the outcome of the acquisition.
type Observer interface {
	// Matched is called after the files for a data product have been
	// selected.
	Matched(product string, files, timestamps []string)

	// Assembled is called after the cube for a data product has been
	// built.
	Assembled(product string, shape []int)
}

// LogObserver reports acquisition progress to a logger.
type LogObserver struct {
	Log logrus.FieldLogger
}

func (o LogObserver) log() logrus.FieldLogger {
	if o.Log == nil {
		return logrus.StandardLogger()
	}
	return o.Log
}

// Matched logs the number of matched files and their timestamps.
func (o LogObserver) Matched(product string, files, timestamps []string) {
	o.log().WithFields(logrus.Fields{
		"product":    product,
		"files":      len(files),
		"timestamps": timestamps,
	}).Info("matched files")
	for _, f := range files {
		o.log().WithField("product", product).Debug(f)
	}
}

// Assembled logs the shape of the assembled cube.
func (o LogObserver) Assembled(product string, shape []int) {
	o.log().WithFields(logrus.Fields{
		"product": product,
		"shape":   shape,
	}).Info("assembled cube")
}

// Observers passes every report on to each of its members in turn.
type Observers []Observer

func (obs Observers) Matched(product string, files, timestamps []string) {
	for _, o := range obs {
		o.Matched(product, files, timestamps)
	}
}

func (obs Observers) Assembled(product string, shape []int) {
	for _, o := range obs {
		o.Assembled(product, shape)
	}
}
