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
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// Names of the data products reported to an Observer.
const (
	ProductHMIStokes    = "hmi_stokes"
	ProductHMIInversion = "hmi_inversion"
	ProductSPLevel1     = "sp_level1"
	ProductSPLevel2     = "sp_level2"
)

// DefaultWindow is the half width of the remote search window used when
// Config.Window is zero.
const DefaultWindow = time.Second

// Config holds everything an acquisition needs. Nothing is read from
// the environment; zero values are described field by field.
type Config struct {
	// Dir is the directory holding the data files. Downloaded files are
	// written here too.
	Dir string

	// Notify is the contact address registered with the remote archive.
	// It is required for downloads.
	Notify string

	// Window is the half width of the time window searched remotely.
	// Zero means DefaultWindow.
	Window time.Duration

	// StrictWindow restricts local matches to the search window as
	// well, so that a directory holding only distant observations
	// results in a *NoMatchError instead of the nearest file.
	StrictWindow bool

	// Convention is the file naming convention of the files in Dir.
	Convention NamingConvention

	// Instrument, StokesSeries and InversionSeries identify the HMI
	// files. Empty values mean HMIInstrument, HMIStokesSeries and
	// HMIInversionSeries.
	Instrument, StokesSeries, InversionSeries string

	Decoder Decoder

	// Fetcher is required when downloading.
	Fetcher Fetcher

	// Rotator is required when derotating.
	Rotator Rotator

	// Observer, if not nil, receives progress reports.
	Observer Observer

	// Log receives diagnostic messages. Nil means the standard logger.
	Log logrus.FieldLogger
}

// Options select what an acquisition does.
type Options struct {
	// Parameters are the inversion parameters to load, in cube order.
	// Empty means the instrument default.
	Parameters ParameterSpec

	// Derotate rotates every image with the configured Rotator before
	// it is stacked.
	Derotate bool

	// Download fetches the files from the remote archive instead of
	// searching Dir.
	Download bool
}

// Result holds the assembled cubes of one acquisition.
type Result struct {
	// Level1 is the Stokes cube with shape (stokes, wavelength, y, x).
	Level1       *sparse.DenseArray
	Level1Coords *CoordinateSystem
	Level1Files  []string

	// Level2 is the parameter cube with shape (parameter, y, x).
	Level2       *sparse.DenseArray
	Level2Coords *CoordinateSystem
	Level2Files  []string

	// Parameters label the leading axis of Level2.
	Parameters ParameterSpec
}

func (c *Config) log() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

func (c *Config) window() time.Duration {
	if c.Window == 0 {
		return DefaultWindow
	}
	return c.Window
}

func (c *Config) instrument() string  { return orDefault(c.Instrument, HMIInstrument) }
func (c *Config) stokesSeries() string { return orDefault(c.StokesSeries, HMIStokesSeries) }
func (c *Config) inversionSeries() string {
	return orDefault(c.InversionSeries, HMIInversionSeries)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (c *Config) matched(product string, m *Match) {
	c.log().WithFields(logrus.Fields{
		"product":    product,
		"files":      len(m.Records),
		"timestamps": m.Timestamps,
		"offset":     m.Offset,
	}).Debug("resolved observation time")
	if c.Observer != nil {
		c.Observer.Matched(product, m.Paths(), m.Timestamps)
	}
}

func (c *Config) assembled(product string, a *sparse.DenseArray) {
	if c.Observer != nil {
		c.Observer.Assembled(product, a.Shape)
	}
}

// checkOptions makes sure the collaborators needed by opts are present.
func (c *Config) checkOptions(opts Options) error {
	if c.Decoder == nil {
		return fmt.Errorf("stokes: no decoder configured")
	}
	if opts.Derotate && c.Rotator == nil {
		return fmt.Errorf("stokes: derotation requested but no rotator configured")
	}
	if opts.Download {
		if c.Fetcher == nil {
			return fmt.Errorf("stokes: download requested but no fetcher configured")
		}
		if c.Notify == "" {
			return fmt.Errorf("stokes: download requested but no notification address configured")
		}
	}
	return nil
}

// checkSeries makes sure the HMI series names can be told apart under
// Convention. VSO names are split on underscores, so a series name that
// contains one can never match.
func (c *Config) checkSeries() error {
	if c.Convention != VSO {
		return nil
	}
	for _, s := range []string{c.instrument(), c.stokesSeries(), c.inversionSeries()} {
		if strings.Contains(s, "_") {
			return fmt.Errorf("stokes: series %q cannot be matched under the %s naming convention", s, c.Convention)
		}
	}
	return nil
}

// locate finds the files of one series observed closest to target,
// either in Dir or, when download is set, by fetching them.
func (c *Config) locate(ctx context.Context, product, series string, target time.Time, download bool) (*Match, error) {
	w := Around(target, c.window())
	var paths []string
	var err error
	if download {
		q := Query{Series: c.instrument() + "." + series, Window: w, Notify: c.Notify, Dir: c.Dir}
		c.log().WithFields(logrus.Fields{
			"series": q.Series,
			"start":  w.Start.Format(time.RFC3339),
			"end":    w.End.Format(time.RFC3339),
		}).Info("fetching remote data")
		paths, err = c.Fetcher.Fetch(ctx, q)
		if err != nil {
			return nil, &RemoteFetchError{Series: q.Series, Err: err}
		}
		NaturalSort(paths)
	} else {
		if paths, err = ReadDir(c.Dir); err != nil {
			return nil, err
		}
	}
	records, err := Filter(paths, c.instrument(), series, c.Convention)
	if err != nil {
		return nil, err
	}
	if c.StrictWindow {
		records = Within(records, w)
	}
	if len(records) == 0 {
		return nil, &NoMatchError{Product: product, Dir: c.Dir, Target: target}
	}
	m, err := Closest(records, target)
	if err != nil {
		return nil, err
	}
	c.matched(product, m)
	return m, nil
}

// decode reads the primary image of path, rotating it if requested.
func (c *Config) decode(path string, derotate bool) (*Image, error) {
	im, err := c.Decoder.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("stokes: decoding %s: %w", path, err)
	}
	return c.rotate(im, derotate)
}

func (c *Config) rotate(im *Image, derotate bool) (*Image, error) {
	if im.Data == nil {
		return nil, fmt.Errorf("stokes: %s contains no image data", im.Path)
	}
	if !derotate {
		return im, nil
	}
	r, err := c.Rotator.Rotate(im, RotationOrder)
	if err != nil {
		return nil, fmt.Errorf("stokes: rotating %s: %w", im.Path, err)
	}
	return r, nil
}
