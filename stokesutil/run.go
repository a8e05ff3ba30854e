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

package stokesutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spatialmodel/stokes"
)

// HMI assembles the HMI observations closest to target and writes them
// to outputFile.
func HMI(ctx context.Context, c *stokes.Config, target time.Time, opts stokes.Options, outputFile string) (*stokes.Result, error) {
	r, err := c.HMI(ctx, target, opts)
	if err != nil {
		return nil, err
	}
	return r, writeOutput(outputFile, r)
}

// HinodeSP assembles a Hinode SP scan and writes it to outputFile.
func HinodeSP(c *stokes.Config, scan string, opts stokes.Options, outputFile string) (*stokes.ScanResult, error) {
	r, err := c.HinodeSP(scan, opts)
	if err != nil {
		return nil, err
	}
	return r, writeOutput(outputFile, &r.Result)
}

func writeOutput(outputFile string, r *stokes.Result) error {
	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("stokesutil: %v", err)
	}
	if err := WriteResult(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List writes a table of the data files in dir whose names follow
// convention conv. If instrument or series are not empty, only files
// from that instrument or series are listed.
func List(w io.Writer, dir, instrument, series string, conv stokes.NamingConvention) error {
	paths, err := stokes.ReadDir(dir)
	if err != nil {
		return err
	}
	var records []stokes.FileRecord
	if series != "" {
		if instrument == "" {
			return fmt.Errorf("stokesutil: listing by series requires an instrument")
		}
		if records, err = stokes.Filter(paths, instrument, series, conv); err != nil {
			return err
		}
	} else {
		for _, p := range paths {
			r, err := stokes.ParseFileRecord(p, conv)
			if err != nil {
				continue
			}
			if instrument == "" || strings.EqualFold(r.Instrument, instrument) {
				records = append(records, r)
			}
		}
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tINSTRUMENT\tSERIES\tSEGMENT\tTIME (UTC)")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Name, r.Instrument, r.Series, r.Segment,
			r.Time.Format("2006-01-02T15:04:05"))
	}
	fmt.Fprintf(tw, "%d files\n", len(records))
	return tw.Flush()
}

// ProfilePlot reads the Level 1 cube from cubeFile and writes a plot of
// the profile of Stokes parameter s at pixel (x, y) to plotFile.
func ProfilePlot(cubeFile, s string, x, y int, plotFile string) error {
	f, err := os.Open(cubeFile)
	if err != nil {
		return fmt.Errorf("stokesutil: %v", err)
	}
	defer f.Close()
	cube, cs, err := ReadCube(f, Level1Var)
	if err != nil {
		return err
	}
	wl, vals, err := Profile(cube, cs, s, x, y)
	if err != nil {
		return err
	}
	p, err := PlotProfile(s, x, y, wl, vals)
	if err != nil {
		return err
	}
	w, err := os.Create(plotFile)
	if err != nil {
		return fmt.Errorf("stokesutil: %v", err)
	}
	if err := WritePlot(w, p); err != nil {
		w.Close()
		return fmt.Errorf("stokesutil: writing plot: %v", err)
	}
	return w.Close()
}
