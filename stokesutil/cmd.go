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

// Package stokesutil contains the command line interface of stokes.
package stokesutil

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/stokes"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

var options []option

func init() {
	// Options are the configuration options available to stokes.
	options = []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Dir",
			usage: `
              Dir is the directory holding the data files. Downloaded
              HMI files are saved here. Hinode SP scans are read from its
              Level1 and Level2 subdirectories.`,
			shorthand:  "d",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel sets the minimum level of log messages: debug,
              info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Convention",
			usage: `
              Convention is the file naming convention of the data files:
              'jsoc' for dot-delimited names (hmi.S_720s.20140910_120000_TAI.I0.fits)
              or 'vso' for underscore-delimited names. Under 'vso' the HMI series
              names must not contain underscores, so the default series
              (S_720s and ME_720s_fd10) require 'jsoc'.`,
			defaultVal: "jsoc",
			flagsets:   []*pflag.FlagSet{hmiCmd.Flags(), listCmd.Flags()},
		},
		{
			name: "time",
			usage: `
              time is the observation time to retrieve, for example
              2014-09-10T12:00:00 or 2014.09.10_12:00:00_TAI. Times are UTC
              unless followed by TAI.`,
			shorthand:  "t",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{hmiCmd.Flags()},
		},
		{
			name: "Download",
			usage: `
              Download specifies whether to retrieve the files from JSOC
              instead of searching Dir.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{hmiCmd.Flags()},
		},
		{
			name: "Notify",
			usage: `
              Notify is the email address registered with JSOC, required
              for downloads.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{hmiCmd.Flags()},
		},
		{
			name: "Window",
			usage: `
              Window is the half width of the time window searched at JSOC.`,
			defaultVal: stokes.DefaultWindow,
			flagsets:   []*pflag.FlagSet{hmiCmd.Flags()},
		},
		{
			name: "StrictWindow",
			usage: `
              StrictWindow specifies whether local files observed outside
              of Window should be ignored.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{hmiCmd.Flags()},
		},
		{
			name: "HMI.Parameters",
			usage: `
              HMI.Parameters lists the inversion parameters loaded into the
              Level 2 cube, in cube order.`,
			defaultVal: []string(stokes.HMIParameters),
			flagsets:   []*pflag.FlagSet{hmiCmd.Flags()},
		},
		{
			name: "HMI.StokesSeries",
			usage: `
              HMI.StokesSeries is the HMI Stokes data series.`,
			defaultVal: stokes.HMIStokesSeries,
			flagsets:   []*pflag.FlagSet{hmiCmd.Flags()},
		},
		{
			name: "HMI.InversionSeries",
			usage: `
              HMI.InversionSeries is the HMI inversion data series.`,
			defaultVal: stokes.HMIInversionSeries,
			flagsets:   []*pflag.FlagSet{hmiCmd.Flags()},
		},
		{
			name: "JSOC.URL",
			usage: `
              JSOC.URL is the address of the JSOC export server.`,
			defaultVal: "http://jsoc.stanford.edu",
			flagsets:   []*pflag.FlagSet{hmiCmd.Flags()},
		},
		{
			name: "JSOC.Mirror",
			usage: `
              JSOC.Mirror optionally specifies a blob storage location
              (file://, gs:// or s3://) holding copies of exported files,
              which are then copied from there instead of the JSOC server.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{hmiCmd.Flags()},
		},
		{
			name: "JSOC.PollInterval",
			usage: `
              JSOC.PollInterval is the time between checks of the status
              of an export request.`,
			defaultVal: 5 * time.Second,
			flagsets:   []*pflag.FlagSet{hmiCmd.Flags()},
		},
		{
			name: "scan",
			usage: `
              scan identifies the Hinode SP scan to load by the time of
              its first observation, for example 20140910_120000.`,
			shorthand:  "s",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{hinodeCmd.Flags()},
		},
		{
			name: "Hinode.Parameters",
			usage: `
              Hinode.Parameters lists the Level 2 extensions loaded into the
              Level 2 cube, in cube order.`,
			defaultVal: []string(stokes.HinodeParameters),
			flagsets:   []*pflag.FlagSet{hinodeCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the netCDF file the assembled cubes are written
              to, and read from by the profile command.`,
			shorthand:  "o",
			defaultVal: "stokes.nc",
			flagsets:   []*pflag.FlagSet{hmiCmd.Flags(), hinodeCmd.Flags(), profileCmd.Flags()},
		},
		{
			name: "MetricsFile",
			usage: `
              MetricsFile optionally specifies a file to write acquisition
              metrics to in the Prometheus text format.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{hmiCmd.Flags(), hinodeCmd.Flags()},
		},
		{
			name: "List.Instrument",
			usage: `
              List.Instrument limits the listing to one instrument.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{listCmd.Flags()},
		},
		{
			name: "List.Series",
			usage: `
              List.Series limits the listing to one data series of
              List.Instrument.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{listCmd.Flags()},
		},
		{
			name: "Profile.X",
			usage: `
              Profile.X is the x pixel index of the plotted profile.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{profileCmd.Flags()},
		},
		{
			name: "Profile.Y",
			usage: `
              Profile.Y is the y pixel index of the plotted profile.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{profileCmd.Flags()},
		},
		{
			name: "Profile.Stokes",
			usage: `
              Profile.Stokes is the Stokes parameter to plot: I, Q, U or V.`,
			defaultVal: "I",
			flagsets:   []*pflag.FlagSet{profileCmd.Flags()},
		},
		{
			name: "Profile.Plot",
			usage: `
              Profile.Plot is the PNG file the profile plot is written to.`,
			defaultVal: "profile.png",
			flagsets:   []*pflag.FlagSet{profileCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables,
	// e.g. STOKES_HMI_PARAMETERS.
	Cfg.SetEnvPrefix("STOKES")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case time.Duration:
				set.DurationP(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(listCmd)
	Root.AddCommand(hmiCmd)
	Root.AddCommand(hinodeCmd)
	Root.AddCommand(profileCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("stokes: problem reading configuration file: %v", err)
		}
	}
	return setLogLevel(Cfg)
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "stokes",
	Short: "Assemble solar polarimetric data cubes.",
	Long: `stokes locates, downloads and assembles calibrated solar spectropolarimetric
observations into data cubes with world coordinate information. It supports the
SDO/HMI 720 s Stokes series with its Milne-Eddington inversions, and Hinode SP scans.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'STOKES_var' where 'var' is the
name of the variable to be set, with dots replaced by underscores.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of stokes.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("stokes v%s\n", stokes.Version)
	},
	DisableAutoGenTag: true,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the data files in a directory.",
	Long: `list prints the instrument, series, segment and observation time of
each data file in Dir whose name follows the naming convention.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conv, err := stokes.ParseNamingConvention(Cfg.GetString("Convention"))
		if err != nil {
			return err
		}
		return List(cmd.OutOrStdout(), Cfg.GetString("Dir"),
			Cfg.GetString("List.Instrument"), Cfg.GetString("List.Series"), conv)
	},
	DisableAutoGenTag: true,
}

var hmiCmd = &cobra.Command{
	Use:   "hmi",
	Short: "Assemble HMI Stokes and inversion cubes.",
	Long: `hmi assembles the HMI Stokes cube (stokes, wavelength, y, x) and the
inversion parameter cube (parameter, y, x) observed closest to --time, and
writes them to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := stokes.ParseTime(Cfg.GetString("time"))
		if err != nil {
			return err
		}
		params, err := parameters(Cfg, "HMI.Parameters")
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		return withMetrics(func(obs stokes.Observer) error {
			c, err := AcquisitionConfig(Cfg, obs)
			if err != nil {
				return err
			}
			r, err := HMI(context.Background(), c, target, stokes.Options{
				Parameters: params,
				Download:   Cfg.GetBool("Download"),
			}, outputFile)
			if err != nil {
				return err
			}
			cmd.Printf("wrote Stokes cube %v and inversion cube %v to %s\n", r.Level1.Shape, r.Level2.Shape, outputFile)
			return nil
		})
	},
	DisableAutoGenTag: true,
}

var hinodeCmd = &cobra.Command{
	Use:   "hinode",
	Short: "Assemble a Hinode SP scan.",
	Long: `hinode assembles the Level 1 Stokes cube (stokes, wavelength, y, x) and the
Level 2 parameter cube (parameter, y, x) of the Hinode SP scan given by --scan
from Dir/Level1/<scan>/ and Dir/Level2/<scan>.fits, and writes them to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scan := Cfg.GetString("scan")
		if scan == "" {
			return fmt.Errorf("stokes: a scan must be specified")
		}
		params, err := parameters(Cfg, "Hinode.Parameters")
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		return withMetrics(func(obs stokes.Observer) error {
			c, err := AcquisitionConfig(Cfg, obs)
			if err != nil {
				return err
			}
			r, err := HinodeSP(c, scan, stokes.Options{Parameters: params}, outputFile)
			if err != nil {
				return err
			}
			cmd.Printf("wrote Stokes cube %v and parameter cube %v from %d slit positions to %s\n",
				r.Level1.Shape, r.Level2.Shape, len(r.Headers), outputFile)
			return nil
		})
	},
	DisableAutoGenTag: true,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Plot a spectral profile.",
	Long: `profile plots the spectral profile of one Stokes parameter at one pixel
of the Stokes cube in OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ProfilePlot(Cfg.GetString("OutputFile"), Cfg.GetString("Profile.Stokes"),
			Cfg.GetInt("Profile.X"), Cfg.GetInt("Profile.Y"), Cfg.GetString("Profile.Plot"))
	},
	DisableAutoGenTag: true,
}

// withMetrics runs f, collecting metrics into MetricsFile if it is set.
// Metrics are written even if f fails.
func withMetrics(f func(stokes.Observer) error) error {
	path := Cfg.GetString("MetricsFile")
	if path == "" {
		return f(nil)
	}
	m := NewMetricsObserver()
	err := f(m)
	if werr := m.WriteFile(path); err == nil {
		err = werr
	}
	return err
}
