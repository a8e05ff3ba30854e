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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/stokes"
	"github.com/spatialmodel/stokes/fitsfile"
	"github.com/spatialmodel/stokes/jsoc"
	"github.com/spf13/cast"
)

// AcquisitionConfig builds an acquisition configuration from cfg. Progress
// is reported to the log and to obs, if obs is not nil.
func AcquisitionConfig(cfg *viper.Viper, obs stokes.Observer) (*stokes.Config, error) {
	dir := os.ExpandEnv(cfg.GetString("Dir"))
	if dir == "" {
		return nil, fmt.Errorf("stokesutil: the Dir configuration variable must be set to the data directory")
	}
	window, err := duration(cfg, "Window")
	if err != nil {
		return nil, err
	}
	poll, err := duration(cfg, "JSOC.PollInterval")
	if err != nil {
		return nil, err
	}
	conv, err := stokes.ParseNamingConvention(cfg.GetString("Convention"))
	if err != nil {
		return nil, err
	}
	log := logrus.StandardLogger()
	observers := stokes.Observers{stokes.LogObserver{Log: log}}
	if obs != nil {
		observers = append(observers, obs)
	}
	return &stokes.Config{
		Dir:             dir,
		Notify:          os.ExpandEnv(cfg.GetString("Notify")),
		Window:          window,
		StrictWindow:    cfg.GetBool("StrictWindow"),
		Convention:      conv,
		StokesSeries:    cfg.GetString("HMI.StokesSeries"),
		InversionSeries: cfg.GetString("HMI.InversionSeries"),
		Decoder:         fitsfile.Decoder{},
		Fetcher: &jsoc.Client{
			URL:          cfg.GetString("JSOC.URL"),
			Mirror:       os.ExpandEnv(cfg.GetString("JSOC.Mirror")),
			PollInterval: poll,
			Log:          log,
		},
		Observer: observers,
		Log:      log,
	}, nil
}

// duration returns the duration in configuration variable key, which is
// zero if the variable is not set.
func duration(cfg *viper.Viper, key string) (time.Duration, error) {
	v := cfg.Get(key)
	if v == nil {
		return 0, nil
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		return 0, fmt.Errorf("stokesutil: invalid %s: %v", key, err)
	}
	return d, nil
}

// parameters returns the parameter list in configuration variable key.
// Values set through environment variables may be comma separated.
func parameters(cfg *viper.Viper, key string) (stokes.ParameterSpec, error) {
	s, err := cast.ToStringSliceE(cfg.Get(key))
	if err != nil {
		return nil, fmt.Errorf("stokesutil: invalid %s: %v", key, err)
	}
	var o stokes.ParameterSpec
	for _, v := range s {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				o = append(o, p)
			}
		}
	}
	if len(o) == 0 {
		return nil, fmt.Errorf("stokesutil: %s must list at least one parameter", key)
	}
	return o, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`stokesutil: you need to specify an output file configuration variable (for example: OutputFile="cubes.nc")`)
	}
	f = os.ExpandEnv(f)
	if _, err := os.Stat(filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("stokesutil: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// setLogLevel sets the level of the standard logger from the LogLevel
// configuration variable.
func setLogLevel(cfg *viper.Viper) error {
	lvl, err := logrus.ParseLevel(cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("stokesutil: %v", err)
	}
	logrus.SetLevel(lvl)
	return nil
}
