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
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ctessum/sparse"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/stokes"
	"github.com/spatialmodel/stokes/fitsfile"
	"github.com/spatialmodel/stokes/jsoc"
)

func touch(t *testing.T, dir string, names ...string) {
	for _, n := range names {
		if err := ioutil.WriteFile(filepath.Join(dir, n), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func hmiNames(timestamp string) []string {
	var o []string
	for _, s := range stokes.StokesLabels {
		for w := 0; w < stokes.NumWavelengths; w++ {
			o = append(o, fmt.Sprintf("hmi.S_720s.%s.%s%d.fits", timestamp, s, w))
		}
	}
	for _, p := range stokes.HMIParameters {
		o = append(o, fmt.Sprintf("hmi.ME_720s_fd10.%s.%s.fits", timestamp, p))
	}
	return o
}

// constDecoder returns a 2×3 image of ones with testHeader for every file.
type constDecoder struct{}

func (constDecoder) Decode(path string) (*stokes.Image, error) {
	a := sparse.ZerosDense(2, 3)
	for i := range a.Elements {
		a.Elements[i] = 1
	}
	return &stokes.Image{Path: path, Data: a, Header: testHeader}, nil
}

func (constDecoder) Extensions(string) ([]string, error) { return nil, nil }

func (constDecoder) DecodeExtension(path, name string) (*stokes.Image, error) {
	return nil, fmt.Errorf("no extension %s", name)
}

func TestHMI(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	touch(t, dir, hmiNames("20140910_120000_TAI")...)

	m := NewMetricsObserver()
	c := &stokes.Config{Dir: dir, Decoder: constDecoder{}, Observer: m}
	out := filepath.Join(dir, "cubes.nc")
	target := time.Date(2014, 9, 10, 12, 0, 0, 0, time.UTC)
	r, err := HMI(context.Background(), c, target, stokes.Options{}, out)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{4, 6, 2, 3}; !reflect.DeepEqual(r.Level1.Shape, want) {
		t.Errorf("shape: have %v, want %v", r.Level1.Shape, want)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cube, cs, err := ReadCube(f, Level2Var)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{3, 2, 3}; !reflect.DeepEqual(cube.Shape, want) {
		t.Errorf("level 2 shape: have %v, want %v", cube.Shape, want)
	}
	if cs.Axes[2].CType != "Parameter" {
		t.Errorf("leading axis: have %+v", cs.Axes[2])
	}
}

func TestList(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	touch(t, dir,
		"hmi.S_720s.20140910_120000_TAI.I10.fits",
		"hmi.S_720s.20140910_120000_TAI.I2.fits",
		"hmi.ME_720s_fd10.20140910_120000_TAI.field.fits",
		"aia.lev1.20140910_120000.171.fits",
		"README",
	)

	var buf bytes.Buffer
	if err := List(&buf, dir, "hmi", "", stokes.JSOC); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("have %d lines, want 5:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "FILE") || lines[4] != "3 files" {
		t.Errorf("unexpected table:\n%s", buf.String())
	}
	if !strings.Contains(lines[2], "I2") || !strings.Contains(lines[3], "I10") {
		t.Errorf("files should be in natural order:\n%s", buf.String())
	}
	if !strings.Contains(lines[2], "2014-09-10T11:59:25") {
		t.Errorf("times should be UTC:\n%s", buf.String())
	}

	buf.Reset()
	if err := List(&buf, dir, "hmi", "S_720s", stokes.JSOC); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(buf.String()), "2 files") {
		t.Errorf("series listing:\n%s", buf.String())
	}

	if err := List(&buf, dir, "", "S_720s", stokes.JSOC); err == nil {
		t.Error("a series without an instrument should be rejected")
	}
	if err := List(&buf, filepath.Join(dir, "missing"), "", "", stokes.JSOC); err == nil {
		t.Error("a missing directory should be an error")
	}
}

func TestAcquisitionConfig(t *testing.T) {
	cfg := viper.New()
	if _, err := AcquisitionConfig(cfg, nil); err == nil {
		t.Error("a missing Dir should be an error")
	}

	os.Setenv("STOKES_TEST_DIR", "/data")
	defer os.Unsetenv("STOKES_TEST_DIR")
	cfg.Set("Dir", "$STOKES_TEST_DIR/hmi")
	cfg.Set("Window", "30s")
	cfg.Set("JSOC.PollInterval", time.Second)
	cfg.Set("JSOC.URL", "http://localhost:8080")
	cfg.Set("Convention", "vso")
	cfg.Set("StrictWindow", true)
	cfg.Set("Notify", "user@example.com")

	m := NewMetricsObserver()
	c, err := AcquisitionConfig(cfg, m)
	if err != nil {
		t.Fatal(err)
	}
	if c.Dir != "/data/hmi" || c.Window != 30*time.Second || c.Convention != stokes.VSO || !c.StrictWindow {
		t.Errorf("have %+v", c)
	}
	if _, ok := c.Decoder.(fitsfile.Decoder); !ok {
		t.Errorf("decoder: have %T", c.Decoder)
	}
	client, ok := c.Fetcher.(*jsoc.Client)
	if !ok {
		t.Fatalf("fetcher: have %T", c.Fetcher)
	}
	if client.URL != "http://localhost:8080" || client.PollInterval != time.Second {
		t.Errorf("client: have %+v", client)
	}
	if obs, ok := c.Observer.(stokes.Observers); !ok || len(obs) != 2 {
		t.Errorf("observer: have %#v", c.Observer)
	}

	cfg.Set("Convention", "ftp")
	if _, err := AcquisitionConfig(cfg, nil); err == nil {
		t.Error("an invalid convention should be an error")
	}
	cfg.Set("Convention", "jsoc")
	cfg.Set("Window", "soon")
	if _, err := AcquisitionConfig(cfg, nil); err == nil {
		t.Error("an invalid window should be an error")
	}
}

func TestParameters(t *testing.T) {
	cfg := viper.New()
	cfg.Set("a", []string{"field", "azimuth"})
	cfg.Set("b", "field, inclination,azimuth")
	cfg.Set("c", "")

	for key, want := range map[string]stokes.ParameterSpec{
		"a": {"field", "azimuth"},
		"b": {"field", "inclination", "azimuth"},
	} {
		have, err := parameters(cfg, key)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(have, want) {
			t.Errorf("%s: have %v, want %v", key, have, want)
		}
	}
	if _, err := parameters(cfg, "c"); err == nil {
		t.Error("an empty list should be an error")
	}
}

func TestCheckOutputFile(t *testing.T) {
	if _, err := checkOutputFile(""); err == nil {
		t.Error("an empty name should be an error")
	}
	if _, err := checkOutputFile("/does/not/exist/cubes.nc"); err == nil {
		t.Error("a missing directory should be an error")
	}
	dir := tempDir(t)
	defer os.RemoveAll(dir)
	os.Setenv("STOKES_TEST_DIR", dir)
	defer os.Unsetenv("STOKES_TEST_DIR")
	f, err := checkOutputFile("$STOKES_TEST_DIR/cubes.nc")
	if err != nil {
		t.Fatal(err)
	}
	if f != filepath.Join(dir, "cubes.nc") {
		t.Errorf("have %s", f)
	}
}

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	Root.SetOutput(&buf)
	Root.SetArgs([]string{"version"})
	defer Root.SetOutput(nil)
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if have, want := buf.String(), "stokes v"+stokes.Version+"\n"; have != want {
		t.Errorf("have %q, want %q", have, want)
	}
}
