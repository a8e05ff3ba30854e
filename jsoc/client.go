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

// Package jsoc retrieves data from the Joint Science Operations Center
// (JSOC) export system.
//
// A Client submits an export request for all records of a series within a
// time window, waits for the export to be staged, and copies the exported
// files into a local directory, either over HTTP or from a blob storage
// mirror of the export area. Failed requests are not retried.
package jsoc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/stokes"
	"github.com/spatialmodel/stokes/internal/hash"
)

// Defaults for the zero values of Client fields.
const (
	DefaultURL            = "http://jsoc.stanford.edu"
	DefaultPollInterval   = 5 * time.Second
	DefaultFilenameFormat = "{seriesname}.{T_REC:A}.{segment}"
)

// fetchPath is the export endpoint, relative to the server URL.
const fetchPath = "/cgi-bin/ajax/jsoc_fetch"

// Client downloads exported JSOC records. It implements stokes.Fetcher.
type Client struct {
	// URL is the address of the JSOC server. Empty means DefaultURL.
	URL string

	// HTTPClient is used for all requests. Nil means http.DefaultClient.
	HTTPClient *http.Client

	// PollInterval is the time between export status checks.
	// Zero means DefaultPollInterval.
	PollInterval time.Duration

	// Mirror, if set, is a blob storage location ('file://', 'gs://' or
	// 's3://') holding copies of the exported files, which are then read
	// from there rather than from the server.
	Mirror string

	// FilenameFormat is the JSOC file name template of exported files.
	// Empty means DefaultFilenameFormat, which produces names such as
	// hmi.S_720s.20140910_120000_TAI.I0.fits.
	FilenameFormat string

	Log logrus.FieldLogger
}

// Export status codes. Any other code is a failure.
const (
	statusComplete   = 0
	statusProcessing = 1
	statusQueued     = 2
	statusNew        = 6
)

type exportFile struct {
	Record   string `json:"record"`
	Filename string `json:"filename"`
}

type exportResponse struct {
	Status    int          `json:"status"`
	RequestID string       `json:"requestid"`
	Dir       string       `json:"dir"`
	Error     string       `json:"error"`
	Data      []exportFile `json:"data"`
}

func (c *Client) url() string {
	if c.URL == "" {
		return DefaultURL
	}
	return strings.TrimSuffix(c.URL, "/")
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *Client) log() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

// RecordSet returns the JSOC record set specification selecting the
// records of series observed within w, e.g.
// hmi.S_720s[2014.09.10_11:59:59_TAI-2014.09.10_12:00:01_TAI].
func RecordSet(series string, w stokes.TimeWindow) string {
	const layout = "2006.01.02_15:04:05_TAI"
	return fmt.Sprintf("%s[%s-%s]", series,
		stokes.UTCToTAI(w.Start).Format(layout), stokes.UTCToTAI(w.End).Format(layout))
}

// Fetch exports the records selected by q and copies the exported files
// into q.Dir. Files that already exist in q.Dir are not copied again. It
// returns the local paths of all exported files.
func (c *Client) Fetch(ctx context.Context, q stokes.Query) ([]string, error) {
	if q.Notify == "" {
		return nil, fmt.Errorf("jsoc: a registered notification address is required")
	}
	log := c.log().WithField("request", hash.Key(q))
	if err := os.MkdirAll(q.Dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("jsoc: %v", err)
	}
	ds := RecordSet(q.Series, q.Window)
	log.WithField("ds", ds).Info("requesting export")

	resp, err := c.request(ctx, ds, q.Notify)
	if err != nil {
		return nil, err
	}
	for resp.Status != statusComplete {
		log.WithFields(logrus.Fields{
			"requestid": resp.RequestID,
			"status":    resp.Status,
		}).Debug("waiting for export")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval()):
		}
		if resp, err = c.status(ctx, resp.RequestID); err != nil {
			return nil, err
		}
	}
	log.WithField("files", len(resp.Data)).Info("export complete")
	return c.copyFiles(ctx, log, resp, q.Dir)
}

func (c *Client) pollInterval() time.Duration {
	if c.PollInterval == 0 {
		return DefaultPollInterval
	}
	return c.PollInterval
}

func (c *Client) request(ctx context.Context, ds, notify string) (*exportResponse, error) {
	format := c.FilenameFormat
	if format == "" {
		format = DefaultFilenameFormat
	}
	v := url.Values{
		"op":          {"exp_request"},
		"ds":          {ds},
		"notify":      {notify},
		"method":      {"url"},
		"protocol":    {"FITS"},
		"format":      {"json"},
		"filenamefmt": {format},
	}
	return c.call(ctx, v)
}

func (c *Client) status(ctx context.Context, id string) (*exportResponse, error) {
	v := url.Values{
		"op":        {"exp_status"},
		"requestid": {id},
		"format":    {"json"},
	}
	return c.call(ctx, v)
}

// call performs one export API request and checks its status.
func (c *Client) call(ctx context.Context, v url.Values) (*exportResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url()+fetchPath+"?"+v.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("jsoc: %v", err)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("jsoc: %s: %v", v.Get("op"), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jsoc: %s: server returned %s", v.Get("op"), resp.Status)
	}
	r := new(exportResponse)
	if err := json.NewDecoder(resp.Body).Decode(r); err != nil {
		return nil, fmt.Errorf("jsoc: %s: decoding response: %v", v.Get("op"), err)
	}
	switch r.Status {
	case statusComplete, statusProcessing, statusQueued, statusNew:
		return r, nil
	default:
		return nil, fmt.Errorf("jsoc: %s failed with status %d: %s", v.Get("op"), r.Status, r.Error)
	}
}

// copyFiles copies the exported files into dir.
func (c *Client) copyFiles(ctx context.Context, log logrus.FieldLogger, r *exportResponse, dir string) ([]string, error) {
	var open func(name string) (io.ReadCloser, error)
	if c.Mirror != "" {
		bucket, prefix, err := OpenMirror(ctx, c.Mirror)
		if err != nil {
			return nil, err
		}
		defer bucket.Close()
		open = func(name string) (io.ReadCloser, error) {
			return bucket.NewReader(ctx, path.Join(prefix, name), nil)
		}
	} else {
		open = func(name string) (io.ReadCloser, error) {
			return c.get(ctx, c.url()+path.Join(r.Dir, name))
		}
	}

	paths := make([]string, 0, len(r.Data))
	for _, f := range r.Data {
		name := path.Base(f.Filename)
		dst := filepath.Join(dir, name)
		paths = append(paths, dst)
		if _, err := os.Stat(dst); err == nil {
			log.WithField("file", name).Debug("already downloaded")
			continue
		}
		rc, err := open(name)
		if err != nil {
			return nil, fmt.Errorf("jsoc: retrieving %s: %v", name, err)
		}
		err = writeFile(dst, rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		log.WithField("file", name).Debug("downloaded")
	}
	return paths, nil
}

func (c *Client) get(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}
	return resp.Body, nil
}

// writeFile writes r to dst through a temporary file in the same
// directory.
func writeFile(dst string, r io.Reader) error {
	w, err := ioutil.TempFile(filepath.Dir(dst), ".download-")
	if err != nil {
		return fmt.Errorf("jsoc: %v", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		os.Remove(w.Name())
		return fmt.Errorf("jsoc: writing %s: %v", dst, err)
	}
	if err := w.Close(); err != nil {
		os.Remove(w.Name())
		return fmt.Errorf("jsoc: %v", err)
	}
	if err := os.Rename(w.Name(), dst); err != nil {
		return fmt.Errorf("jsoc: %v", err)
	}
	return nil
}
