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

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver records acquisition progress as Prometheus metrics.
// It implements stokes.Observer.
type MetricsObserver struct {
	Registry *prometheus.Registry

	files      *prometheus.CounterVec
	timestamps *prometheus.GaugeVec
	cubes      *prometheus.CounterVec
	elements   *prometheus.GaugeVec
}

// NewMetricsObserver returns a MetricsObserver with its own registry.
func NewMetricsObserver() *MetricsObserver {
	m := &MetricsObserver{
		Registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stokes",
			Name:      "matched_files_total",
			Help:      "Number of data files selected for each product.",
		}, []string{"product"}),
		timestamps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "stokes",
			Name:      "matched_timestamps",
			Help:      "Number of distinct observation timestamps in the latest selection.",
		}, []string{"product"}),
		cubes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stokes",
			Name:      "assembled_cubes_total",
			Help:      "Number of data cubes assembled for each product.",
		}, []string{"product"}),
		elements: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "stokes",
			Name:      "cube_elements",
			Help:      "Number of elements in the latest assembled cube.",
		}, []string{"product"}),
	}
	m.Registry.MustRegister(m.files, m.timestamps, m.cubes, m.elements)
	return m
}

// Matched implements stokes.Observer.
func (m *MetricsObserver) Matched(product string, files, timestamps []string) {
	m.files.WithLabelValues(product).Add(float64(len(files)))
	m.timestamps.WithLabelValues(product).Set(float64(len(timestamps)))
}

// Assembled implements stokes.Observer.
func (m *MetricsObserver) Assembled(product string, shape []int) {
	n := 1
	for _, d := range shape {
		n *= d
	}
	m.cubes.WithLabelValues(product).Inc()
	m.elements.WithLabelValues(product).Set(float64(n))
}

// WriteFile writes the metrics in the Prometheus text format, for
// collection by the node exporter textfile collector.
func (m *MetricsObserver) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("stokesutil: writing metrics: %v", err)
	}
	return nil
}
