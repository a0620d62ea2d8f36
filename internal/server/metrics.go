// Copyright 2025 6flow Studio
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	previews *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		previews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowpreview",
			Name:      "previews_total",
			Help:      "Node previews served, by node kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flowpreview",
			Name:      "preview_duration_seconds",
			Help:      "Wall-clock duration of node previews.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}

	// Re-registration happens when tests construct several servers
	// against the default registerer; reuse the existing collectors.
	if err := reg.Register(m.previews); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			m.previews = are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	if err := reg.Register(m.duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			m.duration = are.ExistingCollector.(*prometheus.HistogramVec)
		}
	}
	return m
}

func (m *metrics) observe(kind string, outcome string, elapsed time.Duration) {
	m.previews.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}
