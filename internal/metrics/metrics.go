// SPDX-License-Identifier: MPL-2.0

// Package metrics records launcher outcomes as Prometheus metrics and writes
// them in the node-exporter textfile format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/launchgate/launchgate/pkg/handshake"
)

const (
	namespace = "launchgate"

	outcomeOK    = "ok"
	outcomeError = "error"
)

// Recorder counts resolutions and refusals. A nil *Recorder is a no-op.
type Recorder struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	refusals    *prometheus.CounterVec
	packs       prometheus.Gauge
}

// NewRecorder returns a Recorder backed by its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Pack resolutions by outcome",
		}, []string{"outcome"}),
		refusals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refusals_total",
			Help:      "Handshake refusals by code",
		}, []string{"code"}),
		packs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resolved_packs",
			Help:      "Packs in the last successful load order",
		}),
	}
	r.registry.MustRegister(r.resolutions, r.refusals, r.packs)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveResolution records one resolver run.
func (r *Recorder) ObserveResolution(packs int, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.resolutions.WithLabelValues(outcomeError).Inc()
		return
	}
	r.resolutions.WithLabelValues(outcomeOK).Inc()
	r.packs.Set(float64(packs))
}

// ObserveRefusal records a refusal. RefusalOK is ignored.
func (r *Recorder) ObserveRefusal(code handshake.RefusalCode) {
	if r == nil || code == handshake.RefusalOK {
		return
	}
	r.refusals.WithLabelValues(code.String()).Inc()
}

// WriteTextfile writes all metrics to path. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
