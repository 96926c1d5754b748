// Copyright (c) 2026 NutriSync. All rights reserved.

/*
Package metrics provides Prometheus metric collection and exposure.

It tracks the operational signals unique to NutriSync: reminder delivery
outcomes from the background scheduler and vision-analysis request sources
(cache hit, sidecar, mock fallback).

The HTTP request layer is instrumented separately by the structured-logging
middleware; this package covers the background and upstream paths logs
alone cannot aggregate cheaply.
*/
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface consumed by the scheduler and the food service.
//
// # Why an interface?
//
// Domain services depend on this narrow surface rather than the concrete
// [Collector] so tests can inject a no-op implementation.
type Recorder interface {
	RecordReminderDelivered()
	RecordReminderFailure()
	RecordSchedulerTick(due int)
	RecordVisionAnalysis(source string)
	RecordVisionLatency(duration time.Duration)
}

// Vision analysis sources tracked by [Recorder.RecordVisionAnalysis].
const (
	VisionSourceCache = "cache"
	VisionSourceAI    = "ai"
	VisionSourceMock  = "mock"
)

// Collector is the Prometheus-backed [Recorder] implementation.
type Collector struct {
	remindersDelivered prometheus.Counter
	reminderFailures   prometheus.Counter
	schedulerTicks     prometheus.Counter
	remindersDue       prometheus.Counter
	visionAnalyses     *prometheus.CounterVec
	visionLatency      prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics on the registry.
func NewCollector(registry prometheus.Registerer) *Collector {
	c := &Collector{
		remindersDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutrisync_reminders_delivered_total",
			Help: "Total reminders successfully handed to the messaging gateway.",
		}),
		reminderFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutrisync_reminder_failures_total",
			Help: "Total reminder deliveries that failed at the gateway (not retried).",
		}),
		schedulerTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutrisync_scheduler_ticks_total",
			Help: "Total scheduler polling passes executed.",
		}),
		remindersDue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutrisync_reminders_due_total",
			Help: "Total due reminders picked up across polling passes.",
		}),
		visionAnalyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrisync_vision_analyses_total",
			Help: "Total food image analyses by result source.",
		}, []string{"source"}),
		visionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nutrisync_vision_latency_seconds",
			Help:    "Latency of vision sidecar analysis requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		c.remindersDelivered,
		c.reminderFailures,
		c.schedulerTicks,
		c.remindersDue,
		c.visionAnalyses,
		c.visionLatency,
	)

	return c
}

// RecordReminderDelivered counts a successful gateway hand-off.
func (c *Collector) RecordReminderDelivered() {
	c.remindersDelivered.Inc()
}

// RecordReminderFailure counts a failed (and dropped) delivery attempt.
func (c *Collector) RecordReminderFailure() {
	c.reminderFailures.Inc()
}

// RecordSchedulerTick counts one polling pass and the due reminders it found.
func (c *Collector) RecordSchedulerTick(due int) {
	c.schedulerTicks.Inc()
	c.remindersDue.Add(float64(due))
}

// RecordVisionAnalysis counts an analysis by its result source.
func (c *Collector) RecordVisionAnalysis(source string) {
	c.visionAnalyses.WithLabelValues(source).Inc()
}

// RecordVisionLatency records the duration of a sidecar round-trip.
func (c *Collector) RecordVisionLatency(duration time.Duration) {
	c.visionLatency.Observe(duration.Seconds())
}

// Handler returns the HTTP handler exposing the /metrics endpoint.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Noop is a [Recorder] that discards everything. Used in tests.
type Noop struct{}

func (Noop) RecordReminderDelivered()          {}
func (Noop) RecordReminderFailure()            {}
func (Noop) RecordSchedulerTick(int)           {}
func (Noop) RecordVisionAnalysis(string)       {}
func (Noop) RecordVisionLatency(time.Duration) {}
