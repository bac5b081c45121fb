// Package otel provides OpenTelemetry metric bindings for courseauth
// counters and histograms.
//
// [NewOTelExporter] registers an Int64ObservableCounter per engine counter
// and Int64ObservableGauges per histogram bucket. A single callback reads
// [courseauth.Engine.MetricsSnapshot] on each collection cycle; the package
// never owns the MeterProvider, callers supply the Meter.
package otel
