// Package prometheus renders courseauth metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] accepts a [courseauth.Engine] and exposes an
// [net/http.Handler] covering every engine counter and the authenticate
// latency histogram. Counter names are prefixed courseauth_*_total.
//
// The package never registers anything in a global Prometheus registry;
// callers mount the Handler where they want it.
package prometheus
