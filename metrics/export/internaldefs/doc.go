// Package internaldefs holds the stable metric name and bucket definitions
// shared by the exporter implementations.
//
// Counter and histogram definitions live here so the Prometheus and OTel
// exporters render identical names and boundaries. A change here affects
// every exporter at once.
package internaldefs
