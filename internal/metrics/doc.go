// Package metrics records Prometheus metrics for a single run and writes them
// in the text exposition format.
package metrics
