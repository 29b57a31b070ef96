// Package ops serves the operational HTTP endpoints of the server: a liveness
// probe, Prometheus metrics and a read-only JSON view of the alarm state.
package ops
