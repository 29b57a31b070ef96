// Package notify provides StatusListener implementations: a structured log
// writer, Prometheus metrics and a Kafka event publisher.
package notify
