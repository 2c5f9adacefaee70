// Package server exposes the hub over HTTP: one WebSocket streaming
// endpoint per channel, health probes, a stats API, and Prometheus metrics.
// Connection-level abuse limits (global cap, per-IP cap, per-IP connection
// rate) are enforced before admission control runs.
package server
