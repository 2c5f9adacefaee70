// Package hub implements the process-local broadcast hub: a publish/subscribe
// router that fans live trading events out to WebSocket clients grouped into
// named channels.
//
// Producers call Engine.Broadcast, which validates the message, applies the
// channel's sustained rate limit, and admits it to a bounded queue. A single
// dispatcher goroutine drains the queue and fans each message out to a
// snapshot of the channel's members; every connection has its own write
// goroutine with a buffered send channel, so one slow or broken client can
// never stall delivery to the rest. Failed connections are collected during
// the fan-out and unregistered after it, never mid-iteration.
package hub
