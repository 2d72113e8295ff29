/*
Package metrics provides Prometheus instrumentation for the kernel.

Counters and gauges cover task lifecycle (registered, completed,
failed, killed, running), message verification, the data pool and
scheduler pass latency. Register installs the collectors; Handler
serves the /metrics endpoint.
*/
package metrics
