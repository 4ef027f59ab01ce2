// Package control
// Author: momentics <momentics@gmail.com>
//
// Hot-reload, runtime metrics, configuration control, and debug introspection layer
// shared by the echo and prime-check servers.
//
// Provides concurrent-safe state handling primitives including:
//   - Snapshot config reads and merged updates
//   - Reload observers, invoked after each update
//   - Counters and gauges for connection and request telemetry
//   - Debug probe registration, including CPU feature probes
package control
