// Package observe provides telemetry for game-data API fetches: a structured
// JSON logger, OpenTelemetry tracing and metrics, and exporter wiring.
//
// The Observer bundles the three concerns behind one handle so the client
// can be constructed with real telemetry in the web tool and a no-op
// observer in tests.
package observe
