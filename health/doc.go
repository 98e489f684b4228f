// Package health provides liveness and readiness checks for the checklist
// tool's web process: is the cache directory writable, did the disk snapshot
// load cleanly, and is the game-data API reachable.
package health
