// Package cache provides the two-tier response cache for game-data API calls.
//
// It layers a bounded in-memory LRU tier over an unbounded disk snapshot tier.
// The disk tier is the source of truth across process restarts; the memory tier
// is a read accelerator over it. Entries carry an absolute expiry and may be
// negative (a recorded "this endpoint has no data for this variant"), which
// callers use to suppress repeated requests against dead endpoints.
package cache
