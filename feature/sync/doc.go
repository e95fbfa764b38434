// Package sync orchestrates full catalog synchronization runs.
//
// A run loads the staged items, resolves each item's breadcrumb against
// the current catalog snapshot under a bounded worker pool, creates
// category paths that resolve to nothing, downgrades creation failures to
// the configured root catalog, computes and persists the link rows, and
// archives the final snapshot to object storage.
//
// Every fallback is counted and the first few are listed in the run
// report; nothing falls back silently.
//
// # HTTP Endpoints
//
//   - POST /sync/run : Execute a run and return its report.
package sync
