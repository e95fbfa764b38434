// Package integrity validates structural invariants of the catalog tree.
//
// All checks run over a flattened snapshot and never call the remote
// service or repair anything. A report carries the true finding totals;
// only the listed findings are capped.
//
// # HTTP Endpoints
//
//   - GET /integrity/catalog : Run all checks over the current snapshot.
package integrity
