// Package taxonomy implements the catalog tree domain.
//
// It fetches the nested catalog tree from the PIM service and flattens it
// into a snapshot of catalog nodes with materialized paths, a parent/child
// hierarchy map and aggregate statistics.
//
// # Components
//
//   - Flatten: Converts the raw nested tree into a flat Snapshot.
//   - Resolver: Matches supplier breadcrumb strings to catalog nodes using
//     a four-step strategy (exact path, unique trailing segment, fuzzy
//     variants, substring containment).
//   - Creator: Creates missing category paths node by node, re-fetching the
//     tree after each creation to confirm visibility.
//   - Cache: TTL snapshot cache with request coalescing.
//   - Service: Bundles the above behind one API.
//
// # HTTP Endpoints
//
//   - GET /taxonomy/resolve : Resolve a breadcrumb string to a node.
//   - GET /taxonomy/stats   : Aggregate statistics of the tree.
package taxonomy
