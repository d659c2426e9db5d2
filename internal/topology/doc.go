// Package topology holds the authoritative model of a pod design and the
// rules that keep it consistent while it is edited.
//
// Graph stores hosts, interfaces, networks, ports and connections in id
// keyed registries, with an index from each interface and port to the
// connections attached to it. Every mutating method either commits fully
// or returns an error and leaves the graph untouched.
//
// Connect runs three checks before committing an edge:
//
//   - Validator: the endpoints must be an interface and a port (or
//     network); same-category edges are rejected.
//   - Enforcer: an interface carries at most one untagged connection.
//   - Allocator: picks the port round-robin, skipping occupied ports.
//
// A Graph is not safe for concurrent use.
package topology
