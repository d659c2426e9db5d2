// Package domain defines the entities of a pod network design.
//
// # Core Types
//
// Host owns an ordered list of Interfaces. Network owns a fixed pool of
// Ports and carries the public flag. Connection is the only edge kind: it
// links one Interface to one Port and is either tagged or untagged.
//
// Entities hold ids, not pointers; relations are resolved through the
// topology graph's registries and indexes.
//
// # Errors
//
// Every failure in the core wraps one of the sentinel errors declared in
// errors.go. ReasonCode turns an error into the code reported to editors
// and UserMessage into operator-facing text.
//
// # Naming
//
// Network and host names are 1 to 100 characters of letters, digits and
// dashes, starting with a letter and not ending with a dash.
package domain
