// Package repository defines storage for exported design snapshots.
//
// A snapshot is an explicit export of the editor's graph: the serialized
// topology document plus summary columns for listing. The live design is
// never read from storage implicitly; loading a snapshot goes through the
// same restore path as any other document.
//
// The sqlite subpackage implements SnapshotStore on modernc.org/sqlite and
// migrates its schema on open.
package repository
