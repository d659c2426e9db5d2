// Package service connects editor events to the topology core.
//
// # Editor
//
// EditorService implements Editor, the event surface of a drawing tool:
// edges drawn and deleted, vertices deleted, tag choices, loaded
// documents and prefilled hosts and networks. It owns the topology graph
// and holds a mutex around every call, since the graph itself is not
// synchronized.
//
// A drawn edge is committed immediately as tagged. The tool then asks the
// user for the tag mode and reports it with OnTagChoiceConfirmed, which
// runs the untagged check; cancelling deletes the edge.
//
// # Events
//
// Every accepted change is published on the EventBus. Rejected operations
// publish EventRejected with the reason code and operator message from
// the domain package, are logged at warn level and counted in telemetry.
//
// # Snapshots
//
// SnapshotService stores JSON exports of the design in a
// repository.SnapshotStore and loads them back through OnDocumentLoaded.
package service
