// Package adapter discovers live hosts and turns them into prefill entries.
//
// NmapAdapter scans the configured targets with nmap and emits one host
// per machine that answered, with one interface per IP address. The result
// is a loader.Prefill that the editor service applies like any other
// prefill document: hosts arrive unwired and are connected by the operator.
//
// Conversion is split from scanning so HostsFromRun can be exercised with
// canned nmap results.
package adapter
