// Package local implements index.Index with an in-process nearest-neighbor
// structure and durable BadgerDB snapshots.
//
// Records live in memory behind a read-write mutex; queries are brute-force
// cosine scans, which is exact and fast enough for the collection sizes this
// index serves. Persist writes every record plus a checksummed manifest into
// a BadgerDB at the configured path; Restore reloads and verifies the
// snapshot, replacing the in-memory state.
package local
