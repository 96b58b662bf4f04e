// Package store defines the read-only view of an index that query evaluation
// consumes.
//
// A Source hands out point-in-time Snapshots. A Snapshot exposes per-field
// term dictionaries, posting containers and per-entry stored values:
//
//	┌──────────────┐  Lookup/Scan   ┌────────────────┐
//	│ TermDictionary│──────────────▶│ TermValue (tag) │
//	└──────────────┘                └───────┬────────┘
//	                       Single ──────────┤
//	                       SmallSet ─▶ SmallSet(ref) []byte (packed ids)
//	                       LargeSet ─▶ OpenSet(ref) SortedSet
//
// Byte slices returned by a Snapshot are borrowed views. They stay valid until
// the Snapshot is closed and must not be modified.
package store
