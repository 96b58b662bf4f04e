// Package model defines core types shared by every stage of query evaluation.
//
// # Identity Types
//
//   - EntryID: 64-bit identifier of an indexed entry (max 2^62-1)
//   - FieldID: Dense schema-local field identifier (uint32)
//
// # Estimates
//
//   - Confidence: Trust level of a count estimate (Low, Normal, High)
//   - UnknownCount: Sentinel for estimates that cannot be bounded
//
// # Results
//
//   - Result: Entry id with its accumulated score
package model
