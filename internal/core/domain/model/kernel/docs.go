// Package kernel provides the shared value objects of the order flow domain.
//
// The package includes:
//   - UUID: identifier value object with validation and a stable total order
//   - Date: a calendar date in the business timezone, the key of shifts and rosters
//
// Both types are immutable and safe for concurrent use.
package kernel
