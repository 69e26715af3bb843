// Package order provides the Order aggregate mutated by the orchestration engine.
//
// The package includes:
//   - Order: status, assigned agent, saved previous status and reset counter
//   - Status: closed enumeration of workflow states, each mapped to a Category
//   - LineItem: product requirements used by the stock guard
//
// Key business rules:
//   - An agent is never attached to New, NoStock or UnderReview orders
//   - An Assigned order always has an agent
//   - The previous status exists only while the order is in NoStock
//   - Recovery from NoStock never lands in a terminal status
//
// Engine code branches on Category rather than on individual statuses, so the
// shift-close escalation table stays data.
package order
