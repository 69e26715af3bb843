// Package services contains the stateless domain services of the engine:
//
//   - AgentPicker strategies (round-robin, load-balanced) for assignment
//   - ResetPolicy, the shift-close escalation table
//   - StockGuard, the shortage and recovery decisions
//
// Services never touch persistence. State they need (cursor, loads, stock
// levels) is handed in by command handlers that own the transaction.
package services
