// Package assignment holds the append-only audit record written for every
// successful order assignment.
package assignment

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// Reason explains which path produced an assignment.
type Reason string

const (
	ReasonAuto          Reason = "auto"
	ReasonBacklog       Reason = "backlog"
	ReasonStockRecovery Reason = "stock_recovery"
)

// Record is written once per successful assignment and never mutated.
// A nil operator means the engine assigned automatically.
type Record struct {
	id         kernel.UUID
	orderID    kernel.UUID
	agentID    kernel.UUID
	strategy   string
	operatorID *kernel.UUID
	reason     Reason
	metadata   map[string]any
	createdAt  time.Time
}

func NewRecord(
	orderID, agentID kernel.UUID,
	strategy string,
	operatorID *kernel.UUID,
	reason Reason,
	createdAt time.Time,
) (Record, error) {
	if strategy == "" {
		return Record{}, errs.NewValueIsRequiredError("strategy")
	}
	if reason == "" {
		return Record{}, errs.NewValueIsRequiredError("reason")
	}
	if err := errors.Join(orderID.Validate(), agentID.Validate()); err != nil {
		return Record{}, err
	}

	return Record{
		id:         kernel.NewUUID(),
		orderID:    orderID,
		agentID:    agentID,
		strategy:   strategy,
		operatorID: operatorID,
		reason:     reason,
		metadata:   map[string]any{"reason": string(reason)},
		createdAt:  createdAt,
	}, nil
}

// RestoreRecord rebuilds a record read back from the audit log.
func RestoreRecord(
	id, orderID, agentID kernel.UUID,
	strategy string,
	operatorID *kernel.UUID,
	metadata map[string]any,
	createdAt time.Time,
) Record {
	reason, _ := metadata["reason"].(string)
	return Record{
		id:         id,
		orderID:    orderID,
		agentID:    agentID,
		strategy:   strategy,
		operatorID: operatorID,
		reason:     Reason(reason),
		metadata:   metadata,
		createdAt:  createdAt,
	}
}

func (r Record) ID() kernel.UUID { return r.id }
func (r Record) OrderID() kernel.UUID { return r.orderID }
func (r Record) AgentID() kernel.UUID { return r.agentID }
func (r Record) Strategy() string { return r.strategy }
func (r Record) OperatorID() *kernel.UUID { return r.operatorID }
func (r Record) Reason() Reason { return r.reason }
func (r Record) CreatedAt() time.Time { return r.createdAt }

// Metadata returns a copy of the free-form metadata.
func (r Record) Metadata() map[string]any {
	out := make(map[string]any, len(r.metadata))
	for k, v := range r.metadata {
		out[k] = v
	}
	return out
}
