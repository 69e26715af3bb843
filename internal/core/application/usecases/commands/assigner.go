package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
)

// Assignment outcomes recorded in metrics.
const (
	outcomeAssigned        = "assigned"
	outcomeAlreadyAssigned = "already_assigned"
	outcomeNoAgents        = "no_agents"
	outcomeFailed          = "failed"
)

// assignResult is what one locked assignment attempt produced.
type assignResult struct {
	Agent    *kernel.UUID
	Assigned bool
	Events   []event.Event
}

// assigner runs the per-order locked assignment shared by every handler that
// hands orders to agents.
type assigner struct {
	uowFactory UoWFactory
	picker     services.AgentPicker
	rt         Runtime
}

func newAssigner(uowFactory UoWFactory, picker services.AgentPicker, rt Runtime) assigner {
	if picker == nil {
		picker = services.RoundRobin{}
	}
	return assigner{uowFactory: uowFactory, picker: picker, rt: rt}
}

// assignOne assigns orderID in its own transaction. An order that already has
// an agent yields that agent. An empty roster yields no agent and no error.
func (a assigner) assignOne(
	ctx context.Context,
	orderID kernel.UUID,
	reason assignment.Reason,
	operator *kernel.UUID,
) (assignResult, error) {
	strategy := string(a.picker.Name())
	uow := a.uowFactory.Create()

	current, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return assignResult{}, err
	}
	if current.HasAgent() {
		a.rt.Metrics.IncAssignment(strategy, outcomeAlreadyAssigned)
		return assignResult{Agent: current.Agent()}, nil
	}
	if !assignableByEngine(current.Status()) {
		return assignResult{}, fmt.Errorf("%w: %s", order.ErrNotAssignable, current.Status())
	}

	rosterIDs, err := uow.RosterRepository().ActiveAgentIDs(ctx, current.OutletID(), a.rt.today())
	if err != nil {
		return assignResult{}, err
	}
	if len(rosterIDs) == 0 {
		a.rt.Metrics.IncAssignment(strategy, outcomeNoAgents)
		return assignResult{}, nil
	}

	if err = uow.Begin(ctx); err != nil {
		return assignResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	locked, err := uow.OrderRepository().GetForUpdate(ctx, orderID)
	if err != nil {
		return assignResult{}, err
	}
	// a concurrent caller may have won while we waited for the lock
	if locked.HasAgent() {
		a.rt.Metrics.IncAssignment(strategy, outcomeAlreadyAssigned)
		return assignResult{Agent: locked.Agent()}, nil
	}
	if !assignableByEngine(locked.Status()) {
		return assignResult{}, fmt.Errorf("%w: %s", order.ErrNotAssignable, locked.Status())
	}

	agent, events, err := a.assignLocked(ctx, uow, locked, reason, operator)
	if errors.Is(err, services.ErrNoAgentsAvailable) {
		a.rt.Metrics.IncAssignment(strategy, outcomeNoAgents)
		return assignResult{}, nil
	}
	if err != nil {
		a.rt.Metrics.IncAssignment(strategy, outcomeFailed)
		return assignResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		a.rt.Metrics.IncAssignment(strategy, outcomeFailed)
		return assignResult{}, err
	}

	a.rt.Metrics.IncAssignment(strategy, outcomeAssigned)
	return assignResult{Agent: &agent, Assigned: true, Events: events}, nil
}

// assignLocked picks an agent for o, which the caller holds locked inside
// uow's transaction, and persists the assignment and its audit record.
// It returns services.ErrNoAgentsAvailable when the roster is empty.
func (a assigner) assignLocked(
	ctx context.Context,
	uow UoW,
	o *order.Order,
	reason assignment.Reason,
	operator *kernel.UUID,
) (kernel.UUID, []event.Event, error) {
	today := a.rt.today()

	rosterIDs, err := uow.RosterRepository().ActiveAgentIDs(ctx, o.OutletID(), today)
	if err != nil {
		return kernel.UUID{}, nil, err
	}

	state := &txPickState{uow: uow, outletID: o.OutletID(), day: today, loc: a.rt.loc()}
	agent, err := a.picker.Pick(ctx, rosterIDs, state)
	if err != nil {
		return kernel.UUID{}, nil, err
	}

	prior := o.Status()
	if err = o.Assign(agent); err != nil {
		return kernel.UUID{}, nil, err
	}
	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return kernel.UUID{}, nil, err
	}

	now := a.rt.now()
	record, err := assignment.NewRecord(o.ID(), agent, string(a.picker.Name()), operator, reason, now)
	if err != nil {
		return kernel.UUID{}, nil, err
	}
	if err = uow.AssignmentLog().Append(ctx, record); err != nil {
		return kernel.UUID{}, nil, err
	}

	tr := event.Transition{PriorStatus: prior, NewStatus: o.Status(), Reason: string(reason)}
	a.rt.audit(ctx, o, tr, map[string]any{"strategy": string(a.picker.Name())})

	ev := event.ForOrder(event.OrderAssigned, o, tr, now, map[string]string{
		"strategy": string(a.picker.Name()),
	})
	return agent, []event.Event{ev}, nil
}

// assignableByEngine reports whether AssignOne and the backlog sweep may pick
// up an order. NoStock orders are only handed out by the stock guard.
func assignableByEngine(s order.Status) bool {
	return s.AwaitsAgent()
}

// txPickState serves strategy state from the assignment's own transaction.
type txPickState struct {
	uow      UoW
	outletID kernel.UUID
	day      kernel.Date
	loc      *time.Location
}

func (s *txPickState) Cursor(ctx context.Context) (*kernel.UUID, error) {
	key := cursorKey(s.outletID)
	if err := s.uow.Settings().Lock(ctx, key); err != nil {
		return nil, err
	}

	var raw string
	found, err := s.uow.Settings().Get(ctx, key, &raw)
	if err != nil {
		return nil, err
	}
	if !found || raw == "" {
		return nil, nil
	}

	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		// an unreadable cursor behaves like an absent one
		return nil, nil //nolint:nilerr
	}
	return &id, nil
}

func (s *txPickState) SaveCursor(ctx context.Context, agentID kernel.UUID) error {
	return s.uow.Settings().Set(ctx, cursorKey(s.outletID), agentID.String())
}

// ActiveLoad serializes load-balanced picks of one outlet on a settings row
// so two concurrent picks cannot read the same counts.
func (s *txPickState) ActiveLoad(ctx context.Context, agents []kernel.UUID) (map[kernel.UUID]int, error) {
	if err := s.uow.Settings().Lock(ctx, loadLockKey(s.outletID)); err != nil {
		return nil, err
	}
	return s.uow.OrderRepository().CountActiveByAgent(ctx, agents, s.day.Start(s.loc), s.day.End(s.loc))
}
