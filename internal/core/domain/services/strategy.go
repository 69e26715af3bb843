package services

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/roster"
	"orderflow/internal/pkg/errs"
)

// ErrNoAgentsAvailable is returned by every strategy when the roster is empty.
// It is an expected outcome, not a failure: callers leave the order unassigned.
var ErrNoAgentsAvailable = errors.New("no agents available")

// StrategyName is the configuration value selecting a strategy.
type StrategyName string

const (
	RoundRobinStrategy   StrategyName = "round_robin"
	LoadBalancedStrategy StrategyName = "load_balanced"
)

// PickState gives strategies access to the state they need. Implementations
// are bound to the same transaction as the assignment they serve.
type PickState interface {
	// Cursor returns the last agent picked by round-robin, or nil.
	Cursor(ctx context.Context) (*kernel.UUID, error)
	// SaveCursor overwrites the round-robin cursor.
	SaveCursor(ctx context.Context, agentID kernel.UUID) error
	// ActiveLoad counts, per agent, today's orders not yet in a terminal status.
	ActiveLoad(ctx context.Context, agents []kernel.UUID) (map[kernel.UUID]int, error)
}

// AgentPicker selects one agent from a roster.
//
// The set of pickers is closed: RoundRobin and LoadBalanced. Both sort the
// roster by agent id before picking.
type AgentPicker interface {
	Name() StrategyName
	Pick(ctx context.Context, rosterIDs []kernel.UUID, state PickState) (kernel.UUID, error)
}

// NewAgentPicker resolves the configured strategy. An empty name selects round-robin.
func NewAgentPicker(name string) (AgentPicker, error) {
	switch StrategyName(name) {
	case "", RoundRobinStrategy:
		return RoundRobin{}, nil
	case LoadBalancedStrategy:
		return LoadBalanced{}, nil
	default:
		return nil, errs.NewValueIsInvalidErrorWithCause("strategy", fmt.Errorf("%q is not supported", name))
	}
}

// RoundRobin picks the agent following the cursor in id order, wrapping to
// the first agent when the cursor is absent, stale or at the end.
type RoundRobin struct{}

func (RoundRobin) Name() StrategyName { return RoundRobinStrategy }

func (RoundRobin) Pick(ctx context.Context, rosterIDs []kernel.UUID, state PickState) (kernel.UUID, error) {
	if len(rosterIDs) == 0 {
		return kernel.UUID{}, ErrNoAgentsAvailable
	}
	sorted := roster.Sorted(rosterIDs)

	cursor, err := state.Cursor(ctx)
	if err != nil {
		return kernel.UUID{}, err
	}

	next := 0
	if cursor != nil {
		for i, id := range sorted {
			if id.IsEqual(*cursor) {
				next = (i + 1) % len(sorted)
				break
			}
		}
	}

	picked := sorted[next]
	if err = state.SaveCursor(ctx, picked); err != nil {
		return kernel.UUID{}, err
	}
	return picked, nil
}

// LoadBalanced picks the agent with the fewest active orders today; ties go
// to the first agent in id order.
type LoadBalanced struct{}

func (LoadBalanced) Name() StrategyName { return LoadBalancedStrategy }

func (LoadBalanced) Pick(ctx context.Context, rosterIDs []kernel.UUID, state PickState) (kernel.UUID, error) {
	if len(rosterIDs) == 0 {
		return kernel.UUID{}, ErrNoAgentsAvailable
	}
	sorted := roster.Sorted(rosterIDs)

	load, err := state.ActiveLoad(ctx, sorted)
	if err != nil {
		return kernel.UUID{}, err
	}

	best := sorted[0]
	bestLoad := load[best]
	for _, id := range sorted[1:] {
		if load[id] < bestLoad {
			best, bestLoad = id, load[id]
		}
	}
	return best, nil
}
