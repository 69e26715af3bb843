package services

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// ResetRule is the action the shift-close reset machine takes for a status category.
type ResetRule string

const (
	RuleNone         ResetRule = "none"
	RuleResetToNew   ResetRule = "reset_to_new"
	RuleReschedule   ResetRule = "reschedule_tomorrow"
	RuleEscalate     ResetRule = "escalate"
	RuleReleaseAgent ResetRule = "release_agent"
)

// Outcome codes written to the audit log and events.
const (
	OutcomeReset         = "reset_to_new"
	OutcomeEscalatedNew  = "contact_reset"
	OutcomeAutoCancelled = "auto_cancelled"
	OutcomeRescheduled   = "rescheduled_tomorrow"
	OutcomeAgentReleased = "agent_released"
)

// resetRules maps status categories to close-of-shift rules. Categories not
// listed are left untouched.
var resetRules = map[order.Category]ResetRule{
	order.CategoryFresh:           RuleResetToNew,
	order.CategoryScheduledToday:  RuleReschedule,
	order.CategoryContactSequence: RuleEscalate,
	order.CategoryDeferred:        RuleReleaseAgent,
}

// RuleFor returns the rule applied to orders of the given category.
func RuleFor(c order.Category) ResetRule {
	if rule, ok := resetRules[c]; ok {
		return rule
	}
	return RuleNone
}

// ResettableStatuses lists every status that some rule acts on.
func ResettableStatuses() []order.Status {
	categories := make([]order.Category, 0, len(resetRules))
	for c := range resetRules {
		categories = append(categories, c)
	}
	return order.StatusesIn(categories...)
}

// ResetOutcome records what the policy did to one order.
type ResetOutcome struct {
	Rule        ResetRule
	Code        string
	Changed     bool
	PriorStatus order.Status
	PriorAgent  *kernel.UUID
}

// ResetPolicy applies the escalation table to orders at shift close.
type ResetPolicy struct {
	loc           *time.Location
	defaultHour   int
	defaultMinute int
}

// NewResetPolicy builds a policy. Rescheduled orders without a time land at
// defaultHour:defaultMinute tomorrow in loc.
func NewResetPolicy(loc *time.Location, defaultHour, defaultMinute int) ResetPolicy {
	if loc == nil {
		loc = time.UTC
	}
	return ResetPolicy{loc: loc, defaultHour: defaultHour, defaultMinute: defaultMinute}
}

// DefaultResetPolicy reschedules to 09:00 in loc.
func DefaultResetPolicy(loc *time.Location) ResetPolicy {
	return NewResetPolicy(loc, 9, 0)
}

// Apply mutates o according to its category. now is the close instant.
func (p ResetPolicy) Apply(o *order.Order, now time.Time) (ResetOutcome, error) {
	out := ResetOutcome{
		Rule:        RuleFor(o.Category()),
		PriorStatus: o.Status(),
		PriorAgent:  o.Agent(),
	}

	switch out.Rule {
	case RuleResetToNew:
		if err := o.ResetToNew(); err != nil {
			return out, err
		}
		out.Code, out.Changed = OutcomeReset, true

	case RuleReschedule:
		if err := o.Reschedule(p.tomorrow(o.ScheduledAt(), now)); err != nil {
			return out, err
		}
		out.Code, out.Changed = OutcomeRescheduled, true

	case RuleEscalate:
		if o.ResetCount() == 0 {
			if err := o.ResetToNew(); err != nil {
				return out, err
			}
			out.Code = OutcomeEscalatedNew
		} else {
			if err := o.AutoCancel(); err != nil {
				return out, err
			}
			out.Code = OutcomeAutoCancelled
		}
		out.Changed = true

	case RuleReleaseAgent:
		out.Changed = o.ReleaseAgent()
		if out.Changed {
			out.Code = OutcomeAgentReleased
		}

	case RuleNone:
	}

	return out, nil
}

func (p ResetPolicy) tomorrow(scheduledAt *time.Time, now time.Time) time.Time {
	hour, minute := p.defaultHour, p.defaultMinute
	if scheduledAt != nil {
		local := scheduledAt.In(p.loc)
		hour, minute = local.Hour(), local.Minute()
	}
	return kernel.DateOf(now, p.loc).AddDays(1).At(hour, minute, p.loc)
}
