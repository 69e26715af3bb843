package roster

import (
	"errors"
	"sort"

	"orderflow/internal/core/domain/model/kernel"
)

// Entry marks one agent as on (or off) the roster of an outlet for a date.
// (outlet, date, agent) is unique.
type Entry struct {
	OutletID kernel.UUID
	Date     kernel.Date
	AgentID  kernel.UUID
	Active   bool
}

func NewEntry(outletID kernel.UUID, date kernel.Date, agentID kernel.UUID, active bool) (Entry, error) {
	if err := errors.Join(outletID.Validate(), date.Validate(), agentID.Validate()); err != nil {
		return Entry{}, err
	}
	return Entry{OutletID: outletID, Date: date, AgentID: agentID, Active: active}, nil
}

// DefaultEntries builds an active entry for every eligible default-roster agent.
func DefaultEntries(outletID kernel.UUID, date kernel.Date, agents []*Agent) ([]Entry, error) {
	entries := make([]Entry, 0, len(agents))
	for _, a := range agents {
		if !a.InDefaultRoster() || !a.Eligible() || !a.OutletID().IsEqual(outletID) {
			continue
		}
		e, err := NewEntry(outletID, date, a.ID(), true)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Sorted returns agent ids in the stable order every strategy relies on.
func Sorted(ids []kernel.UUID) []kernel.UUID {
	out := make([]kernel.UUID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}
