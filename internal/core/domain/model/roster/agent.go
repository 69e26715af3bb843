package roster

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var ErrAgentIsNotConstructed = errors.New("Agent must be created via NewAgent constructor")

// Agent is a directory entry for a person who can receive orders.
type Agent struct {
	id            kernel.UUID
	outletID      kernel.UUID
	name          string
	isSales       bool
	defaultRoster bool
	active        bool

	isConstructed bool
}

func NewAgent(id, outletID kernel.UUID, name string, isSales, defaultRoster, active bool) (*Agent, error) {
	a := &Agent{
		isSales:       isSales,
		defaultRoster: defaultRoster,
		active:        active,
		isConstructed: true,
	}
	if err := errors.Join(a.setID(id), a.setOutlet(outletID), a.setName(name)); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Agent) Validate() error {
	if a == nil || !a.isConstructed {
		return ErrAgentIsNotConstructed
	}
	return nil
}

func (a *Agent) ID() kernel.UUID { return a.id }
func (a *Agent) OutletID() kernel.UUID { return a.outletID }
func (a *Agent) Name() string { return a.name }
func (a *Agent) IsSales() bool { return a.isSales }
func (a *Agent) InDefaultRoster() bool { return a.defaultRoster }
func (a *Agent) IsActive() bool { return a.active }

// Eligible reports whether the agent may appear on a roster at all.
func (a *Agent) Eligible() bool {
	return a.active && a.isSales
}

func (a *Agent) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *Agent) setOutlet(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("outlet", err)
	}
	a.outletID = id
	return nil
}

func (a *Agent) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	a.name = name
	return nil
}
