// Package rosterrepo persists the agent directory and daily roster entries.
package rosterrepo

import (
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/roster"

	"github.com/google/uuid"
)

type AgentDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OutletID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"type:varchar(255);not null"`
	IsSales       bool      `gorm:"not null;default:true"`
	DefaultRoster bool      `gorm:"not null;default:false"`
	Active        bool      `gorm:"not null;default:true"`
}

func (AgentDTO) TableName() string {
	return "agents"
}

// RosterEntryDTO is unique on (outlet, business date, agent).
type RosterEntryDTO struct {
	OutletID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessDate string    `gorm:"type:varchar(10);primaryKey"`
	AgentID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Active       bool      `gorm:"not null"`
}

func (RosterEntryDTO) TableName() string {
	return "roster_entries"
}

func agentFromDomain(a *roster.Agent) AgentDTO {
	return AgentDTO{
		ID:            a.ID().Bytes(),
		OutletID:      a.OutletID().Bytes(),
		Name:          a.Name(),
		IsSales:       a.IsSales(),
		DefaultRoster: a.InDefaultRoster(),
		Active:        a.IsActive(),
	}
}

func agentToDomain(dto AgentDTO) (*roster.Agent, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	outletID, err := kernel.UUIDFromBytes(dto.OutletID[:])
	if err != nil {
		return nil, err
	}
	return roster.NewAgent(id, outletID, dto.Name, dto.IsSales, dto.DefaultRoster, dto.Active)
}

func entryFromDomain(e roster.Entry) RosterEntryDTO {
	return RosterEntryDTO{
		OutletID:     e.OutletID.Bytes(),
		BusinessDate: e.Date.String(),
		AgentID:      e.AgentID.Bytes(),
		Active:       e.Active,
	}
}
