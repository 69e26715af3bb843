package rosterrepo

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/roster"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRosterRepository implements ports.RosterRepository using GORM.
type GormRosterRepository struct {
	db *gorm.DB
}

func NewGormRosterRepository(db *gorm.DB) *GormRosterRepository {
	return &GormRosterRepository{db: db}
}

func (r *GormRosterRepository) AddAgent(ctx context.Context, agent *roster.Agent) error {
	if err := agent.Validate(); err != nil {
		return err
	}
	dto := agentFromDomain(agent)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormRosterRepository) ListAgents(ctx context.Context, outletID kernel.UUID) ([]*roster.Agent, error) {
	var dtos []AgentDTO
	if err := r.db.WithContext(ctx).Where("outlet_id = ?", outletID.Bytes()).Order("id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	agents := make([]*roster.Agent, 0, len(dtos))
	for _, dto := range dtos {
		a, err := agentToDomain(dto)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, nil
}

// UpsertEntries inserts entries; existing (outlet, date, agent) rows get the new active flag.
func (r *GormRosterRepository) UpsertEntries(ctx context.Context, entries []roster.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	dtos := make([]RosterEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, entryFromDomain(e))
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "outlet_id"}, {Name: "business_date"}, {Name: "agent_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"active"}),
		}).
		Create(&dtos).Error
}

func (r *GormRosterRepository) DeactivateExcept(
	ctx context.Context,
	outletID kernel.UUID,
	date kernel.Date,
	keep []kernel.UUID,
) error {
	q := r.db.WithContext(ctx).
		Model(&RosterEntryDTO{}).
		Where("outlet_id = ? AND business_date = ?", outletID.Bytes(), date.String())
	if len(keep) > 0 {
		raw := make([]uuid.UUID, 0, len(keep))
		for _, id := range keep {
			raw = append(raw, id.Bytes())
		}
		q = q.Where("agent_id NOT IN ?", raw)
	}
	return q.Update("active", false).Error
}

// ActiveAgentIDs returns the roster ordered by agent id.
func (r *GormRosterRepository) ActiveAgentIDs(
	ctx context.Context,
	outletID kernel.UUID,
	date kernel.Date,
) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("roster_entries AS re").
		Joins("JOIN agents AS a ON a.id = re.agent_id").
		Where("re.outlet_id = ? AND re.business_date = ? AND re.active = ?", outletID.Bytes(), date.String(), true).
		Where("a.active = ? AND a.is_sales = ?", true, true).
		Order("re.agent_id").
		Pluck("re.agent_id", &raw).Error
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, v := range raw {
		id, idErr := kernel.UUIDFromBytes(v[:])
		if idErr != nil {
			return nil, idErr
		}
		ids = append(ids, id)
	}
	return ids, nil
}
