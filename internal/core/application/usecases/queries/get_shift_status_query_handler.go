package queries

import (
	"context"
	"database/sql"
	"errors"

	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetShiftStatusQueryHandler reads shift state straight from the shifts and
// roster_entries tables. The (outlet, date) shift row is created on first
// query if missing.
type GetShiftStatusQueryHandler struct {
	db *gorm.DB
}

func NewGetShiftStatusQueryHandler(db *gorm.DB) GetShiftStatusQueryHandler {
	return GetShiftStatusQueryHandler{db: db}
}

func (h GetShiftStatusQueryHandler) Handle(
	ctx context.Context,
	query GetShiftStatusQuery,
) (GetShiftStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetShiftStatusQueryResponse{}, err
	}

	resp := GetShiftStatusQueryResponse{
		OutletID: query.OutletID(),
		Date:     query.Date(),
	}

	err := h.db.WithContext(ctx).Exec(`
		INSERT INTO shifts (id, outlet_id, business_date)
		VALUES (?, ?, ?)
		ON CONFLICT (outlet_id, business_date) DO NOTHING
	`, kernel.NewUUID().Bytes(), query.OutletID().Bytes(), query.Date().String()).Error
	if err != nil {
		return GetShiftStatusQueryResponse{}, err
	}

	var (
		openAt, closeAt    sql.NullTime
		openedBy, closedBy uuid.NullUUID
	)
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			open_at,
			close_at,
			opened_by,
			closed_by
		FROM shifts
		WHERE outlet_id = ? AND business_date = ?
	`, query.OutletID().Bytes(), query.Date().String()).Row()

	err = row.Scan(&openAt, &closeAt, &openedBy, &closedBy)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return GetShiftStatusQueryResponse{}, err
	default:
		if openAt.Valid {
			t := openAt.Time
			resp.OpenAt = &t
		}
		if closeAt.Valid {
			t := closeAt.Time
			resp.CloseAt = &t
		}
		if resp.OpenedBy, err = nullableID(openedBy); err != nil {
			return GetShiftStatusQueryResponse{}, err
		}
		if resp.ClosedBy, err = nullableID(closedBy); err != nil {
			return GetShiftStatusQueryResponse{}, err
		}
		resp.IsOpen = resp.OpenAt != nil && resp.CloseAt == nil
	}

	var active int64
	err = h.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM roster_entries re
		JOIN agents a ON a.id = re.agent_id
		WHERE re.outlet_id = ? AND re.business_date = ? AND re.active AND a.active AND a.is_sales
	`, query.OutletID().Bytes(), query.Date().String()).Row().Scan(&active)
	if err != nil {
		return GetShiftStatusQueryResponse{}, err
	}
	resp.ActiveAgents = int(active)

	return resp, nil
}

func nullableID(raw uuid.NullUUID) (*kernel.UUID, error) {
	if !raw.Valid {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw.UUID[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
