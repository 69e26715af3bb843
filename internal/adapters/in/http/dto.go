package http

import (
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/shift"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type LineItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type NewOrderRequest struct {
	ID        string            `json:"id" validate:"omitempty,uuid"`
	OutletID  string            `json:"outlet_id" validate:"required,uuid"`
	PartnerID string            `json:"partner_id" validate:"omitempty,uuid"`
	Items     []LineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type OperatorRequest struct {
	OperatorID string `json:"operator_id" validate:"omitempty,uuid"`
}

type BacklogRequest struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

type RosterRequest struct {
	Date     string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	AgentIDs []string `json:"agent_ids" validate:"required,min=1,dive,uuid"`
}

type InventoryChangeRequest struct {
	ProductID   string `json:"product_id" validate:"required,uuid"`
	WarehouseID string `json:"warehouse_id" validate:"required,uuid"`
	Delta       int    `json:"delta"`
}

type AssignmentResponse struct {
	OrderID  string  `json:"order_id"`
	AgentID  *string `json:"agent_id"`
	Assigned bool    `json:"assigned"`
}

type BacklogResponse struct {
	Assigned int    `json:"assigned"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
	Error    string `json:"error,omitempty"`
}

type ShiftResponse struct {
	OutletID     string     `json:"outlet_id"`
	Date         string     `json:"date"`
	IsOpen       bool       `json:"is_open"`
	OpenAt       *time.Time `json:"open_at,omitempty"`
	CloseAt      *time.Time `json:"close_at,omitempty"`
	OpenedBy     *string    `json:"opened_by,omitempty"`
	ClosedBy     *string    `json:"closed_by,omitempty"`
	ActiveAgents *int       `json:"active_agents,omitempty"`
}

type OpenShiftResponse struct {
	Shift     ShiftResponse    `json:"shift"`
	Activated int              `json:"activated"`
	Promoted  int              `json:"promoted"`
	Backlog   *BacklogResponse `json:"backlog,omitempty"`
	Error     string           `json:"error,omitempty"`
}

type CloseShiftResponse struct {
	Shift     ShiftResponse  `json:"shift"`
	Outcomes  map[string]int `json:"outcomes"`
	Untouched int            `json:"untouched"`
	Failed    int            `json:"failed"`
	Error     string         `json:"error,omitempty"`
}

type RosterAgentResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	InDefaultRoster bool   `json:"in_default_roster"`
	OnRoster        bool   `json:"on_roster"`
	ActiveOrders    int    `json:"active_orders"`
}

type UnassignedOrderResponse struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	ResetCount int       `json:"reset_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type InventoryChangeResponse struct {
	PartnerID     string `json:"partner_id,omitempty"`
	Shortages     int    `json:"shortages"`
	Restored      int    `json:"restored"`
	Reassigned    int    `json:"reassigned"`
	ReturnedToNew int    `json:"returned_to_new"`
	Skipped       int    `json:"skipped"`
	Failed        int    `json:"failed"`
	Error         string `json:"error,omitempty"`
}

func optionalString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func shiftFromState(st shift.State) ShiftResponse {
	return ShiftResponse{
		OutletID: st.OutletID.String(),
		Date:     st.Date.String(),
		IsOpen:   st.IsOpen,
		OpenAt:   st.OpenAt,
		CloseAt:  st.CloseAt,
		OpenedBy: optionalString(st.OpenedBy),
		ClosedBy: optionalString(st.ClosedBy),
	}
}

func shiftFromStatus(st queries.GetShiftStatusQueryResponse) ShiftResponse {
	active := st.ActiveAgents
	return ShiftResponse{
		OutletID:     st.OutletID.String(),
		Date:         st.Date.String(),
		IsOpen:       st.IsOpen,
		OpenAt:       st.OpenAt,
		CloseAt:      st.CloseAt,
		OpenedBy:     optionalString(st.OpenedBy),
		ClosedBy:     optionalString(st.ClosedBy),
		ActiveAgents: &active,
	}
}

func backlogFromResult(res commands.BacklogResult) BacklogResponse {
	return BacklogResponse{
		Assigned: res.Assigned,
		Skipped:  res.Skipped,
		Failed:   res.Failed,
		Error:    errString(res.Err),
	}
}
