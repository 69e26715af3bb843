// Package http exposes the engine operations over a thin echo adapter.
// Handlers translate requests into commands and queries, dispatch the
// returned events and map domain errors to status codes.
package http

import (
	"context"
	"net/http"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/logger"

	"github.com/labstack/echo/v4"
)

type (
	createOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.CreateOrderResult, error)
	}
	assignOrderHandler interface {
		Handle(ctx context.Context, cmd commands.AssignOrderCommand) (commands.AssignOrderResult, error)
	}
	assignBacklogHandler interface {
		Handle(ctx context.Context, cmd commands.AssignBacklogCommand) (commands.BacklogResult, error)
	}
	openShiftHandler interface {
		Handle(ctx context.Context, cmd commands.OpenShiftCommand) (commands.OpenShiftResult, error)
	}
	closeShiftHandler interface {
		Handle(ctx context.Context, cmd commands.CloseShiftCommand) (commands.CloseShiftResult, error)
	}
	activateRosterHandler interface {
		Handle(ctx context.Context, cmd commands.ActivateDefaultRosterCommand) (int, error)
	}
	setRosterHandler interface {
		Handle(ctx context.Context, cmd commands.SetManualRosterCommand) ([]kernel.UUID, error)
	}
	inventoryChangedHandler interface {
		Handle(ctx context.Context, cmd commands.InventoryChangedCommand) (commands.InventoryChangedResult, error)
	}
	shiftStatusHandler interface {
		Handle(ctx context.Context, query queries.GetShiftStatusQuery) (queries.GetShiftStatusQueryResponse, error)
	}
	rosterHandler interface {
		Handle(ctx context.Context, query queries.GetRosterQuery) ([]queries.GetRosterQueryResponse, error)
	}
	unassignedOrdersHandler interface {
		Handle(ctx context.Context, query queries.GetUnassignedOrdersQuery) ([]queries.GetUnassignedOrdersQueryResponse, error)
	}
)

// Handlers groups the use cases the server exposes.
type Handlers struct {
	CreateOrder      createOrderHandler
	AssignOrder      assignOrderHandler
	AssignBacklog    assignBacklogHandler
	OpenShift        openShiftHandler
	CloseShift       closeShiftHandler
	ActivateRoster   activateRosterHandler
	SetRoster        setRosterHandler
	InventoryChanged inventoryChangedHandler

	ShiftStatus      shiftStatusHandler
	Roster           rosterHandler
	UnassignedOrders unassignedOrdersHandler
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	h      Handlers
	sink   ports.EventSink
	loc    *time.Location
	clock  func() time.Time
	logger *logger.Logger
}

func NewServer(h Handlers, sink ports.EventSink, loc *time.Location, log *logger.Logger) *Server {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Server{h: h, sink: sink, loc: loc, clock: time.Now, logger: log}
}

func (s *Server) today() kernel.Date {
	return kernel.DateOf(s.clock(), s.loc)
}

func (s *Server) dispatch(c echo.Context, events []event.Event) {
	if s.sink != nil && len(events) > 0 {
		s.sink.Dispatch(c.Request().Context(), events)
	}
}

func pathID(c echo.Context, name string) (kernel.UUID, error) {
	return kernel.UUIDFromString(c.Param(name))
}

func optionalID(raw string) (*kernel.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// bindAndValidate binds the body into dest and runs the struct validator.
// An empty body leaves dest untouched.
func bindAndValidate(c echo.Context, dest any) error {
	if err := c.Bind(dest); err != nil {
		return err
	}
	return c.Validate(dest)
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var req NewOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	orderID := kernel.NewUUID()
	if req.ID != "" {
		id, err := kernel.UUIDFromString(req.ID)
		if err != nil {
			return badRequest(c, "Invalid order id", err)
		}
		orderID = id
	}
	outletID, err := kernel.UUIDFromString(req.OutletID)
	if err != nil {
		return badRequest(c, "Invalid outlet id", err)
	}
	partnerID, err := optionalID(req.PartnerID)
	if err != nil {
		return badRequest(c, "Invalid partner id", err)
	}
	items := make([]order.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		productID, err := kernel.UUIDFromString(it.ProductID)
		if err != nil {
			return badRequest(c, "Invalid product id", err)
		}
		item, err := order.NewLineItem(productID, it.Quantity)
		if err != nil {
			return badRequest(c, "Invalid line item", err)
		}
		items = append(items, item)
	}

	cmd, err := commands.NewCreateOrderCommand(orderID, outletID, partnerID, items)
	if err != nil {
		return badRequest(c, "Invalid order data", err)
	}
	res, err := s.h.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err, "Failed to create order")
	}
	s.dispatch(c, res.Events)

	return c.JSON(http.StatusCreated, AssignmentResponse{
		OrderID:  orderID.String(),
		AgentID:  optionalString(res.Agent),
		Assigned: res.Agent != nil,
	})
}

// AssignOrder handles POST /api/v1/orders/:id/assign.
func (s *Server) AssignOrder(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid order id", err)
	}
	var req OperatorRequest
	if err = bindAndValidate(c, &req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	operator, err := optionalID(req.OperatorID)
	if err != nil {
		return badRequest(c, "Invalid operator id", err)
	}

	cmd, err := commands.NewAssignOrderCommand(orderID, operator)
	if err != nil {
		return badRequest(c, "Invalid assignment", err)
	}
	res, err := s.h.AssignOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err, "Failed to assign order")
	}
	s.dispatch(c, res.Events)

	return c.JSON(http.StatusOK, AssignmentResponse{
		OrderID:  orderID.String(),
		AgentID:  optionalString(res.Agent),
		Assigned: res.Assigned,
	})
}

// AssignBacklog handles POST /api/v1/outlets/:id/backlog. The window
// defaults to [start of today, now].
func (s *Server) AssignBacklog(c echo.Context) error {
	outletID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid outlet id", err)
	}
	var req BacklogRequest
	if err = bindAndValidate(c, &req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	now := s.clock().In(s.loc)
	from, to := s.today().Start(s.loc), now
	if req.From != nil {
		from = *req.From
	}
	if req.To != nil {
		to = *req.To
	}

	cmd, err := commands.NewAssignBacklogCommand(outletID, from, to)
	if err != nil {
		return badRequest(c, "Invalid backlog window", err)
	}
	res, err := s.h.AssignBacklog.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err, "Failed to assign backlog")
	}
	s.dispatch(c, res.Events)

	return c.JSON(http.StatusOK, backlogFromResult(res))
}

// OpenShift handles POST /api/v1/outlets/:id/shift/open.
func (s *Server) OpenShift(c echo.Context) error {
	outletID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid outlet id", err)
	}
	var req OperatorRequest
	if err = bindAndValidate(c, &req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	operator, err := optionalID(req.OperatorID)
	if err != nil {
		return badRequest(c, "Invalid operator id", err)
	}

	cmd, err := commands.NewOpenShiftCommand(outletID, operator)
	if err != nil {
		return badRequest(c, "Invalid shift request", err)
	}
	res, err := s.h.OpenShift.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err, "Failed to open shift")
	}
	s.dispatch(c, res.Events)

	resp := OpenShiftResponse{
		Shift:     shiftFromState(res.State),
		Activated: res.Activated,
		Promoted:  res.Promoted,
		Error:     errString(res.Err),
	}
	if res.Backlog != nil {
		b := backlogFromResult(*res.Backlog)
		resp.Backlog = &b
	}
	return c.JSON(http.StatusOK, resp)
}

// CloseShift handles POST /api/v1/outlets/:id/shift/close.
func (s *Server) CloseShift(c echo.Context) error {
	outletID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid outlet id", err)
	}
	var req OperatorRequest
	if err = bindAndValidate(c, &req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	operator, err := optionalID(req.OperatorID)
	if err != nil {
		return badRequest(c, "Invalid operator id", err)
	}

	cmd, err := commands.NewCloseShiftCommand(outletID, operator)
	if err != nil {
		return badRequest(c, "Invalid shift request", err)
	}
	res, err := s.h.CloseShift.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err, "Failed to close shift")
	}
	s.dispatch(c, res.Events)

	outcomes := res.Resets.Outcomes
	if outcomes == nil {
		outcomes = map[string]int{}
	}
	return c.JSON(http.StatusOK, CloseShiftResponse{
		Shift:     shiftFromState(res.State),
		Outcomes:  outcomes,
		Untouched: res.Resets.Untouched,
		Failed:    res.Resets.Failed,
		Error:     errString(res.Resets.Err),
	})
}

// GetShift handles GET /api/v1/outlets/:id/shift?date=YYYY-MM-DD.
func (s *Server) GetShift(c echo.Context) error {
	outletID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid outlet id", err)
	}
	date, err := s.dateParam(c)
	if err != nil {
		return badRequest(c, "Invalid date", err)
	}

	query, err := queries.NewGetShiftStatusQuery(outletID, date)
	if err != nil {
		return badRequest(c, "Invalid shift query", err)
	}
	status, err := s.h.ShiftStatus.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err, "Failed to retrieve shift")
	}
	return c.JSON(http.StatusOK, shiftFromStatus(status))
}

// ActivateDefaultRoster handles POST /api/v1/outlets/:id/roster/default.
func (s *Server) ActivateDefaultRoster(c echo.Context) error {
	outletID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid outlet id", err)
	}
	cmd, err := commands.NewActivateDefaultRosterCommand(outletID)
	if err != nil {
		return badRequest(c, "Invalid roster request", err)
	}
	activated, err := s.h.ActivateRoster.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err, "Failed to activate roster")
	}
	return c.JSON(http.StatusOK, map[string]int{"activated": activated})
}

// SetRoster handles PUT /api/v1/outlets/:id/roster.
func (s *Server) SetRoster(c echo.Context) error {
	outletID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid outlet id", err)
	}
	var req RosterRequest
	if err = bindAndValidate(c, &req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	date := s.today()
	if req.Date != "" {
		if date, err = kernel.ParseDate(req.Date); err != nil {
			return badRequest(c, "Invalid date", err)
		}
	}
	agents := make([]kernel.UUID, 0, len(req.AgentIDs))
	for _, raw := range req.AgentIDs {
		id, parseErr := kernel.UUIDFromString(raw)
		if parseErr != nil {
			return badRequest(c, "Invalid agent id", parseErr)
		}
		agents = append(agents, id)
	}

	cmd, err := commands.NewSetManualRosterCommand(outletID, date, agents)
	if err != nil {
		return badRequest(c, "Invalid roster", err)
	}
	active, err := s.h.SetRoster.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err, "Failed to set roster")
	}

	ids := make([]string, 0, len(active))
	for _, id := range active {
		ids = append(ids, id.String())
	}
	return c.JSON(http.StatusOK, map[string][]string{"agent_ids": ids})
}

// GetRoster handles GET /api/v1/outlets/:id/roster?date=YYYY-MM-DD.
func (s *Server) GetRoster(c echo.Context) error {
	outletID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid outlet id", err)
	}
	date, err := s.dateParam(c)
	if err != nil {
		return badRequest(c, "Invalid date", err)
	}

	query, err := queries.NewGetRosterQuery(outletID, date)
	if err != nil {
		return badRequest(c, "Invalid roster query", err)
	}
	agents, err := s.h.Roster.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err, "Failed to retrieve roster")
	}

	response := make([]RosterAgentResponse, len(agents))
	for i, a := range agents {
		response[i] = RosterAgentResponse{
			ID:              a.ID.String(),
			Name:            a.Name,
			InDefaultRoster: a.InDefaultRoster,
			OnRoster:        a.OnRoster,
			ActiveOrders:    a.ActiveOrders,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// GetUnassignedOrders handles GET /api/v1/outlets/:id/orders/unassigned.
func (s *Server) GetUnassignedOrders(c echo.Context) error {
	outletID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "Invalid outlet id", err)
	}
	query, err := queries.NewGetUnassignedOrdersQuery(outletID)
	if err != nil {
		return badRequest(c, "Invalid query", err)
	}
	orders, err := s.h.UnassignedOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err, "Failed to retrieve orders")
	}

	response := make([]UnassignedOrderResponse, len(orders))
	for i, o := range orders {
		response[i] = UnassignedOrderResponse{
			ID:         o.ID.String(),
			Status:     o.Status.String(),
			ResetCount: o.ResetCount,
			CreatedAt:  o.CreatedAt,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// InventoryChanged handles POST /api/v1/inventory/changes.
func (s *Server) InventoryChanged(c echo.Context) error {
	var req InventoryChangeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}

	productID, err := kernel.UUIDFromString(req.ProductID)
	if err != nil {
		return badRequest(c, "Invalid product id", err)
	}
	warehouseID, err := kernel.UUIDFromString(req.WarehouseID)
	if err != nil {
		return badRequest(c, "Invalid warehouse id", err)
	}
	cmd, err := commands.NewInventoryChangedCommand(productID, warehouseID, req.Delta)
	if err != nil {
		return badRequest(c, "Invalid inventory change", err)
	}
	res, err := s.h.InventoryChanged.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err, "Failed to apply inventory change")
	}
	s.dispatch(c, res.Events)

	resp := InventoryChangeResponse{
		Shortages:     res.Shortages,
		Restored:      res.Restored,
		Reassigned:    res.Reassigned,
		ReturnedToNew: res.ReturnedToNew,
		Skipped:       res.Skipped,
		Failed:        res.Failed,
		Error:         errString(res.Err),
	}
	if res.PartnerID != (kernel.UUID{}) {
		resp.PartnerID = res.PartnerID.String()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) dateParam(c echo.Context) (kernel.Date, error) {
	raw := c.QueryParam("date")
	if raw == "" {
		return s.today(), nil
	}
	return kernel.ParseDate(raw)
}
