package commands_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

func TestNewCreateOrderCommand_ValidInput(t *testing.T) {
	id, outlet, partner, product := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()
	item, err := order.NewLineItem(product, 2)
	require.NoError(t, err)

	cmd, err := commands.NewCreateOrderCommand(id, outlet, &partner, []order.LineItem{item})
	require.NoError(t, err)
	assert.Equal(t, id, cmd.OrderID())
	assert.Equal(t, outlet, cmd.OutletID())
	require.NotNil(t, cmd.PartnerID())
	assert.Equal(t, partner, *cmd.PartnerID())
	assert.Len(t, cmd.Items(), 1)
	require.NoError(t, cmd.Validate())
}

func TestNewCreateOrderCommand_InvalidOrderID(t *testing.T) {
	item, _ := order.NewLineItem(kernel.NewUUID(), 1)
	_, err := commands.NewCreateOrderCommand(kernel.UUID{}, kernel.NewUUID(), nil, []order.LineItem{item})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestNewCreateOrderCommand_ItemsRequired(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(), nil, nil)
	require.ErrorIs(t, err, commands.ErrItemsAreRequired)
}

func TestNewCreateOrderCommand_ReportsEveryProblem(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.UUID{}, kernel.UUID{}, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	assert.ErrorIs(t, err, commands.ErrItemsAreRequired)
}

func TestCommands_ZeroValuesFailValidation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"create order", commands.CreateOrderCommand{}.Validate(), commands.ErrCreateOrderCommandIsNotConstructed},
		{"assign order", commands.AssignOrderCommand{}.Validate(), commands.ErrAssignOrderCommandIsNotConstructed},
		{"assign backlog", commands.AssignBacklogCommand{}.Validate(), commands.ErrAssignBacklogCommandIsNotConstructed},
		{"open shift", commands.OpenShiftCommand{}.Validate(), commands.ErrOpenShiftCommandIsNotConstructed},
		{"close shift", commands.CloseShiftCommand{}.Validate(), commands.ErrCloseShiftCommandIsNotConstructed},
		{
			"activate default roster",
			commands.ActivateDefaultRosterCommand{}.Validate(),
			commands.ErrActivateDefaultRosterCommandIsNotConstructed,
		},
		{"set manual roster", commands.SetManualRosterCommand{}.Validate(), commands.ErrSetManualRosterCommandIsNotConstructed},
		{
			"inventory changed",
			commands.InventoryChangedCommand{}.Validate(),
			commands.ErrInventoryChangedCommandIsNotConstructed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.want)
		})
	}
}

func TestNewAssignOrderCommand_CopiesOperator(t *testing.T) {
	operator := kernel.NewUUID()
	cmd, err := commands.NewAssignOrderCommand(kernel.NewUUID(), &operator)
	require.NoError(t, err)

	operator = kernel.NewUUID()
	require.NotNil(t, cmd.OperatorID())
	assert.NotEqual(t, operator, *cmd.OperatorID())
}

func TestNewAssignBacklogCommand_RejectsInvertedWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	_, err := commands.NewAssignBacklogCommand(kernel.NewUUID(), now, now.Add(-time.Minute))
	var invalid *errs.ValueIsInvalidError
	require.ErrorAs(t, err, &invalid)

	_, err = commands.NewAssignBacklogCommand(kernel.NewUUID(), time.Time{}, now)
	var required *errs.ValueIsRequiredError
	require.ErrorAs(t, err, &required)

	cmd, err := commands.NewAssignBacklogCommand(kernel.NewUUID(), now, now)
	require.NoError(t, err)
	assert.Equal(t, now, cmd.From())
}

func TestNewOpenShiftCommand_RequiresOutlet(t *testing.T) {
	_, err := commands.NewOpenShiftCommand(kernel.UUID{}, nil)
	var required *errs.ValueIsRequiredError
	require.ErrorAs(t, err, &required)

	_, err = commands.NewCloseShiftCommand(kernel.UUID{}, nil)
	require.ErrorAs(t, err, &required)
}

func TestNewSetManualRosterCommand_DropsDuplicates(t *testing.T) {
	a, b := kernel.NewUUID(), kernel.NewUUID()
	date, err := kernel.ParseDate("2026-03-10")
	require.NoError(t, err)

	cmd, err := commands.NewSetManualRosterCommand(kernel.NewUUID(), date, []kernel.UUID{a, b, a})
	require.NoError(t, err)
	assert.Equal(t, []kernel.UUID{a, b}, cmd.AgentIDs())

	_, err = commands.NewSetManualRosterCommand(kernel.NewUUID(), kernel.Date{}, nil)
	require.ErrorIs(t, err, kernel.ErrDateIsNotConstructed)
}

func TestNewInventoryChangedCommand_RequiresIDs(t *testing.T) {
	_, err := commands.NewInventoryChangedCommand(kernel.UUID{}, kernel.UUID{}, 3)
	var required *errs.ValueIsRequiredError
	require.ErrorAs(t, err, &required)

	cmd, err := commands.NewInventoryChangedCommand(kernel.NewUUID(), kernel.NewUUID(), -2)
	require.NoError(t, err)
	assert.Equal(t, -2, cmd.Delta())
}
