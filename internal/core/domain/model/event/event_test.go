package event_test

import (
	"testing"
	"time"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForOrder(t *testing.T) {
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), nil, nil, time.Now())
	require.NoError(t, err)
	agent := kernel.NewUUID()
	require.NoError(t, o.Assign(agent))
	at := time.Now()

	e := event.ForOrder(event.OrderAssigned, o, event.Transition{
		PriorStatus: order.New,
		NewStatus:   order.Assigned,
		Reason:      "auto",
	}, at, map[string]string{"strategy": "round_robin"})

	assert.Equal(t, event.OrderAssigned, e.Type())
	assert.True(t, e.AggregateID().IsEqual(o.ID()))
	assert.True(t, e.OutletID().IsEqual(o.OutletID()))
	assert.Equal(t, at, e.OccurredAt())
	assert.Equal(t, "new", e.Attr("prior_status"))
	assert.Equal(t, "assigned", e.Attr("new_status"))
	assert.Equal(t, agent.String(), e.Attr("agent"))
	assert.Equal(t, "round_robin", e.Attr("strategy"))
	assert.Empty(t, e.Attr("prior_agent"))
}

func TestNew_CopiesAttributes(t *testing.T) {
	attrs := map[string]string{"k": "v"}
	e := event.New(event.ShiftOpened, kernel.NewUUID(), kernel.NewUUID(), time.Now(), attrs)

	attrs["k"] = "changed"
	got := e.Attrs()
	got["k"] = "changed again"

	assert.Equal(t, "v", e.Attr("k"))
}
