package tevo_test

import (
	"testing"

	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingularOf(t *testing.T) {
	t.Parallel()

	factory, err := tevo.SingularOf(tevo.TicketGroupsResource)
	require.NoError(t, err)
	assert.IsType(t, &tevo.TicketGroup{}, factory())

	// every call yields a fresh model
	assert.NotSame(t, factory(), factory())
}

func TestSingularOf_Unregistered(t *testing.T) {
	t.Parallel()

	factory, err := tevo.SingularOf(tevo.Resource{Type: "Gizmos", Plural: "gizmos", Singular: "gizmo"})
	require.ErrorIs(t, err, tevo.ErrNoSingularCounterpart)
	assert.Nil(t, factory)
	assert.Contains(t, err.Error(), "Gizmos")
}

func TestRegisteredResources(t *testing.T) {
	t.Parallel()

	registered := tevo.RegisteredResources()

	for _, res := range []tevo.Resource{
		tevo.AccountsResource,
		tevo.BrokeragesResource,
		tevo.CategoriesResource,
		tevo.ClientsResource,
		tevo.ConfigurationsResource,
		tevo.EventsResource,
		tevo.OfficesResource,
		tevo.OrdersResource,
		tevo.PerformersResource,
		tevo.ShipmentsResource,
		tevo.TicketGroupsResource,
		tevo.UsersResource,
		tevo.VenuesResource,
	} {
		assert.Contains(t, registered, res.Type)
	}

	assert.IsIncreasing(t, registered)
}
