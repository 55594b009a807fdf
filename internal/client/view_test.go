package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeKeepsFreshestStatus(t *testing.T) {
	v := NewViewState()

	v.MergeOrder(Order{ID: "o1", Status: "IN_TRANSIT", VehicleID: "v1"})

	// A stale poll snapshot arriving late must not regress the view.
	v.MergeOrder(Order{ID: "o1", Status: "APPROVED"})

	got, ok := v.Get("o1")
	require.True(t, ok)
	require.Equal(t, "IN_TRANSIT", got.Order.Status)

	// Fresher status always wins, whatever the arrival order.
	v.MergeOrder(Order{ID: "o1", Status: "DELIVERED"})
	got, _ = v.Get("o1")
	require.Equal(t, "DELIVERED", got.Order.Status)
}

func TestVehicleEventsResolveToOrder(t *testing.T) {
	v := NewViewState()
	v.MergeOrder(Order{ID: "o1", Status: "IN_TRANSIT", VehicleID: "v1"})

	v.SetRoute("v1", []Point{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}})
	v.SetVehiclePosition("v1", 1.5, 1.5)

	got, _ := v.Get("o1")
	require.True(t, got.HasRoute)
	require.Len(t, got.Route, 2)
	require.NotNil(t, got.Vehicle)
	require.Equal(t, 1.5, got.Vehicle.Lat)

	// Events for vehicles the view does not know are dropped silently.
	v.SetVehiclePosition("ghost", 9, 9)
	require.Len(t, v.InTransit(), 1)
}

func TestDeliveryCompletedClearsLiveState(t *testing.T) {
	v := NewViewState()
	v.MergeOrder(Order{ID: "o1", Status: "IN_TRANSIT", VehicleID: "v1"})
	v.SetRoute("v1", []Point{{Lat: 1, Lng: 1}})
	v.SetVehiclePosition("v1", 1, 1)

	v.CompleteByVehicle("v1")

	got, _ := v.Get("o1")
	require.Equal(t, "DELIVERED", got.Order.Status)
	require.False(t, got.HasRoute)
	require.Nil(t, got.Vehicle)
	require.Empty(t, v.InTransit())

	// The vehicle mapping is gone; later events for it are ignored.
	v.SetVehiclePosition("v1", 5, 5)
	got, _ = v.Get("o1")
	require.Nil(t, got.Vehicle)
}
