package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/entregalabs/entrega/internal/route/domain"
)

func TestStraightLinePlanner(t *testing.T) {
	from := domain.Point{Lat: -23.5, Lng: -46.6}
	to := domain.Point{Lat: -23.1, Lng: -46.2}

	points, err := StraightLinePlanner{Segments: 4}.Plan(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, points, 5)
	require.Equal(t, from, points[0])
	require.Equal(t, to, points[4])

	mid := points[2]
	require.InDelta(t, -23.3, mid.Lat, 1e-9)
	require.InDelta(t, -46.4, mid.Lng, 1e-9)
}

func TestStraightLinePlannerDefaultSegments(t *testing.T) {
	points, err := StraightLinePlanner{}.Plan(context.Background(), domain.Point{}, domain.Point{Lat: 1, Lng: 1})
	require.NoError(t, err)
	require.Len(t, points, 9)
}
