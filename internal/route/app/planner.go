package app

import (
	"context"

	"github.com/entregalabs/entrega/internal/route/domain"
)

// StraightLinePlanner interpolates evenly spaced waypoints on the segment
// between the endpoints, both included.
type StraightLinePlanner struct {
	// Segments is the number of hops; Segments+1 waypoints come back.
	Segments int
}

func (p StraightLinePlanner) Plan(ctx context.Context, from, to domain.Point) ([]domain.Point, error) {
	n := p.Segments
	if n < 1 {
		n = 8
	}

	points := make([]domain.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		points = append(points, domain.Point{
			Lat: from.Lat + (to.Lat-from.Lat)*t,
			Lng: from.Lng + (to.Lng-from.Lng)*t,
		})
	}
	return points, nil
}
