package services

import (
	"cmp"
	"slices"

	"lifetracker/models"
)

// Wrap maps any integer position onto [0, size).
func Wrap(position, size int) int {
	r := position % size
	if r < 0 {
		r += size
	}
	return r
}

// Advance moves position by points on a board of size tiles, wrapping in both directions.
func Advance(position, points, size int) int {
	a, b := Wrap(position, size), Wrap(points, size)
	if a >= size-b {
		return a - (size - b)
	}
	return a + b
}

// LapSteps is how many tiles a move of points passes, capped at one lap.
func LapSteps(points, size int) int {
	switch {
	case points >= 0:
		return min(points, size)
	case points < -size:
		return size
	default:
		return -points
	}
}

// CrossedMilestones returns the milestones passed when moving points steps
// from position, in traversal order, excluding the start tile and including
// the final tile. Negative points walk backwards. A move of a full lap or more
// passes every tile once. Tiles the user already completed are dropped.
func CrossedMilestones(position, points int, cfg *GameConfig, p *models.UserProgress) []models.Milestone {
	size := cfg.BoardSize()
	steps := LapSteps(points, size)
	start := Wrap(position, size)

	type hit struct {
		m    models.Milestone
		dist int
	}
	var hits []hit
	for _, m := range cfg.milestones {
		dist := m.Tile - start
		if points < 0 {
			dist = start - m.Tile
		}
		if dist <= 0 {
			dist += size
		}
		if dist > steps || p.HasMilestone(m.Tile) {
			continue
		}
		hits = append(hits, hit{m: m, dist: dist})
	}
	slices.SortFunc(hits, func(a, b hit) int { return cmp.Compare(a.dist, b.dist) })

	crossed := make([]models.Milestone, 0, len(hits))
	for _, h := range hits {
		crossed = append(crossed, h.m)
	}
	return crossed
}
