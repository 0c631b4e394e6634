package services

import "math"

// LevelCurve holds cumulative experience thresholds. Entry i is the experience
// needed to reach level i+2; level 1 is where every user starts.
//
// Without a table level n needs 100*n. Past the last entry each further level
// costs another 100 on top of it. Thresholds saturate at math.MaxInt.
type LevelCurve []int

// DefaultLevelStep is the per-level multiplier of the default curve.
const DefaultLevelStep = 100

// Threshold returns the cumulative experience at which level is reached.
func (c LevelCurve) Threshold(level int) int {
	if level <= 1 {
		return 0
	}
	idx := level - 2
	if idx < len(c) {
		return c[idx]
	}
	base, n := 0, level
	if len(c) > 0 {
		base, n = c[len(c)-1], level-len(c)-1
	}
	if n > (math.MaxInt-base)/DefaultLevelStep {
		return math.MaxInt
	}
	return base + DefaultLevelStep*n
}

// Advance applies sequential level-ups until experience is below the next
// threshold. Levels never go down.
func (c LevelCurve) Advance(level, experience int) int {
	if level < 1 {
		level = 1
	}
	for level-1 < len(c) && experience >= c.Threshold(level+1) {
		level++
	}
	if level-1 >= len(c) {
		level = max(level, c.levelPastTable(experience))
	}
	return level
}

// levelPastTable is the level experience reaches on the open-ended part of the curve.
func (c LevelCurve) levelPastTable(experience int) int {
	if len(c) == 0 {
		return experience / DefaultLevelStep
	}
	last := c[len(c)-1]
	if experience < last {
		return 0
	}
	return len(c) + 1 + (experience-last)/DefaultLevelStep
}

// PointsToNextLevel is threshold(level+1) - experience.
func (c LevelCurve) PointsToNextLevel(level, experience int) int {
	return c.Threshold(level+1) - experience
}

func (c LevelCurve) validate() bool {
	for i := 1; i < len(c); i++ {
		if c[i] < c[i-1] {
			return false
		}
	}
	return len(c) == 0 || c[0] > 0
}
