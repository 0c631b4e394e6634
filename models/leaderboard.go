// models/leaderboard.go
package models

import "strings"

// LeaderboardScope picks all-time or current-week points for ranking.
type LeaderboardScope string

const (
	ScopeTotal  LeaderboardScope = "TOTAL"
	ScopeWeekly LeaderboardScope = "WEEKLY"
)

// ParseScope accepts the scope case-insensitively; empty means TOTAL.
func ParseScope(s string) (LeaderboardScope, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "TOTAL", "ALL":
		return ScopeTotal, true
	case "WEEKLY":
		return ScopeWeekly, true
	}
	return "", false
}

// LeaderboardEntry is derived from progress snapshots and never persisted.
type LeaderboardEntry struct {
	UserID       string `json:"userId"`
	TotalPoints  int    `json:"totalPoints"`
	WeeklyPoints int    `json:"weeklyPoints"`
	Level        int    `json:"level"`
	Rank         int    `json:"rank"`
}
