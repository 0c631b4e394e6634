// metrics/metrics.go - Prometheus collectors for the gamification core
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	actionsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lifetracker",
			Subsystem: "gamification",
			Name:      "actions_total",
			Help:      "Scored actions processed, by result.",
		},
		[]string{"result"},
	)

	unmappedActions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lifetracker",
			Subsystem: "gamification",
			Name:      "unmapped_actions_total",
			Help:      "Actions with no scoring rule in the active game.",
		},
	)

	pointsAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lifetracker",
			Subsystem: "gamification",
			Name:      "points_awarded_total",
			Help:      "Sum of positive points awarded.",
		},
	)

	achievementsUnlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lifetracker",
			Subsystem: "gamification",
			Name:      "achievements_unlocked_total",
			Help:      "Achievement unlocks, by achievement id.",
		},
		[]string{"achievement_id"},
	)

	milestonesCrossed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lifetracker",
			Subsystem: "gamification",
			Name:      "milestones_crossed_total",
			Help:      "First-time milestone crossings.",
		},
	)

	levelUps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lifetracker",
			Subsystem: "gamification",
			Name:      "level_ups_total",
			Help:      "Levels gained.",
		},
	)

	conflictRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lifetracker",
			Subsystem: "gamification",
			Name:      "conflict_retries_total",
			Help:      "Critical sections retried after an optimistic-lock conflict.",
		},
	)

	weeklyResetUsers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lifetracker",
			Subsystem: "gamification",
			Name:      "weekly_reset_users_total",
			Help:      "Progress records whose weekly points were reset.",
		},
	)

	criticalSection = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lifetracker",
			Subsystem: "gamification",
			Name:      "critical_section_seconds",
			Help:      "Time spent holding a user's progress lock.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
		[]string{"op"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		actionsApplied,
		unmappedActions,
		pointsAwarded,
		achievementsUnlocked,
		milestonesCrossed,
		levelUps,
		conflictRetries,
		weeklyResetUsers,
		criticalSection,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordAction(result string) {
	actionsApplied.WithLabelValues(result).Inc()
}

func RecordUnmappedAction() {
	unmappedActions.Inc()
}

func RecordPoints(points int) {
	if points > 0 {
		pointsAwarded.Add(float64(points))
	}
}

func RecordAchievementUnlocked(achievementID string) {
	achievementsUnlocked.WithLabelValues(achievementID).Inc()
}

func RecordMilestones(n int) {
	if n > 0 {
		milestonesCrossed.Add(float64(n))
	}
}

func RecordLevelUps(n int) {
	if n > 0 {
		levelUps.Add(float64(n))
	}
}

func RecordConflictRetry() {
	conflictRetries.Inc()
}

func RecordWeeklyReset(users int) {
	if users > 0 {
		weeklyResetUsers.Add(float64(users))
	}
}

func ObserveCriticalSection(op string, d time.Duration) {
	criticalSection.WithLabelValues(op).Observe(d.Seconds())
}
