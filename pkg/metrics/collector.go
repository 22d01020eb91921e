// Package metrics exposes Prometheus collectors for the bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	awardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_awards_total",
			Help: "Total number of award attempts labeled by action and status",
		},
		[]string{"action", "status"},
	)
	pointsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_points_awarded_total",
			Help: "Total gold points credited, labeled by action",
		},
		[]string{"action"},
	)
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of slash commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_command_duration_seconds",
			Help:    "Duration of slash command handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	pollCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_poll_cycles_total",
			Help: "Total engagement poll cycles labeled by status",
		},
		[]string{"status"},
	)
	postsAnnouncedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_posts_announced_total",
			Help: "Total new posts announced to the community",
		},
	)
	throttleHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_throttle_hits_total",
			Help: "Messages that earned nothing because the daily cap was reached",
		},
	)
)

// RecordAward increments the award counter for the action/status pair.
func RecordAward(action, status string) {
	awardsTotal.WithLabelValues(action, status).Inc()
}

// RecordPointsAwarded adds the credited amount to the points counter.
func RecordPointsAwarded(action string, amount int64) {
	if amount <= 0 {
		return
	}
	pointsAwardedTotal.WithLabelValues(action).Add(float64(amount))
}

// RecordCommand observes a completed slash command.
func RecordCommand(command, status string, duration time.Duration) {
	commandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordPollCycle increments the poll cycle counter with the given status.
func RecordPollCycle(status string) {
	pollCyclesTotal.WithLabelValues(status).Inc()
}

// RecordPostAnnounced counts one announced post.
func RecordPostAnnounced() {
	postsAnnouncedTotal.Inc()
}

// RecordThrottleHit counts one capped message.
func RecordThrottleHit() {
	throttleHitsTotal.Inc()
}
