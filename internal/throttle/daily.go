// Package throttle gates how many message-based awards a user may receive
// per calendar day.
package throttle

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aurum-community/aurum-bot/internal/policy"
	"github.com/aurum-community/aurum-bot/pkg/metrics"
)

type counter struct {
	date         string
	messagesSeen int64
	pointsEarned int64
}

// Daily tracks per-user message counters. Counters live in process memory
// only and reset lazily when the stored date differs from the current date.
// The day boundary is the process's local midnight.
type Daily struct {
	mu       sync.Mutex
	counters map[string]*counter
	policy   *policy.Policy
	log      *slog.Logger

	now func() time.Time
}

// NewDaily constructs a throttle reading its cutoffs from the scoring policy.
func NewDaily(p *policy.Policy, log *slog.Logger) *Daily {
	if log == nil {
		log = slog.Default()
	}

	return &Daily{
		counters: make(map[string]*counter),
		policy:   p,
		log:      log,
		now:      time.Now,
	}
}

// OnMessage records one message for the user and returns how many points to
// award now (0 or positive). Every Nth message earns message_reward points,
// capped by remaining daily headroom; once daily_cap is reached no further
// message earns points that day.
func (d *Daily) OnMessage(userID string) int64 {
	now := d.now()
	today := now.Format("2006-01-02")

	messagesPerPoint := d.policy.GetInt(policy.KeyMessagesPerPoint)
	dailyCap := d.policy.GetInt(policy.KeyDailyCap)
	messageReward := d.policy.GetInt(policy.KeyMessageReward)

	if messagesPerPoint <= 0 {
		return 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	c := d.counters[userID]
	if c == nil {
		c = &counter{date: today}
		d.counters[userID] = c
	}

	if c.date != today {
		c.date = today
		c.messagesSeen = 0
		c.pointsEarned = 0
	}

	c.messagesSeen++

	if c.pointsEarned >= dailyCap {
		metrics.RecordThrottleHit()
		return 0
	}

	if c.messagesSeen%messagesPerPoint != 0 {
		return 0
	}

	reward := messageReward
	if headroom := dailyCap - c.pointsEarned; reward > headroom {
		reward = headroom
	}

	if reward <= 0 {
		return 0
	}

	c.pointsEarned += reward

	return reward
}

// Cleanup drops counters whose date is no longer today. Called periodically
// so the map does not grow with every user ever seen.
func (d *Daily) Cleanup() {
	today := d.now().Format("2006-01-02")

	d.mu.Lock()
	defer d.mu.Unlock()

	for userID, c := range d.counters {
		if c.date != today {
			delete(d.counters, userID)
		}
	}
}
