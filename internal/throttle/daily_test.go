package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurum-community/aurum-bot/internal/policy"
)

func newTestThrottle(t *testing.T) (*Daily, *time.Time) {
	t.Helper()

	p := policy.New(nil, nil)
	require.NoError(t, p.Set(context.Background(), policy.KeyMessagesPerPoint, 5))
	require.NoError(t, p.Set(context.Background(), policy.KeyDailyCap, 20))
	require.NoError(t, p.Set(context.Background(), policy.KeyMessageReward, 1))

	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	d := NewDaily(p, nil)
	d.now = func() time.Time { return clock }

	return d, &clock
}

func TestDailyCapMonotonicity(t *testing.T) {
	d, _ := newTestThrottle(t)

	var total int64
	var awardMessages []int

	for msg := 1; msg <= 200; msg++ {
		if n := d.OnMessage("user-1"); n > 0 {
			total += n
			awardMessages = append(awardMessages, msg)
			assert.Equal(t, int64(1), n)
		}
	}

	assert.Equal(t, int64(20), total)
	require.Len(t, awardMessages, 20)

	for i, msg := range awardMessages {
		assert.Equal(t, (i+1)*5, msg, "awards land on every 5th message")
	}
	assert.Equal(t, 100, awardMessages[len(awardMessages)-1], "nothing awarded after message 100")
}

func TestDayRolloverResetsThrottle(t *testing.T) {
	d, clock := newTestThrottle(t)

	for msg := 0; msg < 200; msg++ {
		d.OnMessage("user-1")
	}

	*clock = clock.Add(24 * time.Hour)

	var awarded int64
	for msg := 1; msg <= 5; msg++ {
		awarded += d.OnMessage("user-1")
	}

	assert.Equal(t, int64(1), awarded, "message 5 of the new day awards again")
}

func TestNonMultipleMessagesAwardNothing(t *testing.T) {
	d, _ := newTestThrottle(t)

	for msg := 1; msg <= 4; msg++ {
		assert.Zero(t, d.OnMessage("user-1"))
	}
	assert.Equal(t, int64(1), d.OnMessage("user-1"))
}

func TestRewardCappedByHeadroom(t *testing.T) {
	p := policy.New(nil, nil)
	require.NoError(t, p.Set(context.Background(), policy.KeyMessagesPerPoint, 1))
	require.NoError(t, p.Set(context.Background(), policy.KeyDailyCap, 5))
	require.NoError(t, p.Set(context.Background(), policy.KeyMessageReward, 3))

	d := NewDaily(p, nil)

	assert.Equal(t, int64(3), d.OnMessage("user-1"))
	assert.Equal(t, int64(2), d.OnMessage("user-1"), "partial reward up to the cap")
	assert.Zero(t, d.OnMessage("user-1"), "hard stop at the cap")
}

func TestUsersTrackedIndependently(t *testing.T) {
	d, _ := newTestThrottle(t)

	for msg := 1; msg <= 5; msg++ {
		d.OnMessage("user-1")
	}

	assert.Zero(t, d.OnMessage("user-2"), "second user starts from zero")
}

func TestCleanupDropsStaleCounters(t *testing.T) {
	d, clock := newTestThrottle(t)

	d.OnMessage("user-1")
	*clock = clock.Add(48 * time.Hour)
	d.Cleanup()

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Empty(t, d.counters)
}
