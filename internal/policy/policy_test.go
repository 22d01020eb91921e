package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/aurum-community/aurum-bot/internal/errors"
)

type fakeStore struct {
	stored  map[string]float64
	loadErr error
	saveErr error
}

func (f *fakeStore) LoadPolicy(_ context.Context) (map[string]float64, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.stored, nil
}

func (f *fakeStore) SavePolicyValue(_ context.Context, key string, value float64) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.stored == nil {
		f.stored = make(map[string]float64)
	}
	f.stored[key] = value
	return nil
}

func TestDefaultsApplied(t *testing.T) {
	p := New(nil, nil)

	assert.Equal(t, float64(5), p.Get(KeyMessagesPerPoint))
	assert.Equal(t, float64(20), p.Get(KeyDailyCap))
	assert.Equal(t, float64(1), p.Get(KeyMessageReward))
	assert.Equal(t, int64(10), p.GetInt(KeyRetweetReward))
}

func TestSetUnknownKeyRejected(t *testing.T) {
	p := New(nil, nil)
	before := p.Snapshot()

	err := p.Set(context.Background(), "not_a_key", 5)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "E400", appErr.Code)
	assert.Contains(t, appErr.UserMessage, "daily_cap")
	assert.Contains(t, appErr.UserMessage, "messages_per_point")

	assert.Equal(t, before, p.Snapshot(), "rejected set must not mutate any key")
}

func TestSetNegativeRejected(t *testing.T) {
	p := New(nil, nil)

	err := p.Set(context.Background(), KeyDailyCap, -1)
	require.Error(t, err)
	assert.Equal(t, float64(20), p.Get(KeyDailyCap))
}

func TestSetPersistsBeforeCacheMutates(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("store down")}
	p := New(store, nil)

	err := p.Set(context.Background(), KeyDailyCap, 50)
	require.Error(t, err)
	assert.Equal(t, float64(20), p.Get(KeyDailyCap), "failed persist must leave cache untouched")

	store.saveErr = nil
	require.NoError(t, p.Set(context.Background(), KeyDailyCap, 50))
	assert.Equal(t, float64(50), p.Get(KeyDailyCap))
	assert.Equal(t, float64(50), store.stored[KeyDailyCap])
}

func TestLoadOverlaysStoredValues(t *testing.T) {
	store := &fakeStore{stored: map[string]float64{
		KeyLikeReward: 7,
		"legacy_key":  3,
	}}
	p := New(store, nil)

	require.NoError(t, p.Load(context.Background()))

	assert.Equal(t, float64(7), p.Get(KeyLikeReward))
	assert.Equal(t, float64(10), p.Get(KeyRetweetReward), "missing keys keep defaults")
}

func TestKeysStableOrder(t *testing.T) {
	keys := Keys()
	require.Len(t, keys, 8)
	assert.Equal(t, keys, Keys())
}
