package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurum-community/aurum-bot/internal/award"
	"github.com/aurum-community/aurum-bot/internal/domain"
	"github.com/aurum-community/aurum-bot/internal/engagement"
	apperrors "github.com/aurum-community/aurum-bot/internal/errors"
	"github.com/aurum-community/aurum-bot/internal/policy"
	"github.com/aurum-community/aurum-bot/internal/repository"
)

type fakeSource struct {
	accountID  string
	resolveErr error

	posts    []domain.Post
	postsErr error

	likedBy     map[string][]string
	retweetedBy map[string][]string
	likedErr    map[string]error
}

func (f *fakeSource) ResolveAccount(context.Context, string) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.accountID, nil
}

func (f *fakeSource) RecentPosts(context.Context, string, int) ([]domain.Post, error) {
	if f.postsErr != nil {
		return nil, f.postsErr
	}
	return f.posts, nil
}

func (f *fakeSource) LikedBy(_ context.Context, postID string) ([]string, error) {
	if err := f.likedErr[postID]; err != nil {
		return nil, err
	}
	return f.likedBy[postID], nil
}

func (f *fakeSource) RetweetedBy(_ context.Context, postID string) ([]string, error) {
	return f.retweetedBy[postID], nil
}

type fakeLedger struct {
	repository.Ledger

	mu        sync.Mutex
	users     map[string]*domain.UserAccount
	processed map[string]bool
	activity  []domain.ActivityLogEntry
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		users:     make(map[string]*domain.UserAccount),
		processed: make(map[string]bool),
	}
}

func (f *fakeLedger) addVerifiedUser(discordID, handle string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[discordID] = &domain.UserAccount{
		DiscordID:     discordID,
		TwitterHandle: handle,
		NotifyEnabled: true,
	}
}

func (f *fakeLedger) GetUser(_ context.Context, discordID string) (*domain.UserAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[discordID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

func (f *fakeLedger) IncrementPoints(_ context.Context, discordID string, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[discordID]
	if !ok {
		return 0, repository.ErrUserNotFound
	}

	user.Points += delta
	return user.Points, nil
}

func (f *fakeLedger) InsertActivityLog(_ context.Context, entry *domain.ActivityLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.activity = append(f.activity, *entry)
	return nil
}

func (f *fakeLedger) ListVerifiedUsers(context.Context) ([]domain.UserAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var users []domain.UserAccount
	for _, user := range f.users {
		if user.Verified() {
			users = append(users, *user)
		}
	}

	return users, nil
}

func (f *fakeLedger) MarkPostProcessed(_ context.Context, postID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.processed[postID] {
		return false, nil
	}

	f.processed[postID] = true
	return true, nil
}

type fakeAnnouncer struct {
	mu        sync.Mutex
	announced []string
	err       error
}

func (f *fakeAnnouncer) AnnouncePost(_ context.Context, post domain.Post, _ string) error {
	if f.err != nil {
		return f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.announced = append(f.announced, post.ID)
	return nil
}

func newTestPoller(source *fakeSource, ledger *fakeLedger, announcer Announcer) *Poller {
	engine := award.NewEngine(ledger, nil, nil)
	pol := policy.New(nil, nil)

	return New(
		Config{AccountHandle: "aurumhq", Interval: "2m", PostLimit: 10},
		source,
		ledger,
		engine,
		pol,
		announcer,
		nil,
		nil,
	)
}

func TestAnnounceOnceEngagementRepeats(t *testing.T) {
	ledger := newFakeLedger()
	ledger.addVerifiedUser("user-1", "alice")

	source := &fakeSource{
		accountID: "acc-1",
		posts:     []domain.Post{{ID: "post-1"}},
		likedBy:   map[string][]string{"post-1": {"Alice"}},
		retweetedBy: map[string][]string{
			"post-1": {"alice"},
		},
	}
	announcer := &fakeAnnouncer{}
	p := newTestPoller(source, ledger, announcer)

	for cycle := 0; cycle < 3; cycle++ {
		require.NoError(t, p.RunCycle(context.Background()))
	}

	assert.Equal(t, []string{"post-1"}, announcer.announced, "post announced exactly once")

	likes, shares := 0, 0
	for _, entry := range ledger.activity {
		switch entry.Action {
		case ActionEngagementLike:
			likes++
		case ActionEngagementShare:
			shares++
		}
	}

	assert.Equal(t, 3, likes, "like credit re-attempted every cycle while the post is recent")
	assert.Equal(t, 3, shares)
	assert.Equal(t, int64(3*5+3*10), ledger.users["user-1"].Points)
}

func TestResolveFailureAbortsCycle(t *testing.T) {
	ledger := newFakeLedger()
	source := &fakeSource{resolveErr: engagement.ErrUnavailable}
	announcer := &fakeAnnouncer{}
	p := newTestPoller(source, ledger, announcer)

	err := p.RunCycle(context.Background())
	require.Error(t, err)
	assert.Empty(t, announcer.announced)
	assert.Empty(t, ledger.processed)
}

func TestRecentPostsFailureAbortsCycle(t *testing.T) {
	ledger := newFakeLedger()
	source := &fakeSource{accountID: "acc-1", postsErr: engagement.ErrUnavailable}
	p := newTestPoller(source, ledger, &fakeAnnouncer{})

	require.Error(t, p.RunCycle(context.Background()))
}

func TestUnauthorizedPostSkippedOthersProcessed(t *testing.T) {
	ledger := newFakeLedger()
	ledger.addVerifiedUser("user-1", "alice")

	source := &fakeSource{
		accountID: "acc-1",
		posts:     []domain.Post{{ID: "post-1"}, {ID: "post-2"}},
		likedBy:   map[string][]string{"post-2": {"alice"}},
		likedErr:  map[string]error{"post-1": engagement.ErrUnauthorized},
	}
	announcer := &fakeAnnouncer{}
	p := newTestPoller(source, ledger, announcer)

	require.NoError(t, p.RunCycle(context.Background()))

	assert.ElementsMatch(t, []string{"post-1", "post-2"}, announcer.announced,
		"engagement failure does not change announce behavior")

	require.Len(t, ledger.activity, 1)
	assert.Equal(t, ActionEngagementLike, ledger.activity[0].Action)
}

func TestAnnounceFailureDoesNotBlockEngagement(t *testing.T) {
	ledger := newFakeLedger()
	ledger.addVerifiedUser("user-1", "alice")

	source := &fakeSource{
		accountID: "acc-1",
		posts:     []domain.Post{{ID: "post-1"}},
		likedBy:   map[string][]string{"post-1": {"alice"}},
	}
	announcer := &fakeAnnouncer{err: errors.New("channel gone")}
	p := newTestPoller(source, ledger, announcer)

	require.NoError(t, p.RunCycle(context.Background()))
	require.Len(t, ledger.activity, 1)
	assert.Equal(t, ActionEngagementLike, ledger.activity[0].Action)
	assert.True(t, ledger.processed["post-1"], "post still marked processed when announce fails")
}

func TestNilAnnouncerSkipsAnnouncement(t *testing.T) {
	ledger := newFakeLedger()
	source := &fakeSource{
		accountID: "acc-1",
		posts:     []domain.Post{{ID: "post-1"}},
	}
	p := newTestPoller(source, ledger, nil)

	require.NoError(t, p.RunCycle(context.Background()))
	assert.True(t, ledger.processed["post-1"])
}

func TestNonMatchingHandlesEarnNothing(t *testing.T) {
	ledger := newFakeLedger()
	ledger.addVerifiedUser("user-1", "alice")

	source := &fakeSource{
		accountID: "acc-1",
		posts:     []domain.Post{{ID: "post-1"}},
		likedBy:   map[string][]string{"post-1": {"someone_else"}},
	}
	p := newTestPoller(source, ledger, &fakeAnnouncer{})

	require.NoError(t, p.RunCycle(context.Background()))
	assert.Empty(t, ledger.activity)
}

func TestSourceErrorClassification(t *testing.T) {
	denied := classifySourceError("post-1", fmt.Errorf("liking_users for post post-1: %w", engagement.ErrUnauthorized))
	assert.Equal(t, "E300", denied.Code)
	assert.ErrorIs(t, denied, engagement.ErrUnauthorized)

	down := classifySourceError("", fmt.Errorf("recent posts: %w", engagement.ErrUnavailable))
	assert.Equal(t, "E310", down.Code)
	assert.ErrorIs(t, down, engagement.ErrUnavailable)
}

func TestResolveFailureCarriesTaxonomyCode(t *testing.T) {
	p := newTestPoller(&fakeSource{resolveErr: engagement.ErrUnavailable}, newFakeLedger(), nil)

	err := p.RunCycle(context.Background())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E310", appErr.Code)
	assert.ErrorIs(t, err, engagement.ErrUnavailable)
}
