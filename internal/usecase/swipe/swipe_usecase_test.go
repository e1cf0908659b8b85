package swipe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gdugdh24/partnerfinder/internal/infrastructure/lock"
	"github.com/gdugdh24/partnerfinder/internal/repository"
	"github.com/gdugdh24/partnerfinder/internal/repository/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentNotification struct {
	recipientID string
	n           domain.Notification
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (r *recordingNotifier) Send(_ context.Context, recipientID string, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{recipientID, n})
	return r.err
}

func (r *recordingNotifier) recipients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, s := range r.sent {
		out = append(out, s.recipientID)
	}
	return out
}

type failingCreateSwipes struct {
	repository.SwipeRepository
}

func (failingCreateSwipes) Create(context.Context, *domain.SwipeDecision) error {
	return errors.New("write timeout")
}

// failingMutualSwipes fails every lookup made on behalf of someone other
// than actor, which is the mutual-decision query.
type failingMutualSwipes struct {
	repository.SwipeRepository
	actor string
}

func (f failingMutualSwipes) GetByPair(ctx context.Context, actorID, targetID string) (*domain.SwipeDecision, error) {
	if actorID != f.actor {
		return nil, errors.New("read timeout")
	}
	return f.SwipeRepository.GetByPair(ctx, actorID, targetID)
}

// racingMatches stores a competing match right before the real insert.
type racingMatches struct {
	repository.MatchRepository
}

func (r racingMatches) Create(ctx context.Context, match *domain.Match) error {
	competing := &domain.Match{User1ID: match.User1ID, User2ID: match.User2ID}
	if err := r.MatchRepository.Create(ctx, competing); err != nil {
		return err
	}
	return r.MatchRepository.Create(ctx, match)
}

type fixture struct {
	store    *memory.Store
	notifier *recordingNotifier
	uc       *SwipeUseCase
	anna     *domain.Profile
	boris    *domain.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	anna := &domain.Profile{ID: "anna", DisplayName: "Anna", Interests: []string{"Football", "Yoga", "Tennis"}, IsVisible: true}
	boris := &domain.Profile{ID: "boris", DisplayName: "Boris", Interests: []string{"Tennis", "Football", "Boxe"}, IsVisible: true}
	require.NoError(t, store.Profiles().Create(context.Background(), anna))
	require.NoError(t, store.Profiles().Create(context.Background(), boris))

	f := &fixture{store: store, notifier: &recordingNotifier{}, anna: anna, boris: boris}
	f.uc = f.build(store.Swipes(), store.Matches(), lock.NewMemoryLocker())
	return f
}

func (f *fixture) build(swipes repository.SwipeRepository, matches repository.MatchRepository, locker lock.Locker) *SwipeUseCase {
	return NewSwipeUseCase(swipes, matches, f.store.Conversations(), f.store.Profiles(), locker, f.notifier, time.Second, zerolog.Nop())
}

func TestResolve_AcceptWithoutCounterpartIsPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.uc.Resolve(ctx, "anna", f.boris, domain.DirectionAccept)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, res.Status)
	assert.True(t, res.Recorded())
	assert.Nil(t, res.Match)

	stored, err := f.store.Swipes().GetByPair(ctx, "anna", "boris")
	require.NoError(t, err)
	assert.Equal(t, domain.DirectionAccept, stored.Direction)

	_, err = f.store.Matches().GetByUsers(ctx, "anna", "boris")
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)
}

func TestResolve_MutualAcceptCreatesOneMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Resolve(ctx, "boris", f.anna, domain.DirectionAccept)
	require.NoError(t, err)

	res, err := f.uc.Resolve(ctx, "anna", f.boris, domain.DirectionAccept)
	require.NoError(t, err)
	require.Equal(t, domain.StatusMatched, res.Status)
	require.NotNil(t, res.Match)
	require.NotNil(t, res.Conversation)
	assert.Equal(t, []string{"Football", "Tennis"}, res.Match.Interests)
	assert.Equal(t, []string{"anna", "boris"}, res.Conversation.Participants)
	assert.Equal(t, res.Match.ID, res.Conversation.MatchID)

	_, err = f.store.Swipes().GetByPair(ctx, "anna", "boris")
	assert.ErrorIs(t, err, domain.ErrSwipeNotFound)
	_, err = f.store.Swipes().GetByPair(ctx, "boris", "anna")
	assert.ErrorIs(t, err, domain.ErrSwipeNotFound)

	matches, err := f.store.Matches().ListByUser(ctx, "anna", 10, 0)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	f.uc.WaitNotifications()
	assert.ElementsMatch(t, []string{"anna", "boris"}, f.notifier.recipients())
}

func TestResolve_SecondCallIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Resolve(ctx, "anna", f.boris, domain.DirectionAccept)
	require.NoError(t, err)

	res, err := f.uc.Resolve(ctx, "anna", f.boris, domain.DirectionAccept)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrDecisionExists)

	ids, err := f.store.Swipes().ListTargetIDsByActor(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, []string{"boris"}, ids)
}

func TestResolve_RepeatAfterMatchDoesNotDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Resolve(ctx, "boris", f.anna, domain.DirectionAccept)
	require.NoError(t, err)
	_, err = f.uc.Resolve(ctx, "anna", f.boris, domain.DirectionAccept)
	require.NoError(t, err)

	res, err := f.uc.Resolve(ctx, "anna", f.boris, domain.DirectionAccept)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrDecisionExists)

	ids, err := f.store.Swipes().ListTargetIDsByActor(ctx, "anna")
	require.NoError(t, err)
	assert.Empty(t, ids)

	matched, err := f.store.Matches().MatchedUserIDs(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, []string{"boris"}, matched)
}

func TestResolve_RejectNeverMatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Resolve(ctx, "boris", f.anna, domain.DirectionAccept)
	require.NoError(t, err)

	res, err := f.uc.Resolve(ctx, "anna", f.boris, domain.DirectionReject)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, res.Status)
	assert.True(t, res.Recorded())

	_, err = f.store.Matches().GetByUsers(ctx, "anna", "boris")
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)
}

func TestResolve_RecordFailureReturnsNoResolution(t *testing.T) {
	f := newFixture(t)
	uc := f.build(failingCreateSwipes{f.store.Swipes()}, f.store.Matches(), lock.NewMemoryLocker())

	res, err := uc.Resolve(context.Background(), "anna", f.boris, domain.DirectionAccept)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrRecordFailed)
	assert.Equal(t, "unable to record your choice", domain.ErrRecordFailed.Error())
}

func TestResolve_MatchDetectionFailureKeepsDecision(t *testing.T) {
	f := newFixture(t)
	uc := f.build(failingMutualSwipes{SwipeRepository: f.store.Swipes(), actor: "anna"}, f.store.Matches(), lock.NewMemoryLocker())

	res, err := uc.Resolve(context.Background(), "anna", f.boris, domain.DirectionAccept)
	assert.ErrorIs(t, err, domain.ErrMatchFailed)
	require.NotNil(t, res)
	assert.True(t, res.Recorded())
	assert.Equal(t, domain.StatusPending, res.Status)
}

func TestResolve_NotificationFailureKeepsMatch(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("broker down")
	ctx := context.Background()

	_, err := f.uc.Resolve(ctx, "boris", f.anna, domain.DirectionAccept)
	require.NoError(t, err)
	res, err := f.uc.Resolve(ctx, "anna", f.boris, domain.DirectionAccept)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMatched, res.Status)

	f.uc.WaitNotifications()
	_, err = f.store.Matches().GetByUsers(ctx, "anna", "boris")
	assert.NoError(t, err)
}

func TestResolve_ConcurrentMatchIsReused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := f.build(f.store.Swipes(), racingMatches{f.store.Matches()}, lock.NewMemoryLocker())

	_, err := uc.Resolve(ctx, "boris", f.anna, domain.DirectionAccept)
	require.NoError(t, err)
	res, err := uc.Resolve(ctx, "anna", f.boris, domain.DirectionAccept)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMatched, res.Status)

	stored, err := f.store.Matches().GetByUsers(ctx, "anna", "boris")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, res.Match.ID)

	uc.WaitNotifications()
	assert.Empty(t, f.notifier.recipients())
	_, err = f.store.Swipes().GetByPair(ctx, "boris", "anna")
	assert.ErrorIs(t, err, domain.ErrSwipeNotFound)
}

func TestResolve_InFlightSwipeIsRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	locker := lock.NewMemoryLocker()
	uc := f.build(f.store.Swipes(), f.store.Matches(), locker)

	held, err := locker.Obtain(ctx, "swipe:anna", time.Minute)
	require.NoError(t, err)
	defer held.Release(ctx)

	res, err := uc.Resolve(ctx, "anna", f.boris, domain.DirectionAccept)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrSwipeInFlight)
}

func TestResolve_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Resolve(ctx, "anna", f.anna, domain.DirectionAccept)
	assert.ErrorIs(t, err, domain.ErrCannotSwipeSelf)

	_, err = f.uc.Resolve(ctx, "anna", f.boris, domain.Direction("sideways"))
	assert.ErrorIs(t, err, domain.ErrInvalidDirection)

	_, err = f.uc.Resolve(ctx, "anna", nil, domain.DirectionAccept)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestCreateSwipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.CreateSwipe(ctx, "anna", &SwipeRequest{TargetID: "ghost", Direction: "right"})
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	_, err = f.uc.CreateSwipe(ctx, "anna", &SwipeRequest{TargetID: "boris", Direction: "up"})
	assert.ErrorIs(t, err, domain.ErrInvalidDirection)

	resp, err := f.uc.CreateSwipe(ctx, "boris", &SwipeRequest{TargetID: "anna", Direction: "like"})
	require.NoError(t, err)
	assert.False(t, resp.IsMatch)

	resp, err = f.uc.CreateSwipe(ctx, "anna", &SwipeRequest{TargetID: "boris", Direction: "right"})
	require.NoError(t, err)
	assert.True(t, resp.IsMatch)
	require.NotNil(t, resp.MatchedUser)
	assert.Equal(t, "Boris", resp.MatchedUser.DisplayName)

	matches, err := f.uc.GetMatches(ctx, "boris", 20, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "anna", matches[0].Partner.ID)
	assert.Equal(t, resp.Conversation.ID, matches[0].ConversationID)
	f.uc.WaitNotifications()
}
