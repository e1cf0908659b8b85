package swipe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gdugdh24/partnerfinder/internal/infrastructure/lock"
	"github.com/gdugdh24/partnerfinder/internal/infrastructure/notify"
	"github.com/gdugdh24/partnerfinder/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const DefaultLockTTL = 10 * time.Second

type SwipeUseCase struct {
	swipeRepo        repository.SwipeRepository
	matchRepo        repository.MatchRepository
	conversationRepo repository.ConversationRepository
	profileRepo      repository.ProfileRepository
	locker           lock.Locker
	notifier         notify.Notifier
	lockTTL          time.Duration
	log              zerolog.Logger

	notifications sync.WaitGroup
}

func NewSwipeUseCase(
	swipeRepo repository.SwipeRepository,
	matchRepo repository.MatchRepository,
	conversationRepo repository.ConversationRepository,
	profileRepo repository.ProfileRepository,
	locker lock.Locker,
	notifier notify.Notifier,
	lockTTL time.Duration,
	log zerolog.Logger,
) *SwipeUseCase {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &SwipeUseCase{
		swipeRepo:        swipeRepo,
		matchRepo:        matchRepo,
		conversationRepo: conversationRepo,
		profileRepo:      profileRepo,
		locker:           locker,
		notifier:         notifier,
		lockTTL:          lockTTL,
		log:              log.With().Str("component", "swipe").Logger(),
	}
}

// SwipeRequest represents a swipe action
type SwipeRequest struct {
	TargetID  string `json:"target_id" binding:"required"`
	Direction string `json:"direction" binding:"required"`
}

// SwipeResponse represents swipe result
type SwipeResponse struct {
	Status       domain.ResolutionStatus `json:"status"`
	IsMatch      bool                    `json:"is_match"`
	Decision     *domain.SwipeDecision   `json:"decision,omitempty"`
	Match        *domain.Match           `json:"match,omitempty"`
	Conversation *domain.Conversation    `json:"conversation,omitempty"`
	MatchedUser  *MatchedUserProfile     `json:"matched_user,omitempty"`
}

// MatchedUserProfile represents matched user info
type MatchedUserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
}

// CreateSwipe resolves a swipe addressed by target id.
func (uc *SwipeUseCase) CreateSwipe(ctx context.Context, actorID string, req *SwipeRequest) (*SwipeResponse, error) {
	direction, err := domain.ParseDirection(req.Direction)
	if err != nil {
		return nil, err
	}
	if actorID == req.TargetID {
		return nil, domain.ErrCannotSwipeSelf
	}

	target, err := uc.profileRepo.GetByID(ctx, req.TargetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get target profile: %w", err)
	}

	res, err := uc.Resolve(ctx, actorID, target, direction)
	if res == nil {
		return nil, err
	}

	response := &SwipeResponse{
		Status:       res.Status,
		IsMatch:      res.Status == domain.StatusMatched,
		Decision:     res.Decision,
		Match:        res.Match,
		Conversation: res.Conversation,
	}
	if response.IsMatch {
		response.MatchedUser = &MatchedUserProfile{
			ID:          target.ID,
			DisplayName: target.DisplayName,
			PhotoURL:    target.PhotoURL,
			Bio:         target.Bio,
			Location:    target.Location,
		}
	}
	return response, err
}

// Resolve records actor's decision about target and detects a mutual
// accept.
//
// A nil Resolution means nothing was recorded. Once the decision is stored
// the Resolution is always returned, even when match detection fails
// afterwards; that failure is reported as an error wrapping
// domain.ErrMatchFailed.
func (uc *SwipeUseCase) Resolve(ctx context.Context, actorID string, target *domain.Profile, direction domain.Direction) (*domain.Resolution, error) {
	if target == nil {
		return nil, domain.ErrProfileNotFound
	}
	if target.ID == actorID {
		return nil, domain.ErrCannotSwipeSelf
	}
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDirection, direction)
	}

	l, err := uc.locker.Obtain(ctx, "swipe:"+actorID, uc.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return nil, domain.ErrSwipeInFlight
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrRecordFailed, err)
	}
	defer func() {
		if err := l.Release(context.WithoutCancel(ctx)); err != nil {
			uc.log.Warn().Err(err).Str("actor_id", actorID).Msg("failed to release swipe lock")
		}
	}()

	if err := uc.ensureUndecided(ctx, actorID, target.ID); err != nil {
		return nil, err
	}

	decision := &domain.SwipeDecision{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		TargetID:  target.ID,
		Direction: direction,
	}
	if err := uc.swipeRepo.Create(ctx, decision); err != nil {
		if errors.Is(err, domain.ErrDecisionExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrRecordFailed, err)
	}

	res := &domain.Resolution{Status: domain.StatusRejected, Decision: decision}
	if direction == domain.DirectionReject {
		return res, nil
	}
	res.Status = domain.StatusPending

	mutual, err := uc.swipeRepo.GetByPair(ctx, target.ID, actorID)
	if errors.Is(err, domain.ErrSwipeNotFound) {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("%w: %w", domain.ErrMatchFailed, err)
	}
	if mutual.Direction != domain.DirectionAccept {
		return res, nil
	}

	match, conversation, err := uc.createMatch(ctx, actorID, target, decision, mutual)
	if match != nil {
		res.Status = domain.StatusMatched
		res.Match = match
		res.Conversation = conversation
	}
	if err != nil {
		return res, fmt.Errorf("%w: %w", domain.ErrMatchFailed, err)
	}
	return res, nil
}

// ensureUndecided fails when actor already decided on target or the two are
// already matched.
func (uc *SwipeUseCase) ensureUndecided(ctx context.Context, actorID, targetID string) error {
	_, err := uc.swipeRepo.GetByPair(ctx, actorID, targetID)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s already decided on %s", domain.ErrDecisionExists, actorID, targetID)
	case !errors.Is(err, domain.ErrSwipeNotFound):
		return fmt.Errorf("%w: %w", domain.ErrRecordFailed, err)
	}

	_, err = uc.matchRepo.GetByUsers(ctx, actorID, targetID)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s and %s are already matched", domain.ErrDecisionExists, actorID, targetID)
	case !errors.Is(err, domain.ErrMatchNotFound):
		return fmt.Errorf("%w: %w", domain.ErrRecordFailed, err)
	}
	return nil
}

// createMatch runs the mutual-accept steps in order: match, conversation,
// decision cleanup, notification. The match is returned as soon as it exists
// so a later failure still reports it.
func (uc *SwipeUseCase) createMatch(
	ctx context.Context,
	actorID string,
	target *domain.Profile,
	decision, mutual *domain.SwipeDecision,
) (*domain.Match, *domain.Conversation, error) {
	actor, err := uc.profileRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get actor profile: %w", err)
	}

	match := &domain.Match{
		ID:        uuid.NewString(),
		User1ID:   actorID,
		User2ID:   target.ID,
		Interests: lo.Uniq(lo.Intersect(target.Interests, actor.Interests)),
	}
	err = uc.matchRepo.Create(ctx, match)
	if errors.Is(err, domain.ErrMatchExists) {
		// the counterpart won a concurrent resolution; reuse its match
		return uc.adoptExistingMatch(ctx, actorID, target.ID, decision, mutual)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create match: %w", err)
	}

	conversation := &domain.Conversation{
		ID:           uuid.NewString(),
		MatchID:      match.ID,
		Participants: []string{actorID, target.ID},
	}
	if err := uc.conversationRepo.Create(ctx, conversation); err != nil {
		return match, nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	if err := uc.retireDecisions(ctx, decision, mutual); err != nil {
		return match, conversation, err
	}

	uc.notifyMatch(ctx, match, conversation, actor, target)
	return match, conversation, nil
}

func (uc *SwipeUseCase) adoptExistingMatch(ctx context.Context, actorID, targetID string, decision, mutual *domain.SwipeDecision) (*domain.Match, *domain.Conversation, error) {
	match, err := uc.matchRepo.GetByUsers(ctx, actorID, targetID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get existing match: %w", err)
	}
	conversation, err := uc.conversationRepo.GetByParticipants(ctx, actorID, targetID)
	if err != nil && !errors.Is(err, domain.ErrConversationNotFound) {
		return match, nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if err := uc.retireDecisions(ctx, decision, mutual); err != nil {
		return match, conversation, err
	}
	uc.log.Info().Str("match_id", match.ID).Msg("match already created by counterpart")
	return match, conversation, nil
}

func (uc *SwipeUseCase) retireDecisions(ctx context.Context, decisions ...*domain.SwipeDecision) error {
	for _, d := range decisions {
		err := uc.swipeRepo.Delete(ctx, d.ID)
		if err != nil && !errors.Is(err, domain.ErrSwipeNotFound) {
			return fmt.Errorf("failed to delete decision %s: %w", d.ID, err)
		}
	}
	return nil
}

// notifyMatch tells both participants in the background. Failures are
// logged and never undo the match.
func (uc *SwipeUseCase) notifyMatch(ctx context.Context, match *domain.Match, conversation *domain.Conversation, actor, target *domain.Profile) {
	ctx = context.WithoutCancel(ctx)
	for _, pair := range [][2]*domain.Profile{{actor, target}, {target, actor}} {
		recipient, partner := pair[0], pair[1]
		n := domain.Notification{
			Title: "It's a match!",
			Body:  fmt.Sprintf("You and %s both want to connect", partner.DisplayName),
			Type:  domain.NotificationTypeMatch,
			Data: map[string]string{
				"match_id":        match.ID,
				"conversation_id": conversation.ID,
				"partner_id":      partner.ID,
			},
		}

		uc.notifications.Add(1)
		go func() {
			defer uc.notifications.Done()
			if err := uc.notifier.Send(ctx, recipient.ID, n); err != nil {
				uc.log.Error().Err(err).
					Str("recipient_id", recipient.ID).
					Str("match_id", match.ID).
					Msg("failed to send match notification")
			}
		}()
	}
}

// WaitNotifications blocks until every dispatched notification finished.
func (uc *SwipeUseCase) WaitNotifications() {
	uc.notifications.Wait()
}
