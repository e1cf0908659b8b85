package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gdugdh24/partnerfinder/internal/geo"
	"github.com/gdugdh24/partnerfinder/internal/repository"
	"golang.org/x/sync/errgroup"
)

type FeedUseCase struct {
	profileRepo repository.ProfileRepository
	swipeRepo   repository.SwipeRepository
	matchRepo   repository.MatchRepository
	now         func() time.Time
}

func NewFeedUseCase(
	profileRepo repository.ProfileRepository,
	swipeRepo repository.SwipeRepository,
	matchRepo repository.MatchRepository,
) *FeedUseCase {
	return &FeedUseCase{
		profileRepo: profileRepo,
		swipeRepo:   swipeRepo,
		matchRepo:   matchRepo,
		now:         time.Now,
	}
}

// FeedCardResponse represents a candidate card in the feed
type FeedCardResponse struct {
	ID              string   `json:"id"`
	DisplayName     string   `json:"display_name"`
	PhotoURL        string   `json:"photo_url"`
	Bio             string   `json:"bio"`
	Location        string   `json:"location"`
	Age             int      `json:"age"`
	Gender          string   `json:"gender"`
	Interests       []string `json:"interests"`
	CommonInterests []string `json:"common_interests"`
	Expertise       *string  `json:"expertise,omitempty"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
}

// Candidates loads everything the filter needs for viewerID and returns the
// profiles that survive cfg, in store order. Load failures wrap
// domain.ErrUnableToLoad.
func (uc *FeedUseCase) Candidates(ctx context.Context, viewerID string, cfg domain.FilterConfig) ([]*domain.Profile, error) {
	_, candidates, err := uc.load(ctx, viewerID, cfg)
	return candidates, err
}

// load fetches the viewer with everything the filter needs and applies cfg.
func (uc *FeedUseCase) load(ctx context.Context, viewerID string, cfg domain.FilterConfig) (*domain.Profile, []*domain.Profile, error) {
	var (
		viewer  *domain.Profile
		pool    []*domain.Profile
		swiped  []string
		matched []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := uc.profileRepo.GetByID(gctx, viewerID)
		if err != nil {
			return fmt.Errorf("failed to get viewer profile: %w", err)
		}
		viewer = p
		return nil
	})
	g.Go(func() error {
		p, err := uc.profileRepo.ListVisible(gctx)
		if err != nil {
			return fmt.Errorf("failed to list profiles: %w", err)
		}
		pool = p
		return nil
	})
	g.Go(func() error {
		ids, err := uc.swipeRepo.ListTargetIDsByActor(gctx, viewerID)
		if err != nil {
			return fmt.Errorf("failed to list swiped ids: %w", err)
		}
		swiped = ids
		return nil
	})
	g.Go(func() error {
		ids, err := uc.matchRepo.MatchedUserIDs(gctx, viewerID)
		if err != nil {
			return fmt.Errorf("failed to list matched ids: %w", err)
		}
		matched = ids
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrUnableToLoad, err)
	}

	return viewer, FilterCandidates(viewer, pool, NewExclusionSet(swiped, matched), cfg, uc.now()), nil
}

// Feed returns the filtered candidates as cards decorated for the viewer.
func (uc *FeedUseCase) Feed(ctx context.Context, viewerID string, cfg domain.FilterConfig) ([]*FeedCardResponse, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	viewer, candidates, err := uc.load(ctx, viewerID, cfg)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	cards := make([]*FeedCardResponse, 0, len(candidates))
	for _, c := range candidates {
		cards = append(cards, NewFeedCard(viewer, c, now))
	}
	return cards, nil
}

// NewFeedCard builds the card of candidate as seen by viewer.
func NewFeedCard(viewer, candidate *domain.Profile, now time.Time) *FeedCardResponse {
	card := &FeedCardResponse{
		ID:              candidate.ID,
		DisplayName:     candidate.DisplayName,
		PhotoURL:        candidate.PhotoURL,
		Bio:             candidate.Bio,
		Location:        candidate.Location,
		Age:             candidate.Age(now),
		Gender:          candidate.Gender,
		Interests:       candidate.Interests,
		CommonInterests: CommonInterests(viewer.Interests, candidate.Interests),
		Expertise:       candidate.Expertise,
	}
	if d, ok := geo.DistanceBetween(viewer, candidate); ok {
		card.DistanceKm = &d
	}
	return card
}
