// Package memory keeps every store in process memory. It backs
// STORAGE_TYPE=memory and the use case tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gdugdh24/partnerfinder/internal/repository"
	"github.com/google/uuid"
)

// Store holds the profiles, decisions, matches and conversations behind a
// single lock so the repositories it hands out see one consistent state.
type Store struct {
	mu sync.RWMutex

	profiles     map[string]*domain.Profile
	profileOrder []string

	decisions map[pairKey]*domain.SwipeDecision

	matches       map[pairKey]*domain.Match
	matchOrder    []pairKey
	conversations map[pairKey]*domain.Conversation

	now func() time.Time
}

type pairKey struct {
	a, b string
}

func canonical(a, b string) pairKey {
	a, b = domain.OrderedPair(a, b)
	return pairKey{a, b}
}

func NewStore() *Store {
	return &Store{
		profiles:      make(map[string]*domain.Profile),
		decisions:     make(map[pairKey]*domain.SwipeDecision),
		matches:       make(map[pairKey]*domain.Match),
		conversations: make(map[pairKey]*domain.Conversation),
		now:           time.Now,
	}
}

func (s *Store) Profiles() repository.ProfileRepository           { return (*profileRepository)(s) }
func (s *Store) Swipes() repository.SwipeRepository               { return (*swipeRepository)(s) }
func (s *Store) Matches() repository.MatchRepository              { return (*matchRepository)(s) }
func (s *Store) Conversations() repository.ConversationRepository { return (*conversationRepository)(s) }

func cloneProfile(p *domain.Profile) *domain.Profile {
	c := *p
	c.Interests = slices.Clone(p.Interests)
	return &c
}

type profileRepository Store

func (r *profileRepository) Create(_ context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.ID]; ok {
		return domain.ErrProfileAlreadyExists
	}
	now := r.now()
	profile.CreatedAt, profile.UpdatedAt = now, now
	r.profiles[profile.ID] = cloneProfile(profile)
	r.profileOrder = append(r.profileOrder, profile.ID)
	return nil
}

func (r *profileRepository) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (r *profileRepository) Update(_ context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.profiles[profile.ID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	profile.CreatedAt = existing.CreatedAt
	profile.UpdatedAt = r.now()
	r.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

func (r *profileRepository) ListVisible(_ context.Context) ([]*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Profile
	for _, id := range r.profileOrder {
		if p := r.profiles[id]; p.IsVisible {
			out = append(out, cloneProfile(p))
		}
	}
	return out, nil
}

type swipeRepository Store

func (r *swipeRepository) Create(_ context.Context, decision *domain.SwipeDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{decision.ActorID, decision.TargetID}
	if _, ok := r.decisions[key]; ok {
		return domain.ErrDecisionExists
	}
	if decision.ID == "" {
		decision.ID = uuid.NewString()
	}
	decision.CreatedAt = r.now()
	d := *decision
	r.decisions[key] = &d
	return nil
}

func (r *swipeRepository) GetByPair(_ context.Context, actorID, targetID string) (*domain.SwipeDecision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decisions[pairKey{actorID, targetID}]
	if !ok {
		return nil, domain.ErrSwipeNotFound
	}
	c := *d
	return &c, nil
}

func (r *swipeRepository) ListTargetIDsByActor(_ context.Context, actorID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for key := range r.decisions {
		if key.a == actorID {
			ids = append(ids, key.b)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *swipeRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, d := range r.decisions {
		if d.ID == id {
			delete(r.decisions, key)
			return nil
		}
	}
	return domain.ErrSwipeNotFound
}

type matchRepository Store

func (r *matchRepository) Create(_ context.Context, match *domain.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := canonical(match.User1ID, match.User2ID)
	if _, ok := r.matches[key]; ok {
		return domain.ErrMatchExists
	}
	match.User1ID, match.User2ID = key.a, key.b
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	match.CreatedAt = r.now()
	m := *match
	m.Interests = slices.Clone(match.Interests)
	r.matches[key] = &m
	r.matchOrder = append(r.matchOrder, key)
	return nil
}

func (r *matchRepository) GetByUsers(_ context.Context, user1ID, user2ID string) (*domain.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.matches[canonical(user1ID, user2ID)]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	c := *m
	return &c, nil
}

func (r *matchRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]*domain.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*domain.Match
	// newest first, like the Postgres ordering
	for i := len(r.matchOrder) - 1; i >= 0; i-- {
		m := r.matches[r.matchOrder[i]]
		if m.HasUser(userID) {
			c := *m
			all = append(all, &c)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (r *matchRepository) MatchedUserIDs(_ context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for _, key := range r.matchOrder {
		if other, ok := r.matches[key].GetOtherUserID(userID); ok {
			ids = append(ids, other)
		}
	}
	return ids, nil
}

type conversationRepository Store

func (r *conversationRepository) Create(_ context.Context, conversation *domain.Conversation) error {
	if len(conversation.Participants) != 2 {
		return domain.ErrInvalidParticipants
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := canonical(conversation.Participants[0], conversation.Participants[1])
	if _, ok := r.conversations[key]; ok {
		return domain.ErrMatchExists
	}
	conversation.Participants = []string{key.a, key.b}
	if conversation.ID == "" {
		conversation.ID = uuid.NewString()
	}
	conversation.CreatedAt = r.now()
	c := *conversation
	r.conversations[key] = &c
	return nil
}

func (r *conversationRepository) GetByParticipants(_ context.Context, user1ID, user2ID string) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conversations[canonical(user1ID, user2ID)]
	if !ok {
		return nil, domain.ErrConversationNotFound
	}
	out := *c
	out.Participants = slices.Clone(c.Participants)
	return &out, nil
}
