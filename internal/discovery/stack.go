package discovery

import "github.com/gdugdh24/partnerfinder/internal/domain"

// CardStack is an ordered list of candidates with a forward-only cursor.
type CardStack struct {
	cards  []*domain.Profile
	cursor int
}

func NewCardStack(cards []*domain.Profile) *CardStack {
	return &CardStack{cards: cards}
}

// Top returns the card under the cursor, or nil once the stack is exhausted.
func (s *CardStack) Top() *domain.Profile {
	if s.Exhausted() {
		return nil
	}
	return s.cards[s.cursor]
}

// Window returns up to n cards starting at the cursor.
func (s *CardStack) Window(n int) []*domain.Profile {
	if s.Exhausted() || n <= 0 {
		return nil
	}
	end := min(s.cursor+n, len(s.cards))
	out := make([]*domain.Profile, end-s.cursor)
	copy(out, s.cards[s.cursor:end])
	return out
}

// Advance moves past the top card.
func (s *CardStack) Advance() {
	if !s.Exhausted() {
		s.cursor++
	}
}

func (s *CardStack) Exhausted() bool {
	return s.cursor >= len(s.cards)
}

func (s *CardStack) Cursor() int    { return s.cursor }
func (s *CardStack) Len() int       { return len(s.cards) }
func (s *CardStack) Remaining() int { return len(s.cards) - s.cursor }
