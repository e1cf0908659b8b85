package domain

import "time"

type Match struct {
	ID        string    `json:"id" db:"id"`
	User1ID   string    `json:"user1_id" db:"user1_id"`
	User2ID   string    `json:"user2_id" db:"user2_id"`
	Interests []string  `json:"interests" db:"interests"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (m *Match) HasUser(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

func (m *Match) GetOtherUserID(userID string) (string, bool) {
	if m.User1ID == userID {
		return m.User2ID, true
	}
	if m.User2ID == userID {
		return m.User1ID, true
	}
	return "", false
}

// OrderedPair returns the two ids with the lexically smaller one first, the
// form in which a match pair is stored.
func OrderedPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

type Conversation struct {
	ID           string    `json:"id" db:"id"`
	MatchID      string    `json:"match_id" db:"match_id"`
	Participants []string  `json:"participants" db:"participants"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
