package swipe

import (
	"context"
	"fmt"
	"time"
)

// MatchResponse is one entry of a user's match list
type MatchResponse struct {
	MatchID         string              `json:"match_id"`
	ConversationID  string              `json:"conversation_id,omitempty"`
	CommonInterests []string            `json:"common_interests"`
	Partner         *MatchedUserProfile `json:"partner"`
	CreatedAt       time.Time           `json:"created_at"`
}

// GetMatches returns the matches of userID, newest first.
func (uc *SwipeUseCase) GetMatches(ctx context.Context, userID string, limit, offset int) ([]*MatchResponse, error) {
	matches, err := uc.matchRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	responses := make([]*MatchResponse, 0, len(matches))
	for _, m := range matches {
		partnerID, ok := m.GetOtherUserID(userID)
		if !ok {
			continue
		}
		partner, err := uc.profileRepo.GetByID(ctx, partnerID)
		if err != nil {
			uc.log.Warn().Err(err).Str("match_id", m.ID).Msg("skipping match with unreadable partner")
			continue
		}

		resp := &MatchResponse{
			MatchID:         m.ID,
			CommonInterests: m.Interests,
			CreatedAt:       m.CreatedAt,
			Partner: &MatchedUserProfile{
				ID:          partner.ID,
				DisplayName: partner.DisplayName,
				PhotoURL:    partner.PhotoURL,
				Bio:         partner.Bio,
				Location:    partner.Location,
			},
		}
		if conversation, err := uc.conversationRepo.GetByParticipants(ctx, m.User1ID, m.User2ID); err == nil {
			resp.ConversationID = conversation.ID
		}
		responses = append(responses, resp)
	}
	return responses, nil
}
