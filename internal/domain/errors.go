package domain

import "errors"

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")
	ErrSwipeNotFound        = errors.New("swipe decision not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchExists          = errors.New("match already exists")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidParticipants  = errors.New("conversation needs exactly two participants")

	ErrCannotSwipeSelf  = errors.New("cannot swipe on own profile")
	ErrInvalidDirection = errors.New("invalid swipe direction")
	ErrInvalidFilter    = errors.New("invalid filter configuration")

	// ErrDecisionExists means the card was already decided; the caller tried
	// to decide it twice.
	ErrDecisionExists = errors.New("decision already recorded")
	ErrSwipeInFlight  = errors.New("another swipe is being resolved")

	ErrUnableToLoad = errors.New("unable to load candidates")
	ErrRecordFailed = errors.New("unable to record your choice")
	// ErrMatchFailed is returned alongside a recorded decision when match
	// detection or match creation failed afterwards.
	ErrMatchFailed = errors.New("match detection failed")
)
