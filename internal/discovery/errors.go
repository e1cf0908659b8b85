package discovery

import "errors"

var (
	ErrNoCard      = errors.New("no card to swipe")
	ErrGestureBusy = errors.New("gesture not accepting input")
	// ErrStaleCard is returned to a swipe whose card was replaced by a
	// reload before it could be resolved.
	ErrStaleCard = errors.New("card is no longer on top of the stack")
)
