package handler

import (
	"errors"
	"net/http"

	"github.com/gdugdh24/partnerfinder/internal/delivery/http/middleware"
	"github.com/gdugdh24/partnerfinder/internal/discovery"
	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents success response
type SuccessResponse struct {
	Message string `json:"message"`
}

func currentUserID(c *gin.Context) (string, bool) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "unauthorized",
		})
		return "", false
	}
	return userID, true
}

// errorStatus maps domain errors to a status code and the message shown to
// the user. Unknown errors become a 500 with fallback.
func errorStatus(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnableToLoad):
		// may wrap a missing viewer profile
		return http.StatusServiceUnavailable, "unable to load"
	case errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusNotFound, "profile not found"
	case errors.Is(err, domain.ErrProfileAlreadyExists):
		return http.StatusConflict, "profile already exists"
	case errors.Is(err, domain.ErrCannotSwipeSelf):
		return http.StatusBadRequest, "cannot swipe on own profile"
	case errors.Is(err, domain.ErrInvalidDirection):
		return http.StatusBadRequest, "invalid swipe direction"
	case errors.Is(err, domain.ErrInvalidFilter):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrDecisionExists):
		return http.StatusConflict, "decision already recorded"
	case errors.Is(err, domain.ErrSwipeInFlight):
		return http.StatusConflict, "another swipe is being resolved"
	case errors.Is(err, discovery.ErrNoCard):
		return http.StatusConflict, "no card to swipe"
	case errors.Is(err, discovery.ErrGestureBusy), errors.Is(err, discovery.ErrStaleCard):
		return http.StatusConflict, "card is not ready"
	case errors.Is(err, domain.ErrRecordFailed):
		return http.StatusInternalServerError, "unable to record your choice"
	default:
		return http.StatusInternalServerError, fallback
	}
}

func respondError(c *gin.Context, err error, fallback string) {
	status, message := errorStatus(err, fallback)
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{
		Error: message,
	})
}
