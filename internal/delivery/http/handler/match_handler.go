package handler

import (
	"net/http"

	"github.com/gdugdh24/partnerfinder/internal/usecase/swipe"
	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	swipeUseCase *swipe.SwipeUseCase
}

func NewMatchHandler(swipeUseCase *swipe.SwipeUseCase) *MatchHandler {
	return &MatchHandler{
		swipeUseCase: swipeUseCase,
	}
}

type listMatchesQuery struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

// GetMatches handles GET /matches
// @Summary List my matches
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} swipe.MatchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches [get]
func (h *MatchHandler) GetMatches(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var q listMatchesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid pagination",
		})
		return
	}

	matches, err := h.swipeUseCase.GetMatches(c.Request.Context(), userID, q.Limit, q.Offset)
	if err != nil {
		respondError(c, err, "failed to get matches")
		return
	}

	c.JSON(http.StatusOK, matches)
}
