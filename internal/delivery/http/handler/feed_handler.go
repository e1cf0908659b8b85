package handler

import (
	"net/http"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gdugdh24/partnerfinder/internal/usecase/feed"
	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feedUseCase *feed.FeedUseCase
}

func NewFeedHandler(feedUseCase *feed.FeedUseCase) *FeedHandler {
	return &FeedHandler{
		feedUseCase: feedUseCase,
	}
}

// feedQuery carries the filter as query parameters. Absent parameters keep
// their default.
type feedQuery struct {
	MaxDistanceKm      float64  `form:"max_distance_km"`
	AgeMin             int      `form:"age_min"`
	AgeMax             int      `form:"age_max"`
	Gender             string   `form:"gender"`
	MinCommonInterests int      `form:"min_common_interests"`
	Expertise          []string `form:"expertise"`
}

func defaultFeedQuery() feedQuery {
	d := domain.DefaultFilterConfig()
	return feedQuery{
		MaxDistanceKm:      d.MaxDistanceKm,
		AgeMin:             d.AgeRange.Min,
		AgeMax:             d.AgeRange.Max,
		Gender:             d.Gender,
		MinCommonInterests: d.MinCommonInterests,
	}
}

func (q feedQuery) filter() domain.FilterConfig {
	return domain.FilterConfig{
		MaxDistanceKm:      q.MaxDistanceKm,
		AgeRange:           domain.AgeRange{Min: q.AgeMin, Max: q.AgeMax},
		Gender:             q.Gender,
		MinCommonInterests: q.MinCommonInterests,
		Expertise:          q.Expertise,
	}
}

// GetFeed handles GET /feed
// @Summary Get candidate feed
// @Description Filtered candidates in store order, decorated for the viewer
// @Tags feed
// @Security BearerAuth
// @Produce json
// @Param max_distance_km query number false "Maximum distance in km"
// @Param age_min query int false "Minimum age"
// @Param age_max query int false "Maximum age"
// @Param gender query string false "Gender or 'all'"
// @Param min_common_interests query int false "Minimum shared interests"
// @Param expertise query []string false "Accepted expertise levels"
// @Success 200 {array} feed.FeedCardResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /feed [get]
func (h *FeedHandler) GetFeed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	q := defaultFeedQuery()
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid query parameters",
		})
		return
	}

	cards, err := h.feedUseCase.Feed(c.Request.Context(), userID, q.filter())
	if err != nil {
		respondError(c, err, "unable to load")
		return
	}

	c.JSON(http.StatusOK, cards)
}
