package handler

import (
	"net/http"

	"github.com/gdugdh24/partnerfinder/internal/discovery"
	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gin-gonic/gin"
)

// DiscoveryHandler exposes the caller's card stack session.
type DiscoveryHandler struct {
	manager *discovery.Manager
}

func NewDiscoveryHandler(manager *discovery.Manager) *DiscoveryHandler {
	return &DiscoveryHandler{
		manager: manager,
	}
}

type DiscoverySwipeRequest struct {
	Direction string `json:"direction" binding:"required"`
}

type DragRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// DiscoverySwipeResponse is the outcome of the committed card plus the stack
// after it.
type DiscoverySwipeResponse struct {
	Outcome  discovery.Outcome  `json:"outcome"`
	Error    string             `json:"error,omitempty"`
	Snapshot discovery.Snapshot `json:"snapshot"`
}

type ReleaseResponse struct {
	Gesture  discovery.GestureState `json:"gesture"`
	Snapshot discovery.Snapshot     `json:"snapshot"`
}

func (h *DiscoveryHandler) session(c *gin.Context) (*discovery.Session, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	s, err := h.manager.Session(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "unable to load")
		return nil, false
	}
	return s, true
}

// GetSession handles GET /discovery
// @Summary Get my card stack
// @Description Visible window, filter, gesture and load state of the caller's session
// @Tags discovery
// @Security BearerAuth
// @Produce json
// @Success 200 {object} discovery.Snapshot
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /discovery [get]
func (h *DiscoveryHandler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// SetFilter handles PUT /discovery/filter
// @Summary Replace the filter
// @Description Replaces the filter as a whole and reloads the stack
// @Tags discovery
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body domain.FilterConfig true "Filter"
// @Success 200 {object} discovery.Snapshot
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /discovery/filter [put]
func (h *DiscoveryHandler) SetFilter(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var cfg domain.FilterConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}

	if err := s.SetFilter(c.Request.Context(), cfg); err != nil {
		respondError(c, err, "unable to load")
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// ResetFilter handles DELETE /discovery/filter
// @Summary Reset the filter
// @Tags discovery
// @Security BearerAuth
// @Produce json
// @Success 200 {object} discovery.Snapshot
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /discovery/filter [delete]
func (h *DiscoveryHandler) ResetFilter(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.ResetFilter(c.Request.Context()); err != nil {
		respondError(c, err, "unable to load")
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// Reload handles POST /discovery/reload
// @Summary Reload candidates
// @Tags discovery
// @Security BearerAuth
// @Produce json
// @Success 200 {object} discovery.Snapshot
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /discovery/reload [post]
func (h *DiscoveryHandler) Reload(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Reload(c.Request.Context()); err != nil {
		respondError(c, err, "unable to load")
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// Swipe handles POST /discovery/swipe
// @Summary Swipe the top card
// @Description Commits the top card and waits for its resolution
// @Tags discovery
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body DiscoverySwipeRequest true "Direction"
// @Success 200 {object} DiscoverySwipeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /discovery/swipe [post]
func (h *DiscoveryHandler) Swipe(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req DiscoverySwipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}
	direction, err := domain.ParseDirection(req.Direction)
	if err != nil {
		respondError(c, err, "invalid swipe direction")
		return
	}

	outcome, err := s.Swipe(c.Request.Context(), direction)
	if err != nil && !outcome.Resolution.Recorded() {
		respondError(c, err, "unable to record your choice")
		return
	}

	resp := DiscoverySwipeResponse{Outcome: outcome, Snapshot: s.Snapshot()}
	if err != nil {
		_ = c.Error(err)
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// Drag handles POST /discovery/drag
// @Summary Move the top card
// @Tags discovery
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body DragRequest true "Offset from the drag start"
// @Success 200 {object} discovery.Snapshot
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /discovery/drag [post]
func (h *DiscoveryHandler) Drag(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req DragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
		})
		return
	}
	if err := s.Drag(req.DX, req.DY); err != nil {
		respondError(c, err, "failed to move card")
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// Release handles POST /discovery/release
// @Summary Release the top card
// @Description Commits past the threshold, springs back otherwise
// @Tags discovery
// @Security BearerAuth
// @Produce json
// @Success 200 {object} ReleaseResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /discovery/release [post]
func (h *DiscoveryHandler) Release(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	state, err := s.Release()
	if err != nil {
		respondError(c, err, "failed to release card")
		return
	}
	c.JSON(http.StatusOK, ReleaseResponse{Gesture: state, Snapshot: s.Snapshot()})
}
