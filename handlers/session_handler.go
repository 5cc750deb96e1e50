package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-navigator/geo"
	"campus-navigator/routing"
	"campus-navigator/services"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

func (h *SessionHandler) RegisterRoutes(router gin.IRouter) {
	sessions := router.Group("/api/sessions")
	sessions.POST("", h.CreateSession)
	sessions.GET("/:id", h.GetSession)
	sessions.DELETE("/:id", h.DeleteSession)
	sessions.POST("/:id/pause", h.PauseSession)
	sessions.POST("/:id/resume", h.ResumeSession)
	sessions.POST("/:id/repeat", h.RepeatTour)
	sessions.PUT("/:id/mute", h.SetMuted)
	sessions.PUT("/:id/destination", h.SetDestination)
}

type muteRequest struct {
	Muted bool `json:"muted"`
}

type createSessionRequest struct {
	Start *geo.Coordinate `json:"start" binding:"required"`
	End   *geo.Coordinate `json:"end" binding:"required"`
	Speed string          `json:"speed"`
	Tour  bool            `json:"tour"`
	Muted bool            `json:"muted"`
}

type destinationRequest struct {
	End *geo.Coordinate `json:"end" binding:"required"`
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	log.Println("=== Received session request ===")

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("ERROR: Failed to parse request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Start.Valid() || !req.End.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	id, route, err := h.sessionService.Create(services.SessionRequest{
		Start: *req.Start,
		End:   *req.End,
		Speed: req.Speed,
		Tour:  req.Tour,
		Muted: req.Muted,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    id,
		"route": routing.PrepareResponse(route),
	})
	log.Println("=== Session request completed ===")
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessionService.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.sessionService.Delete(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) PauseSession(c *gin.Context) {
	session, err := h.sessionService.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	session.Pause()
	c.JSON(http.StatusOK, session.Snapshot())
}

func (h *SessionHandler) ResumeSession(c *gin.Context) {
	session, err := h.sessionService.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	session.Resume()
	c.JSON(http.StatusOK, session.Snapshot())
}

func (h *SessionHandler) RepeatTour(c *gin.Context) {
	session, err := h.sessionService.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"repeated": session.RepeatTour()})
}

func (h *SessionHandler) SetMuted(c *gin.Context) {
	var req muteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := h.sessionService.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	session.SetMuted(req.Muted)
	c.JSON(http.StatusOK, session.Snapshot())
}

func (h *SessionHandler) SetDestination(c *gin.Context) {
	var req destinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.End.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	route, err := h.sessionService.SetDestination(c.Param("id"), *req.End)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, routing.PrepareResponse(route))
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoRoute):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
