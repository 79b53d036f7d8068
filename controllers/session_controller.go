// File: /controllers/session_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trailcraft-api/middleware"
	"trailcraft-api/services"
	"trailcraft-api/utils"
)

// SessionController exposes editing sessions: map clicks, point edits, form state and submission.
type SessionController struct {
	sessions *services.SessionService
}

func NewSessionController(sessions *services.SessionService) *SessionController {
	return &SessionController{sessions: sessions}
}

type DrawingModeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type PlacePointRequest struct {
	Latitude  *float64 `json:"lat" binding:"required"`
	Longitude *float64 `json:"lon" binding:"required"`
}

// CreateSession starts an empty editing session.
func (sc *SessionController) CreateSession(c *gin.Context) {
	utils.SendCreated(c, "Session created", sc.sessions.Create())
}

func (sc *SessionController) GetSession(c *gin.Context) {
	snap, err := sc.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (sc *SessionController) DeleteSession(c *gin.Context) {
	if err := sc.sessions.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.SendSuccess(c, "Session deleted", nil)
}

// SetDrawingMode turns map-click placement on or off.
func (sc *SessionController) SetDrawingMode(c *gin.Context) {
	var req DrawingModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	snap, err := sc.sessions.SetDrawingMode(c.Param("id"), *req.Enabled)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// PlacePoint handles a map click. It is rejected unless drawing mode is on.
func (sc *SessionController) PlacePoint(c *gin.Context) {
	var req PlacePointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	point, snap, err := sc.sessions.PlacePoint(c.Param("id"), *req.Latitude, *req.Longitude)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"point":   point,
		"session": snap,
	})
}

// RemovePoint deletes the point at the :index path parameter.
func (sc *SessionController) RemovePoint(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid point index")
		return
	}

	snap, err := sc.sessions.RemovePoint(c.Param("id"), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (sc *SessionController) Undo(c *gin.Context) {
	snap, removed, err := sc.sessions.Undo(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"removed": removed,
		"session": snap,
	})
}

// ClearPoints empties the session and leaves drawing mode.
func (sc *SessionController) ClearPoints(c *gin.Context) {
	snap, err := sc.sessions.ClearPoints(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// UpdateMetadata merges changed form fields into the session.
func (sc *SessionController) UpdateMetadata(c *gin.Context) {
	var req services.MetadataUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	snap, err := sc.sessions.UpdateMetadata(c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Validate reports every problem that would block a submission.
func (sc *SessionController) Validate(c *gin.Context) {
	report, err := sc.sessions.Validate(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Submit sends the session's trail. The bearer header wins over the stored token.
func (sc *SessionController) Submit(c *gin.Context) {
	result := sc.sessions.Submit(c.Request.Context(), c.Param("id"), c.GetString(middleware.BearerTokenKey))
	if result.Err != nil {
		respondError(c, result.Err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Trail submitted successfully",
		"acknowledgement": result.Acknowledgement,
		"mutation":        result.Mutation,
	})
}
