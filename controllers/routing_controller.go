// File: /controllers/routing_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trailcraft-api/models"
	"trailcraft-api/services"
	"trailcraft-api/utils"
)

type RoutingController struct {
	routing        *services.RoutingService
	defaultProfile string
	observer       Observer
}

func NewRoutingController(routing *services.RoutingService, defaultProfile string, observer Observer) *RoutingController {
	if observer == nil {
		observer = nopObserver{}
	}
	if !services.IsValidProfile(defaultProfile) {
		defaultProfile = services.ProfileFootWalking
	}
	return &RoutingController{routing: routing, defaultProfile: defaultProfile, observer: observer}
}

// DirectionsRequest is the body of POST /api/routing/directions.
type DirectionsRequest struct {
	Points  []models.TrailPoint `json:"points" binding:"required"`
	Profile string              `json:"profile"`
}

// GetDirections snaps consecutive points to paths, one segment per pair.
func (rc *RoutingController) GetDirections(c *gin.Context) {
	var req DirectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	profile := req.Profile
	if profile == "" {
		profile = rc.defaultProfile
	}
	if !services.IsValidProfile(profile) {
		utils.SendErrorMessage(c, http.StatusBadRequest, "Invalid profile",
			"profile must be one of foot-walking, cycling-regular, driving-car")
		return
	}
	if len(req.Points) < services.MinTrailPoints {
		respondError(c, &services.InsufficientPointsError{Count: len(req.Points)})
		return
	}
	if errs := services.ValidatePoints(req.Points); len(errs) > 0 {
		respondError(c, errs)
		return
	}

	segments := rc.routing.RouteTrail(c.Request.Context(), req.Points, profile)
	fallbacks := services.CountFallbacks(segments)
	rc.observer.RoutingObserved(len(segments), fallbacks)

	c.JSON(http.StatusOK, gin.H{
		"profile":        profile,
		"segments":       segments,
		"total_distance": services.TotalRouteDistance(segments),
		"total_duration": services.TotalRouteDuration(segments),
		"fallbacks":      fallbacks,
	})
}
