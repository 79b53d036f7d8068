// File: /controllers/errors.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trailcraft-api/repositories"
	"trailcraft-api/services"
	"trailcraft-api/utils"
)

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var (
		verrs        services.ValidationErrors
		verr         *services.ValidationError
		insufficient *services.InsufficientPointsError
		authErr      *services.AuthenticationError
		netErr       *services.NetworkError
		encErr       *services.EncodingError
	)

	switch {
	case errors.As(err, &verrs):
		utils.SendValidationErrors(c, "Please fix the highlighted fields", services.FieldErrors(verrs))
	case errors.As(err, &verr):
		utils.SendValidationErrors(c, verr.Reason, services.FieldErrors(services.ValidationErrors{verr}))
	case errors.As(err, &insufficient):
		utils.SendErrorMessage(c, http.StatusBadRequest, "Insufficient points", insufficient.Error())
	case errors.Is(err, services.ErrInvalidCoordinates),
		errors.Is(err, services.ErrDrawingModeOff),
		errors.Is(err, services.ErrPointIndexOutOfRange):
		utils.SendErrorMessage(c, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.As(err, &authErr):
		utils.SendErrorMessage(c, http.StatusUnauthorized, "Authentication failed", authErr.Reason)
	case errors.As(err, &netErr):
		utils.SendErrorMessage(c, http.StatusBadGateway, "Submission failed", netErr.Error())
	case errors.As(err, &encErr):
		log.Printf("Payload encoding error: %v", err)
		utils.SendErrorMessage(c, http.StatusInternalServerError, "Failed to encode payload", encErr.Error())
	case errors.Is(err, repositories.ErrTrailNotFound):
		utils.SendError(c, http.StatusNotFound, "Trail not found")
	case errors.Is(err, services.ErrSessionNotFound):
		utils.SendError(c, http.StatusNotFound, "Session not found")
	case errors.Is(err, services.ErrSubmissionInFlight):
		utils.SendErrorMessage(c, http.StatusConflict, "Submission in progress", err.Error())
	default:
		log.Printf("Unexpected error: %v", err)
		utils.SendError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func parseTrailID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		utils.SendError(c, http.StatusBadRequest, "Invalid trail ID")
		return 0, false
	}
	return uint(id), true
}
