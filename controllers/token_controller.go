// File: /controllers/token_controller.go
package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"trailcraft-api/services"
	"trailcraft-api/utils"
)

type TokenController struct {
	tokens *services.TokenStore
}

func NewTokenController(tokens *services.TokenStore) *TokenController {
	return &TokenController{tokens: tokens}
}

type SetTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// GetToken reports whether a token is saved. The token itself is never returned.
func (tc *TokenController) GetToken(c *gin.Context) {
	token, err := tc.tokens.Get()
	if err != nil {
		log.Printf("Failed to load token: %v", err)
		utils.SendError(c, http.StatusInternalServerError, "Failed to load token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"configured":  token != "",
		"fingerprint": services.TokenFingerprint(token),
	})
}

// SetToken checks the token structure and saves it.
func (tc *TokenController) SetToken(c *gin.Context) {
	var req SetTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	if err := tc.tokens.Set(req.Token); err != nil {
		respondError(c, err)
		return
	}

	token, _ := tc.tokens.Get()
	log.Printf("Token saved (%s)", services.TokenFingerprint(token))
	utils.SendSuccess(c, "Token saved", gin.H{
		"configured":  true,
		"fingerprint": services.TokenFingerprint(token),
	})
}

func (tc *TokenController) ClearToken(c *gin.Context) {
	if err := tc.tokens.Clear(); err != nil {
		log.Printf("Failed to clear token: %v", err)
		utils.SendError(c, http.StatusInternalServerError, "Failed to clear token")
		return
	}
	utils.SendSuccess(c, "Token cleared", nil)
}
