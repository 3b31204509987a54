package handlers

import (
	"net/http"

	"nestmart/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler issues bearer tokens.
type AuthHandler struct {
	Tokens *utils.TokenService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(tokens *utils.TokenService) *AuthHandler {
	return &AuthHandler{Tokens: tokens}
}

// IssueTokenHandler handles POST /jwt. The request body becomes the token
// claims as-is.
func (h *AuthHandler) IssueTokenHandler(c *gin.Context) {
	logger := getLogger(c)

	var claims map[string]interface{}
	if err := c.ShouldBindJSON(&claims); err != nil {
		utils.JSONError(c, logger, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	token, err := h.Tokens.GenerateToken(claims)
	if err != nil {
		utils.JSONError(c, logger, http.StatusInternalServerError, "Failed to sign token", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
