package api

import (
	"net/http"

	"cafe-pos/internal/models"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type settingRequest struct {
	// Pointer so an explicit empty string clears the value.
	Value *string `json:"value" binding:"required"`
}

func (h *Handler) listSettings(c *gin.Context) {
	settings, err := h.store.ListSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) putSetting(c *gin.Context) {
	key := c.Param("key")

	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.store.PutSetting(c.Request.Context(), key, *req.Value); err != nil {
		respondError(c, err)
		return
	}

	h.events.Publish(c.Request.Context(), models.EventSettingUpdated, map[string]any{
		"key": key, "value": *req.Value,
	})
	c.JSON(http.StatusOK, gin.H{"key": key, "value": *req.Value})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.store.GetUserByCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	c.JSON(http.StatusOK, models.User{ID: user.ID, Username: user.Username, Role: user.Role})
}
