package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"givetrace/donor-portal/donor-portal-backend/internal/auth"
	"givetrace/donor-portal/donor-portal-backend/pkg/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers settings routes on an authenticated group.
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler) {
	rg.GET("/profile", handler.GetProfile)
	rg.PUT("/profile", handler.UpdateProfile)
	rg.GET("/notifications", handler.GetPreferences)
	rg.PUT("/notifications", handler.UpdatePreferences)
}

func (h *Handler) GetProfile(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	profile, err := h.service.GetProfile(c.Request.Context(), actor.UserID)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), actor.UserID, req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) GetPreferences(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	prefs, err := h.service.GetPreferences(c.Request.Context(), actor.UserID)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) UpdatePreferences(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prefs, err := h.service.UpdatePreferences(c.Request.Context(), actor.UserID, req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}
