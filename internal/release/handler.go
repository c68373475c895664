package release

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"givetrace/donor-portal/donor-portal-backend/internal/auth"
	"givetrace/donor-portal/donor-portal-backend/pkg/httpx"
)

type Handler struct {
	authority *Authority
}

func NewHandler(authority *Authority) *Handler {
	return &Handler{authority: authority}
}

// RegisterRoutes registers the release route on an authenticated group.
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler) {
	rg.POST("/:recordType/:id", handler.Release)
}

func (h *Handler) Release(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	result, err := h.authority.Release(c.Request.Context(), c.Param("recordType"), id, actor)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
