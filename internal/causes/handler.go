package causes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"givetrace/donor-portal/donor-portal-backend/internal/auth"
	"givetrace/donor-portal/donor-portal-backend/pkg/httpx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers cause routes on an authenticated group.
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler) {
	rg.POST("", handler.Create)
	rg.GET("", handler.List)
	rg.GET("/:id", handler.Get)
	rg.PUT("/:id/wallet", handler.SetWallet)
}

func (h *Handler) Create(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	var req CreateCauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cause, err := h.service.CreateCause(c.Request.Context(), req, actor)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cause)
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.ListCauses(c.Request.Context())
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cause id"})
		return
	}

	cause, err := h.service.GetCause(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, cause)
}

func (h *Handler) SetWallet(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cause id"})
		return
	}

	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cause, err := h.service.SetWallet(c.Request.Context(), id, req.WalletAddress, actor)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, cause)
}
