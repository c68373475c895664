package donations

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"givetrace/donor-portal/donor-portal-backend/internal/auth"
	"givetrace/donor-portal/donor-portal-backend/pkg/httpx"
)

// VerificationNotifier announces donations that passed verification.
// A nil notifier disables announcements.
type VerificationNotifier interface {
	NotifyDonationVerified(donationID, causeID uuid.UUID)
}

type Handler struct {
	service  Service
	notifier VerificationNotifier
}

func NewHandler(service Service, notifier VerificationNotifier) *Handler {
	return &Handler{service: service, notifier: notifier}
}

// RegisterRoutes registers donation routes on an authenticated group.
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler) {
	rg.POST("", handler.Create)
	rg.GET("/quote", handler.Quote)
	rg.GET("/:id", handler.Get)
	rg.POST("/:id/evidence", handler.SubmitEvidence)
	rg.POST("/:id/transfer-hash", handler.AttachTransferHash)
	rg.POST("/:id/fail", handler.Fail)
}

func (h *Handler) Create(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	var req CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	donation, err := h.service.CreateDonation(c.Request.Context(), req, actor)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, donation)
}

func (h *Handler) Quote(c *gin.Context) {
	raw, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	quote, err := h.service.Quote(raw)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid donation id"})
		return
	}

	donation, err := h.service.GetDonation(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, donation)
}

func (h *Handler) SubmitEvidence(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid donation id"})
		return
	}

	var req SubmitEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	donation, err := h.service.SubmitEvidence(c.Request.Context(), id, req, actor)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	if h.notifier != nil && donation.Status == StatusVerified {
		h.notifier.NotifyDonationVerified(donation.ID, donation.CauseID)
	}
	c.JSON(http.StatusOK, donation)
}

func (h *Handler) AttachTransferHash(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid donation id"})
		return
	}

	var req struct {
		TxHash string `json:"tx_hash" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	donation, err := h.service.AttachTransferHash(c.Request.Context(), id, req.TxHash)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, donation)
}

func (h *Handler) Fail(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid donation id"})
		return
	}

	donation, err := h.service.Fail(c.Request.Context(), id, actor)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, donation)
}
