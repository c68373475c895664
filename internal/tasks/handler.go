package tasks

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"givetrace/donor-portal/donor-portal-backend/internal/auth"
	"givetrace/donor-portal/donor-portal-backend/pkg/httpx"
)

// VerificationNotifier announces tasks that passed evidence verification.
// A nil notifier disables announcements.
type VerificationNotifier interface {
	NotifyTaskVerified(taskID, causeID uuid.UUID)
}

type Handler struct {
	service  Service
	notifier VerificationNotifier
}

func NewHandler(service Service, notifier VerificationNotifier) *Handler {
	return &Handler{service: service, notifier: notifier}
}

// RegisterRoutes registers task routes on an authenticated group.
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler) {
	rg.POST("", handler.Create)
	rg.GET("/:id", handler.Get)
	rg.POST("/:id/funding", handler.ApplyFunding)
	rg.POST("/:id/evidence", handler.SubmitEvidence)
	rg.POST("/:id/fail", handler.Fail)
}

func (h *Handler) Create(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), req, actor)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	task, err := h.service.GetTask(c.Request.Context(), id)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) ApplyFunding(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req ApplyFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.ApplyFunding(c.Request.Context(), id, req)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) SubmitEvidence(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req SubmitEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.SubmitEvidence(c.Request.Context(), id, req, actor)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	if h.notifier != nil && task.Status == StatusVerified {
		h.notifier.NotifyTaskVerified(task.ID, task.CauseID)
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) Fail(c *gin.Context) {
	actor, _ := auth.ActorFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	task, err := h.service.Fail(c.Request.Context(), id, actor)
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
