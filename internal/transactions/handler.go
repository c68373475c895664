package transactions

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"givetrace/donor-portal/donor-portal-backend/internal/transactions/export"
	"givetrace/donor-portal/donor-portal-backend/pkg/httpx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers transaction routes on an authenticated group.
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler) {
	rg.GET("", handler.List)
	rg.GET("/export", handler.Export)
}

func parseFilter(c *gin.Context) Filter {
	filter := Filter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &t
		}
	}
	return filter
}

func (h *Handler) List(c *gin.Context) {
	entries, err := h.service.GetUnifiedTransactions(c.Request.Context(), parseFilter(c), c.Query("sort"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": entries, "count": len(entries)})
}

// Export streams the reconciled view as CSV or Excel.
func (h *Handler) Export(c *gin.Context) {
	entries, err := h.service.GetUnifiedTransactions(c.Request.Context(), parseFilter(c), c.Query("sort"))
	if err != nil {
		httpx.WriteError(c, err)
		return
	}

	rows := make([]export.Row, 0, len(entries))
	for _, e := range entries {
		hash := ""
		if e.TxHash != nil {
			hash = *e.TxHash
		}
		rows = append(rows, export.Row{
			ID:           e.ID,
			Source:       e.Source,
			Type:         e.Type,
			Amount:       e.Amount.String(),
			Currency:     e.Currency,
			Status:       e.Status,
			CreatedAt:    e.CreatedAt,
			CauseName:    e.CauseName,
			Counterparty: e.Counterparty,
			TxHash:       hash,
		})
	}

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		c.Header("Content-Disposition", `attachment; filename="transactions.xlsx"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := export.WriteExcel(c.Writer, rows); err != nil {
			httpx.WriteError(c, err)
		}
	default:
		c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
		c.Header("Content-Type", "text/csv")
		if err := export.WriteCSV(c.Writer, rows); err != nil {
			httpx.WriteError(c, err)
		}
	}
}
