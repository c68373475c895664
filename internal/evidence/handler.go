package evidence

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"givetrace/donor-portal/donor-portal-backend/pkg/security"
)

type Handler struct {
	store ProofStore
}

func NewHandler(store ProofStore) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers evidence routes on an authenticated group.
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler) {
	rg.POST("/upload", handler.Upload)
	rg.GET("/url", handler.PresignedURL)
}

// Upload stores a proof file and returns its reference plus the evidence
// kind inferred from the filename.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer file.Close()

	checked := security.NewChecksumReader(file)
	reference, err := h.store.Store(c.Request.Context(), fileHeader.Filename, checked)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to store proof"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"reference": reference,
		"kind":      KindForFilename(fileHeader.Filename),
		"checksum":  checked.Checksum(),
	})
}

func (h *Handler) PresignedURL(c *gin.Context) {
	reference := c.Query("ref")
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ref is required"})
		return
	}

	url, err := h.store.PresignedURL(c.Request.Context(), reference)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to sign url"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
