package tenant

import (
	"net/http"

	"shared-memo-pad/internal/errors"
	"shared-memo-pad/internal/memo"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Save stores the posted document for the caller's credential.
func (h *Handler) Save(c *gin.Context) {
	credential := c.GetString("credential")

	var doc memo.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.Error(errors.Validation("Invalid document payload", err))
		return
	}

	if err := h.store.Save(c.Request.Context(), credential, &doc); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Load returns the stored document, or the canonical empty document for a
// credential that has not saved yet.
func (h *Handler) Load(c *gin.Context) {
	credential := c.GetString("credential")

	doc, err := h.store.Load(c.Request.Context(), credential)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Delete removes the credential's document entirely.
func (h *Handler) Delete(c *gin.Context) {
	credential := c.GetString("credential")

	if err := h.store.Delete(c.Request.Context(), credential); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
