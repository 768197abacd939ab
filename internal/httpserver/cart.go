package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"genwear/internal/domain"
	cartrepo "genwear/internal/repository/cart"
)

type cartRequest struct {
	Items []domain.CartLine `json:"items"`
}

// getCartHandler returns the stored item list for the calling identity,
// empty when nothing is stored.
func getCartHandler(repo cartrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer := currentCustomer(c)
		items, err := repo.GetItems(c.Request.Context(), customer.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// replaceCartHandler overwrites the stored list wholesale. No merge; the
// last writer wins.
func replaceCartHandler(repo cartrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cartRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		customer := currentCustomer(c)
		if err := repo.ReplaceItems(c.Request.Context(), customer.ID, in.Items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart write failed"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
