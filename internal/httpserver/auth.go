package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"genwear/internal/domain"
)

const customerCtxKey = "genwear.customer"

// bearerAuth resolves the Authorization header to a customer and aborts
// with 401 on anything that does not validate.
func bearerAuth(svc CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		customer, err := svc.LookupByToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(customerCtxKey, customer)
		c.Next()
	}
}

// adminAuth gates external/admin operations behind a static token.
func adminAuth(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if adminToken == "" || !ok || token != adminToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin token required"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func currentCustomer(c *gin.Context) *domain.Customer {
	v, ok := c.Get(customerCtxKey)
	if !ok {
		return nil
	}
	customer, _ := v.(*domain.Customer)
	return customer
}
