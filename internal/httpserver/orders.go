package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"genwear/internal/domain"
	ordersvc "genwear/internal/service/order"
	"genwear/internal/validation"
)

func createOrderHandler(svc OrderService, validate *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ordersvc.CreateInput
		if err := validation.BindAndValidate(c, &in, validate); err != nil {
			return
		}
		customer := currentCustomer(c)
		order, err := svc.Create(c.Request.Context(), customer.ID, in)
		if err != nil {
			if errors.Is(err, ordersvc.ErrCustomerNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order creation failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"orderId":     order.ID,
			"orderNumber": order.OrderNumber,
		})
	}
}

func listOrdersHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer := currentCustomer(c)
		orders, err := svc.List(c.Request.Context(), customer.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "orders unavailable"})
			return
		}
		if orders == nil {
			orders = []domain.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func getOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer := currentCustomer(c)
		order, err := svc.Get(c.Request.Context(), customer.ID, c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func updateOrderStatusHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in statusRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
			return
		}
		order, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), in.Status)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			case errors.Is(err, ordersvc.ErrInvalidStatus), errors.Is(err, ordersvc.ErrBackwardTransition):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "status update failed"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}
