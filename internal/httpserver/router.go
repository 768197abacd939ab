package httpserver

import (
	"context"
	"errors"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"genwear/internal/domain"
	cartrepo "genwear/internal/repository/cart"
	customersvc "genwear/internal/service/customer"
	ordersvc "genwear/internal/service/order"
	"genwear/internal/validation"
)

// CustomerService is the slice of the customer service the handlers need.
type CustomerService interface {
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*domain.Customer, string, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.Customer, error)
	UpdateShippingAddress(ctx context.Context, customerID string, in customersvc.AddressInput) error
	AccessTTLSeconds() int
}

// OrderService drives order creation, listing and status updates.
type OrderService interface {
	Create(ctx context.Context, customerID string, in ordersvc.CreateInput) (*domain.Order, error)
	List(ctx context.Context, customerID string) ([]domain.Order, error)
	Get(ctx context.Context, customerID, orderID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID, newStatus string) (*domain.Order, error)
}

// ProductService exposes catalog reads.
type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

// Deps carries everything the router needs.
type Deps struct {
	CustomerSvc CustomerService
	OrderSvc    OrderService
	ProductSvc  ProductService
	CartRepo    cartrepo.Repository
	AdminToken  string
}

// buildRouter wires all storefront routes.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.CustomerSvc == nil || deps.OrderSvc == nil || deps.ProductSvc == nil || deps.CartRepo == nil {
		return nil, errors.New("httpserver: missing dependencies")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	validate := validation.New()

	v1 := router.Group("/v1")
	v1.POST("/signup", signupHandler(deps.CustomerSvc))
	v1.POST("/login", loginHandler(deps.CustomerSvc))
	v1.GET("/products", listProductsHandler(deps.ProductSvc))
	v1.GET("/products/:id", getProductHandler(deps.ProductSvc))
	v1.PATCH("/orders/:id/status", adminAuth(deps.AdminToken), updateOrderStatusHandler(deps.OrderSvc))

	authed := v1.Group("", bearerAuth(deps.CustomerSvc))
	authed.GET("/me", meHandler())
	authed.PUT("/me/address", updateAddressHandler(deps.CustomerSvc, validate))
	authed.GET("/me/cart", getCartHandler(deps.CartRepo))
	authed.PUT("/me/cart", replaceCartHandler(deps.CartRepo))
	authed.POST("/orders", createOrderHandler(deps.OrderSvc, validate))
	authed.GET("/orders", listOrdersHandler(deps.OrderSvc))
	authed.GET("/orders/:id", getOrderHandler(deps.OrderSvc))

	return router, nil
}
