package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"genwear/internal/config"
	"genwear/internal/db"
	"genwear/internal/httpserver"
	cartrepo "genwear/internal/repository/cart"
	customerrepo "genwear/internal/repository/customer"
	orderrepo "genwear/internal/repository/order"
	productrepo "genwear/internal/repository/product"
	sequencerepo "genwear/internal/repository/sequence"
	tokenrepo "genwear/internal/repository/token"
	customersvc "genwear/internal/service/customer"
	ordersvc "genwear/internal/service/order"
	productsvc "genwear/internal/service/product"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	customerService := customersvc.New(customerRepo, tokenRepo)
	productRepo := productrepo.NewPostgres(dbpool)
	productService := productsvc.New(productRepo)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool)
	sequenceRepo := sequencerepo.NewPostgres(dbpool)
	orderService := ordersvc.New(orderRepo, sequenceRepo, customerRepo, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CustomerSvc: customerService,
		OrderSvc:    orderService,
		ProductSvc:  productService,
		CartRepo:    cartRepo,
		AdminToken:  cfg.AdminToken,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
