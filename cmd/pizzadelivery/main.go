package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/geomm/pizza-delivery/internal/config"
	"github.com/geomm/pizza-delivery/internal/database"
	"github.com/geomm/pizza-delivery/internal/handler"
	"github.com/geomm/pizza-delivery/internal/mw"
	"github.com/geomm/pizza-delivery/internal/service"
	"github.com/geomm/pizza-delivery/internal/store"
	"github.com/geomm/pizza-delivery/internal/worker"
)

func main() {
	cfg := config.New()

	db, err := database.NewDB(cfg.DatabaseURI)
	if err != nil {
		slog.Error("failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB(context.Background(), db)

	if err := database.InitSchema(db); err != nil {
		slog.Error("failed to init DB schema", "error", err)
		os.Exit(1)
	}

	st := store.NewPostgres(db)

	// Services
	userSvc := service.NewUserService(st)
	tokenSvc := service.NewTokenService(st, cfg.JWTSecret)
	menuSvc := service.NewMenuService(st)
	pricingSvc := service.NewPricingService(st)
	cartSvc := service.NewCartService(st, pricingSvc)

	stripe := service.NewStripeClient(cfg.StripeAddress, cfg.StripeKey, cfg.StripeSource)
	mailgun := service.NewMailgunClient(cfg.MailgunAddress, cfg.MailgunDomain, cfg.MailgunKey, cfg.MailSender)
	tracker := worker.NewDeliveryTracker(mailgun, cfg.MailPollInterval, cfg.DeliveryTimeout)
	checkoutSvc := service.NewCheckoutService(st, pricingSvc, stripe, mailgun, tracker, tokenSvc)

	if err := menuSvc.Seed(context.Background()); err != nil {
		slog.Error("failed to seed menu", "error", err)
		os.Exit(1)
	}

	// Router
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/users", handler.CreateUserHandler(userSvc))
	r.Post("/tokens", handler.LoginHandler(userSvc, tokenSvc))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.JWTSecret, tokenSvc))

		r.Get("/users", handler.GetUserHandler(userSvc, tokenSvc))
		r.Put("/users", handler.UpdateUserHandler(userSvc, tokenSvc))
		r.Delete("/users", handler.DeleteUserHandler(userSvc, tokenSvc))

		r.Get("/tokens", handler.GetTokenHandler(tokenSvc))
		r.Put("/tokens", handler.ExtendTokenHandler(tokenSvc))
		r.Delete("/tokens", handler.LogoutHandler(tokenSvc))

		r.Get("/menu", handler.ListMenuHandler(menuSvc))
		r.Post("/menu", handler.CreateMenuItemHandler(menuSvc))
		r.Put("/menu", handler.UpdateMenuItemHandler(menuSvc))
		r.Delete("/menu", handler.DeleteMenuItemHandler(menuSvc))

		r.Post("/carts", handler.CreateCartHandler(cartSvc))
		r.Get("/carts", handler.GetCartHandler(cartSvc, tokenSvc))
		r.Put("/carts", handler.UpdateCartHandler(cartSvc, checkoutSvc, tokenSvc))
		r.Delete("/carts", handler.DeleteCartHandler(cartSvc, tokenSvc))
	})

	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	checkoutSvc.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop in-flight delivery polling
	checkoutSvc.Wait()

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
