// @title        GroupSplit API
// @version      1.0
// @description  Shared-expense groups: log expenses, split them, compute who owes whom.
// @BasePath     /api/v1
// @securityDefinitions.apikey BearerAuth
// @in           header
// @name         Authorization
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/groupsplit/docs"
	"github.com/fkhayef/groupsplit/internal/auth"
	"github.com/fkhayef/groupsplit/internal/config"
	"github.com/fkhayef/groupsplit/internal/database"
	"github.com/fkhayef/groupsplit/internal/expense"
	expensesplit "github.com/fkhayef/groupsplit/internal/expense/split"
	"github.com/fkhayef/groupsplit/internal/group"
	"github.com/fkhayef/groupsplit/internal/notification"
	"github.com/fkhayef/groupsplit/internal/payment"
	"github.com/fkhayef/groupsplit/internal/settlement"
	"github.com/fkhayef/groupsplit/internal/user"
	"github.com/fkhayef/groupsplit/pkg/logging"
	"github.com/fkhayef/groupsplit/pkg/metrics"
	mw "github.com/fkhayef/groupsplit/pkg/middleware"
	"github.com/fkhayef/groupsplit/pkg/response"
)

func main() {
	logging.Setup()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		slog.Error("Failed to apply schema", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to database successfully")

	// Notification feature, also the notifier for groups, expenses and settlements
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// User and auth features
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, auth.Bcrypt{})
	userHandler := user.NewHandler(userService)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := auth.NewService(userRepo, auth.Bcrypt{}, jwtManager)
	authHandler := auth.NewHandler(authService, cfg.CookieSecure)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, notificationService, cfg.DefaultCurrency)
	groupHandler := group.NewHandler(groupService)

	// Expense feature (with split factory injected)
	splitFactory := expensesplit.NewSplitStrategyFactory()
	expenseRepo := expense.NewRepository(db)
	expenseValidator := expense.NewValidator(cfg.DefaultCurrency, splitFactory)
	expenseService := expense.NewService(expenseRepo, groupRepo, expenseValidator, notificationService)
	expenseHandler := expense.NewHandler(expenseService)

	// Settlement feature
	settlementService := settlement.NewService(groupRepo, expenseRepo, notificationService)
	settlementHandler := settlement.NewHandler(settlementService)

	// Payment feature
	paymentRepo := payment.NewRepository(db)
	paymentService := payment.NewService(paymentRepo, userRepo, payment.NewRazorpayClient(cfg.Razorpay), cfg.Razorpay)
	paymentHandler := payment.NewHandler(paymentService)

	authenticate := mw.Authenticate(jwtManager)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())
		r.Mount("/payments", paymentHandler.Routes(authenticate))

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			expenseRouter := expenseHandler.Routes()
			settlementHandler.Register(expenseRouter)

			r.Mount("/groups", groupHandler.Routes())
			r.Mount("/expenses", expenseRouter)
			r.Mount("/users", userHandler.Routes())
			r.Mount("/profile", userHandler.ProfileRoutes())
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
