package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/purple-water/accounting/internal/auth"
	"github.com/purple-water/accounting/internal/finance/interfaces"
	"github.com/purple-water/accounting/internal/logging"
	"github.com/purple-water/accounting/internal/user"
	"github.com/sirupsen/logrus"
)

// HealthChecker reports the state of the database; DBService satisfies it.
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// Handlers groups the HTTP handlers mounted by the server.
type Handlers struct {
	Auth            *auth.Handler
	User            *user.Handler
	Transaction     *interfaces.TransactionHandler
	ItemCategory    *interfaces.CategoryHandler
	PaymentCategory *interfaces.CategoryHandler
}

type Server struct {
	router        *http.ServeMux
	handlers      Handlers
	authService   auth.Service
	health        HealthChecker
	allowedOrigin string
	logger        logrus.FieldLogger
}

func NewServer(handlers Handlers, authService auth.Service, health HealthChecker, allowedOrigin string, logger logrus.FieldLogger) *Server {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	s := &Server{
		router:        http.NewServeMux(),
		handlers:      handlers,
		authService:   authService,
		health:        health,
		allowedOrigin: allowedOrigin,
		logger:        logger,
	}
	s.RegisterRoutes()
	return s
}

// Handler is the root handler: CORS, then request logging, then routing.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.allowedOrigin)(logging.Middleware(s.logger)(s.router))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusNotFound, map[string]interface{}{
		"status":  "error",
		"message": "Path not found",
		"code":    http.StatusNotFound,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	database := "up"
	if s.health == nil {
		database = "down"
	} else if stats := s.health.Health(r.Context()); stats["status"] != "up" {
		database = "down"
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": database,
	})
}

func (s *Server) RegisterRoutes() {
	router := http.NewServeMux()
	protect := s.authService.JWTAccessTokenMiddleware()
	handle := func(pattern string, h http.HandlerFunc) {
		router.Handle(pattern, protect(h))
	}

	// Public routes
	router.HandleFunc("POST /api/register", s.handlers.User.HandleRegister)
	router.HandleFunc("POST /api/auth/login", s.handlers.Auth.HandleLogin)
	router.HandleFunc("POST /api/auth/2fa/verify", s.handlers.Auth.HandleVerifyTwoFactor)
	router.HandleFunc("GET /api/ready", s.handleReady)

	// Account
	handle("GET /api/protected/profile", s.handlers.User.HandleGetUserProfile)
	handle("POST /api/protected/2fa/register", s.handlers.Auth.HandleRegisterTwoFactor)
	handle("POST /api/protected/2fa/verify-registration", s.handlers.Auth.HandleVerifyTwoFactorRegistration)
	handle("DELETE /api/protected/2fa/disable", s.handlers.Auth.HandleDisableTwoFactor)

	// Transactions
	transactions := s.handlers.Transaction
	handle("GET /api/transactions", transactions.ListTransactions)
	handle("GET /api/transactions/summary", transactions.GetMonthlySummary)
	handle("GET /api/transactions/{id}", transactions.GetTransaction)
	handle("POST /api/transactions", transactions.CreateTransaction)
	handle("PUT /api/transactions/{id}", transactions.UpdateTransaction)
	handle("DELETE /api/transactions/{id}", transactions.DeleteTransaction)

	// Categories
	for prefix, h := range map[string]*interfaces.CategoryHandler{
		"/api/item-categories":    s.handlers.ItemCategory,
		"/api/payment-categories": s.handlers.PaymentCategory,
	} {
		handle("GET "+prefix, h.GetCategories)
		handle("POST "+prefix, h.CreateCategory)
		handle("PUT "+prefix+"/{id}", h.UpdateCategory)
		handle("DELETE "+prefix+"/{id}", h.DeleteCategory)
	}

	router.HandleFunc("/", notFoundHandler)

	s.router = router
}
