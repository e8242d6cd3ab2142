// Package http is the HTTP adapter: it translates requests into auth and
// expense service calls and typed service errors into status codes. No
// lifecycle rule lives here; the services re-check everything.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expenseflow/internal/auth"
	"expenseflow/internal/expense"
	"expenseflow/internal/report"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config         ServerConfig
	httpServer     *http.Server
	router         *gin.Engine
	authService    *auth.Service
	expenseService *expense.Service
	exporter       *report.Exporter
	logger         *zap.Logger
}

// NewServer creates a new HTTP server wired to the given services
func NewServer(
	config ServerConfig,
	authService *auth.Service,
	expenseService *expense.Service,
	exporter *report.Exporter,
	logger *zap.Logger,
) *Server {
	router := gin.New()

	server := &Server{
		config:         config,
		router:         router,
		authService:    authService,
		expenseService: expenseService,
		exporter:       exporter,
		logger:         logger,
	}

	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware())

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api/v1")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/login", s.handleLogin)
		authRoutes.POST("/logout", s.handleLogout)
		authRoutes.POST("/register", s.handleRegister)
	}

	protected := api.Group("")
	protected.Use(s.authRequired())
	{
		protected.GET("/expenses", s.handleListExpenses)
		protected.POST("/expenses", s.handleCreateExpense)
		protected.GET("/expenses/summary", s.handleSummary)
		protected.GET("/expenses/:id", s.handleGetExpense)
		protected.PUT("/expenses/:id", s.handleUpdateExpense)
		protected.DELETE("/expenses/:id", s.handleDeleteExpense)
		protected.POST("/expenses/:id/submit", s.handleSubmitExpense)
		protected.POST("/expenses/:id/approve", s.handleApproveExpense)
		protected.POST("/expenses/:id/reject", s.handleRejectExpense)
		protected.GET("/reports/export", s.handleExportReport)
	}
}

// Start runs the server until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("HTTP server listening", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
