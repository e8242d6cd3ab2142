package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"expenseflow/internal/auth"
	"expenseflow/internal/expense"
	"expenseflow/internal/models"
)

// Response is the standard JSON envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type createExpenseRequest struct {
	Title            string          `json:"title" binding:"required"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	Date             string          `json:"date" binding:"required"`
	Category         string          `json:"category" binding:"required"`
	Description      string          `json:"description"`
	ReceiptReference string          `json:"receipt_reference"`
}

type updateExpenseRequest struct {
	Title            *string          `json:"title"`
	Amount           *decimal.Decimal `json:"amount"`
	Date             *string          `json:"date"`
	Category         *string          `json:"category"`
	Description      *string          `json:"description"`
	ReceiptReference *string          `json:"receipt_reference"`
}

type reviewRequest struct {
	Comments string `json:"comments"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "expenseflow",
		"time":    time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "email and password are required"})
		return
	}

	user, token, err := s.authService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"token": token,
		"user":  user,
	}})
}

func (s *Server) handleLogout(c *gin.Context) {
	// Idempotent: an absent or stale token is still a successful logout
	if token := bearerToken(c); token != "" {
		s.authService.EndSession(c.Request.Context(), token)
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "name, email and password are required"})
		return
	}

	// Only an authenticated admin may assign a role; self-registration
	// always produces an employee account.
	role := models.RoleEmployee
	if req.Role != "" && req.Role != models.RoleEmployee.String() {
		requester, err := s.requester(c)
		if err != nil || !requester.HasAnyRole(models.RoleAdmin) {
			c.JSON(http.StatusForbidden, Response{Error: "assigning a role requires admin privileges"})
			return
		}
		role = models.Role(req.Role)
	}

	user, err := s.authService.Register(c.Request.Context(), auth.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       role,
		Department: req.Department,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: user})
}

func (s *Server) handleListExpenses(c *gin.Context) {
	expenses, err := s.expenseService.List(c.Request.Context(), actor(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if expenses == nil {
		expenses = []*models.Expense{}
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expenses})
}

func (s *Server) handleGetExpense(c *gin.Context) {
	record, err := s.expenseService.Get(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: record})
}

func (s *Server) handleCreateExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "title, amount, date and category are required"})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, Response{Error: err.Error()})
		return
	}

	record, err := s.expenseService.Create(c.Request.Context(), actor(c), expense.CreateInput{
		Title:            req.Title,
		Amount:           req.Amount,
		Date:             date,
		Category:         models.Category(req.Category),
		Description:      req.Description,
		ReceiptReference: req.ReceiptReference,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: record})
}

func (s *Server) handleUpdateExpense(c *gin.Context) {
	var req updateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Error: "invalid request body"})
		return
	}

	input := expense.UpdateInput{
		Title:            req.Title,
		Amount:           req.Amount,
		Description:      req.Description,
		ReceiptReference: req.ReceiptReference,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, Response{Error: err.Error()})
			return
		}
		input.Date = &date
	}
	if req.Category != nil {
		category := models.Category(*req.Category)
		input.Category = &category
	}

	record, err := s.expenseService.Update(c.Request.Context(), actor(c), c.Param("id"), input)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: record})
}

func (s *Server) handleDeleteExpense(c *gin.Context) {
	if err := s.expenseService.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

func (s *Server) handleSubmitExpense(c *gin.Context) {
	record, err := s.expenseService.Submit(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: record})
}

func (s *Server) handleApproveExpense(c *gin.Context) {
	var req reviewRequest
	_ = c.ShouldBindJSON(&req) // comments are optional on approval

	record, err := s.expenseService.Approve(c.Request.Context(), actor(c), c.Param("id"), req.Comments)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: record})
}

func (s *Server) handleRejectExpense(c *gin.Context) {
	var req reviewRequest
	_ = c.ShouldBindJSON(&req)

	record, err := s.expenseService.Reject(c.Request.Context(), actor(c), c.Param("id"), req.Comments)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: record})
}

func (s *Server) handleSummary(c *gin.Context) {
	summary, err := s.expenseService.Summarize(c.Request.Context(), actor(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

func (s *Server) handleExportReport(c *gin.Context) {
	user := actor(c)

	expenses, err := s.expenseService.List(c.Request.Context(), user)
	if err != nil {
		s.writeError(c, err)
		return
	}
	summary, err := s.expenseService.Summarize(c.Request.Context(), user)
	if err != nil {
		s.writeError(c, err)
		return
	}

	filename := fmt.Sprintf("expenses_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := s.exporter.WriteWorkbook(c.Writer, expenses, summary); err != nil {
		s.logger.Error("Failed to export report", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}

// requester resolves the optional session on endpoints that do not require
// authentication
func (s *Server) requester(c *gin.Context) (*models.User, error) {
	token := bearerToken(c)
	if token == "" {
		return nil, auth.ErrInvalidSession
	}
	return s.authService.UserFromToken(c.Request.Context(), token)
}

// writeError translates typed service errors into HTTP status codes
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidSession):
		c.JSON(http.StatusUnauthorized, Response{Error: err.Error()})
	case errors.Is(err, expense.ErrForbidden):
		c.JSON(http.StatusForbidden, Response{Error: err.Error()})
	case errors.Is(err, expense.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Error: err.Error()})
	case errors.Is(err, expense.ErrInvalidState), errors.Is(err, auth.ErrDuplicateIdentity):
		c.JSON(http.StatusConflict, Response{Error: err.Error()})
	case errors.Is(err, expense.ErrValidationFailed), errors.Is(err, auth.ErrValidationFailed):
		c.JSON(http.StatusUnprocessableEntity, Response{Error: err.Error()})
	default:
		s.logger.Error("Unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Error: "internal server error"})
	}
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be formatted as YYYY-MM-DD")
	}
	return date, nil
}
