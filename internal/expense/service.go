// Package expense is the lifecycle manager for expense records: creation,
// edits, deletion and the submit/approve/reject transitions, together with
// the per-role visibility rule over the collection.
//
// Every operation takes the acting user explicitly. Role and ownership are
// checked here, at the trusted boundary, regardless of what any client
// already enforced.
package expense

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"expenseflow/internal/domain/workflow"
	"expenseflow/internal/models"
	"expenseflow/pkg/utils"
)

// Store is the persistence surface the lifecycle manager needs
type Store interface {
	Create(tx *sql.Tx, expense *models.Expense) error
	GetByID(id string) (*models.Expense, error)
	ListAll() ([]*models.Expense, error)
	ListBySubmitter(userID string) ([]*models.Expense, error)
	Update(tx *sql.Tx, expense *models.Expense) error
	Delete(tx *sql.Tx, id string) error
}

// TxRunner executes a function inside a database transaction
type TxRunner interface {
	WithTransaction(fn func(*sql.Tx) error) error
}

// Service enforces the expense lifecycle rules
type Service struct {
	store  Store
	tx     TxRunner
	logger *zap.Logger

	// Per-record locks serialize concurrent mutations of the same expense,
	// so a submit racing an edit cannot produce a lost update.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewService creates a new expense lifecycle service
func NewService(store Store, tx TxRunner, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		tx:     tx,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// CreateInput is the payload for creating a new draft expense
type CreateInput struct {
	Title            string
	Amount           decimal.Decimal
	Date             time.Time
	Category         models.Category
	Description      string
	ReceiptReference string
}

// UpdateInput is a partial update; nil fields are left unchanged
type UpdateInput struct {
	Title            *string
	Amount           *decimal.Decimal
	Date             *time.Time
	Category         *models.Category
	Description      *string
	ReceiptReference *string
}

// List returns the expenses visible to the actor, most recently submitted
// first. Employees see only their own records; managers and admins see all.
func (s *Service) List(ctx context.Context, actor *models.User) ([]*models.Expense, error) {
	if actor == nil {
		return nil, ErrForbidden
	}

	if actor.Role.CanReview() {
		return s.store.ListAll()
	}
	return s.store.ListBySubmitter(actor.ID)
}

// Get returns a single expense if it exists and is visible to the actor.
// An invisible record is reported as not found, not as forbidden.
func (s *Service) Get(ctx context.Context, actor *models.User, id string) (*models.Expense, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	return s.getVisible(actor, id)
}

// Create records a new expense in draft status owned by the actor
func (s *Service) Create(ctx context.Context, actor *models.User, input CreateInput) (*models.Expense, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	now := time.Now()
	expense := &models.Expense{
		ID:               uuid.NewString(),
		Title:            utils.SanitizeString(strings.TrimSpace(input.Title)),
		Amount:           input.Amount,
		Date:             input.Date,
		Category:         input.Category,
		Description:      utils.SanitizeString(input.Description),
		Status:           workflow.StateDraft.String(),
		ReceiptReference: input.ReceiptReference,
		SubmittedBy:      actor.ID,
		SubmittedByName:  actor.Name,
		SubmittedAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := s.tx.WithTransaction(func(tx *sql.Tx) error {
		return s.store.Create(tx, expense)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Expense created",
		zap.String("expense_id", expense.ID),
		zap.String("submitted_by", actor.ID))

	return expense, nil
}

// Update overwrites the editable fields of an expense. Only the owner may
// edit, and only while the expense is in draft or rejected status.
func (s *Service) Update(ctx context.Context, actor *models.User, id string, input UpdateInput) (*models.Expense, error) {
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	return s.mutate(actor, id, workflow.TriggerEdit, requireOwner, func(e *models.Expense) {
		if input.Title != nil {
			e.Title = utils.SanitizeString(strings.TrimSpace(*input.Title))
		}
		if input.Amount != nil {
			e.Amount = *input.Amount
		}
		if input.Date != nil {
			e.Date = *input.Date
		}
		if input.Category != nil {
			e.Category = *input.Category
		}
		if input.Description != nil {
			e.Description = utils.SanitizeString(*input.Description)
		}
		if input.ReceiptReference != nil {
			e.ReceiptReference = *input.ReceiptReference
		}
	})
}

// Delete permanently removes a draft expense. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, actor *models.User, id string) error {
	if actor == nil {
		return ErrForbidden
	}

	unlock := s.lockRecord(id)
	defer unlock()

	expense, err := s.getVisible(actor, id)
	if err != nil {
		return err
	}
	if err := requireOwner(actor, expense); err != nil {
		return err
	}
	if err := s.fire(expense, workflow.TriggerDelete); err != nil {
		return err
	}

	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		return s.store.Delete(tx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Expense deleted",
		zap.String("expense_id", id),
		zap.String("actor", actor.ID))

	return nil
}

// Submit moves a draft or rejected expense to submitted. Only the owner may
// submit. On resubmission the previous review fields are kept as history.
func (s *Service) Submit(ctx context.Context, actor *models.User, id string) (*models.Expense, error) {
	return s.mutate(actor, id, workflow.TriggerSubmit, requireOwner, nil)
}

// Approve moves a submitted expense to approved and stamps the reviewer.
// Only managers and admins may approve; comments are optional.
func (s *Service) Approve(ctx context.Context, actor *models.User, id string, comments string) (*models.Expense, error) {
	return s.mutate(actor, id, workflow.TriggerApprove, requireReviewer, func(e *models.Expense) {
		stampReview(e, actor, comments)
	})
}

// Reject moves a submitted expense to rejected. Only managers and admins may
// reject, and a non-empty comment explaining the rejection is mandatory.
func (s *Service) Reject(ctx context.Context, actor *models.User, id string, comments string) (*models.Expense, error) {
	if strings.TrimSpace(comments) == "" {
		return nil, fmt.Errorf("%w: rejection requires a comment", ErrValidationFailed)
	}

	return s.mutate(actor, id, workflow.TriggerReject, requireReviewer, func(e *models.Expense) {
		stampReview(e, actor, comments)
	})
}

// Summarize computes the derived aggregates over the set visible to the
// actor. The result is recomputed on every call, never cached.
func (s *Service) Summarize(ctx context.Context, actor *models.User) (*Summary, error) {
	expenses, err := s.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	return Summarize(expenses), nil
}

// mutate is the single guarded path every state-changing operation funnels
// through: entitlement check, state machine fire, field changes and the
// write all happen under the record's lock, and the write is transactional.
func (s *Service) mutate(
	actor *models.User,
	id string,
	trigger workflow.Trigger,
	entitled func(*models.User, *models.Expense) error,
	apply func(*models.Expense),
) (*models.Expense, error) {
	if actor == nil {
		return nil, ErrForbidden
	}

	unlock := s.lockRecord(id)
	defer unlock()

	expense, err := s.getVisible(actor, id)
	if err != nil {
		return nil, err
	}
	if err := entitled(actor, expense); err != nil {
		return nil, err
	}
	if err := s.fire(expense, trigger); err != nil {
		return nil, err
	}

	if apply != nil {
		apply(expense)
	}
	expense.UpdatedAt = time.Now()

	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		return s.store.Update(tx, expense)
	})
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Expense updated",
		zap.String("expense_id", expense.ID),
		zap.String("trigger", trigger.String()),
		zap.String("status", expense.Status),
		zap.String("actor", actor.ID))

	return expense, nil
}

// fire runs the trigger through the lifecycle state machine and writes the
// resulting status back onto the record
func (s *Service) fire(expense *models.Expense, trigger workflow.Trigger) error {
	machine := workflow.NewLifecycle(workflow.State(expense.Status))
	if err := machine.Fire(context.Background(), trigger); err != nil {
		return fmt.Errorf("%w: cannot %s expense in status %s", ErrInvalidState, trigger, expense.Status)
	}
	expense.Status = machine.State().String()
	return nil
}

// getVisible fetches an expense and applies the visibility rule. Records an
// employee does not own look exactly like missing records.
func (s *Service) getVisible(actor *models.User, id string) (*models.Expense, error) {
	expense, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrNotFound
	}
	if !actor.Role.CanReview() && !expense.IsOwnedBy(actor) {
		return nil, ErrNotFound
	}
	return expense, nil
}

func (s *Service) lockRecord(id string) func() {
	s.locksMu.Lock()
	lock, exists := s.locks[id]
	if !exists {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.locksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func requireOwner(actor *models.User, expense *models.Expense) error {
	if !expense.IsOwnedBy(actor) {
		return fmt.Errorf("%w: only the submitter may modify this expense", ErrForbidden)
	}
	return nil
}

func requireReviewer(actor *models.User, expense *models.Expense) error {
	if !actor.HasAnyRole(models.RoleManager, models.RoleAdmin) {
		return fmt.Errorf("%w: approval authority requires manager or admin role", ErrForbidden)
	}
	return nil
}

func stampReview(e *models.Expense, reviewer *models.User, comments string) {
	now := time.Now()
	e.ReviewedBy = reviewer.ID
	e.ReviewedByName = reviewer.Name
	e.ReviewedAt = &now
	if strings.TrimSpace(comments) != "" {
		e.Comments = utils.SanitizeString(comments)
	}
}

func validateCreate(input CreateInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidationFailed)
	}
	if err := utils.ValidateAmount(input.Amount); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if input.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidationFailed)
	}
	if !input.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidationFailed, input.Category)
	}
	return nil
}

func validateUpdate(input UpdateInput) error {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrValidationFailed)
	}
	if input.Amount != nil {
		if err := utils.ValidateAmount(*input.Amount); err != nil {
			return fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
	}
	if input.Date != nil && input.Date.IsZero() {
		return fmt.Errorf("%w: date cannot be empty", ErrValidationFailed)
	}
	if input.Category != nil && !input.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidationFailed, *input.Category)
	}
	return nil
}
