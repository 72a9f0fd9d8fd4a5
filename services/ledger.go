// services/ledger.go
package services

import (
	"errors"
	"sync"

	"studiotrack-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Canonical payment status vocabulary. Every call site derives the label
// through DeriveStatus; nothing else is allowed to invent one.
const (
	StatusPending       = "Pending"
	StatusPartiallyPaid = "Partially Paid"
	StatusPaid          = "Paid"
)

var (
	ErrAmountNotPositive = errors.New("payment amount must be greater than zero")
	ErrOverpayment       = errors.New("payment would exceed the project total")
	ErrInvalidMethod     = errors.New("unknown payment method")
	ErrProjectNotFound   = errors.New("project not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrNotProjectOwner   = errors.New("project does not belong to the acting user")
)

// DeriveStatus maps a project total and accumulated paid amount to a payment
// status. Pure and order-independent: a zero total is never Paid, even though
// paid >= total holds trivially.
func DeriveStatus(total, paid float64) string {
	switch {
	case total > 0 && paid >= total:
		return StatusPaid
	case paid > 0 && paid < total:
		return StatusPartiallyPaid
	default:
		return StatusPending
	}
}

// LedgerService maintains the paid-amount/payment-status projection of a
// project from its append-only payment history. The history append and the
// project totals update always commit in one transaction, and operations on
// the same project are serialized through a per-project mutex so concurrent
// requests cannot interleave the read-compute-write sequence.
type LedgerService struct {
	db    *gorm.DB
	locks sync.Map // projectID -> *sync.Mutex
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

func (s *LedgerService) projectLock(projectID uuid.UUID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(projectID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// RecordPaymentInput carries one payment event to apply to a project.
type RecordPaymentInput struct {
	Amount        float64
	PaymentMethod string
	ReferenceID   string
	Remarks       string
}

// RecordPayment validates and applies a payment against a project owned by
// the acting user. Overpayment is rejected, not clamped: the caller must
// lower the amount or raise the project total first.
func (s *LedgerService) RecordPayment(projectID, actingUserID uuid.UUID, input RecordPaymentInput) (*models.PaymentHistory, *models.ProjectStatus, error) {
	if input.Amount <= 0 {
		return nil, nil, ErrAmountNotPositive
	}
	if !validPaymentMethod(input.PaymentMethod) {
		return nil, nil, ErrInvalidMethod
	}

	mu := s.projectLock(projectID)
	mu.Lock()
	defer mu.Unlock()

	var project models.ProjectStatus
	var entry models.PaymentHistory

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, "id = ?", projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return err
		}

		if project.UserID != actingUserID {
			return ErrNotProjectOwner
		}

		newPaid := project.PaidAmount + input.Amount
		if newPaid > project.TotalAmount {
			return ErrOverpayment
		}

		newStatus := DeriveStatus(project.TotalAmount, newPaid)

		entry = models.PaymentHistory{
			ProjectID:     project.ID,
			CustomerID:    project.CustomerID,
			UserID:        actingUserID,
			Amount:        input.Amount,
			Status:        newStatus,
			PaymentMethod: input.PaymentMethod,
			ReferenceID:   input.ReferenceID,
			Remarks:       input.Remarks,
		}
		if entry.PaymentMethod == "" {
			entry.PaymentMethod = models.PaymentMethodCash
		}

		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if err := tx.Model(&project).Updates(map[string]interface{}{
			"paid_amount":    newPaid,
			"payment_status": newStatus,
		}).Error; err != nil {
			return err
		}

		project.PaidAmount = newPaid
		project.PaymentStatus = newStatus
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &entry, &project, nil
}

// DeletePayment removes a history entry and rebuilds the parent project's
// paid amount by resumming the remaining entries.
func (s *LedgerService) DeletePayment(paymentID, actingUserID uuid.UUID) (*models.ProjectStatus, error) {
	var entry models.PaymentHistory
	if err := s.db.First(&entry, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	mu := s.projectLock(entry.ProjectID)
	mu.Lock()
	defer mu.Unlock()

	var project models.ProjectStatus

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&project, "id = ?", entry.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return err
		}

		if project.UserID != actingUserID {
			return ErrNotProjectOwner
		}

		res := tx.Where("id = ?", paymentID).Delete(&models.PaymentHistory{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPaymentNotFound
		}

		var remaining float64
		if err := tx.Model(&models.PaymentHistory{}).
			Where("project_id = ?", entry.ProjectID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&remaining).Error; err != nil {
			return err
		}

		newStatus := DeriveStatus(project.TotalAmount, remaining)

		if err := tx.Model(&project).Updates(map[string]interface{}{
			"paid_amount":    remaining,
			"payment_status": newStatus,
		}).Error; err != nil {
			return err
		}

		project.PaidAmount = remaining
		project.PaymentStatus = newStatus
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &project, nil
}

// History returns the project's payment entries ordered by creation time.
func (s *LedgerService) History(projectID uuid.UUID) ([]models.PaymentHistory, error) {
	var entries []models.PaymentHistory
	if err := s.db.Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func validPaymentMethod(method string) bool {
	switch method {
	case "", models.PaymentMethodCash, models.PaymentMethodCard,
		models.PaymentMethodUPI, models.PaymentMethodBankTransfer:
		return true
	}
	return false
}
