// controllers/payment.go
package controllers

import (
	"errors"
	"net/http"

	"studiotrack-backend/services"
	"studiotrack-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	Ledger *services.LedgerService
	Files  *services.FileService
)

// InitServices wires the controller layer to its services. Must run after
// the database connection is established.
func InitServices(db *gorm.DB) {
	Ledger = services.NewLedgerService(db)
	Files = services.NewFileService()
}

// AddPaymentInput defines the expected JSON structure for recording a payment
type AddPaymentInput struct {
	Amount        float64 `json:"amount" binding:"required"`
	PaymentMethod string  `json:"paymentMethod"`
	ReferenceID   string  `json:"referenceId"`
	Remarks       string  `json:"remarks"`
}

func ledgerErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrAmountNotPositive),
		errors.Is(err, services.ErrOverpayment),
		errors.Is(err, services.ErrInvalidMethod):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrPaymentNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrNotProjectOwner):
		return http.StatusForbidden, err.Error()
	}
	return http.StatusInternalServerError, "Server error"
}

// AddPayment records a payment against a project owned by the logged-in user
func AddPayment(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	userUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return
	}

	projectUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var input AddPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	entry, project, err := Ledger.RecordPayment(projectUUID, userUUID, services.RecordPaymentInput{
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		ReferenceID:   input.ReferenceID,
		Remarks:       input.Remarks,
	})
	if err != nil {
		status, message := ledgerErrorStatus(err)
		utils.RespondWithError(c, status, message)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Payment added successfully",
		"payment":       entry,
		"paidAmount":    project.PaidAmount,
		"paymentStatus": project.PaymentStatus,
	})
}

// DeletePayment removes a payment entry and reverses its effect on the project
func DeletePayment(c *gin.Context) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	userUUID, err := uuid.Parse(userID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid user ID format")
		return
	}

	paymentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID format")
		return
	}

	project, err := Ledger.DeletePayment(paymentUUID, userUUID)
	if err != nil {
		status, message := ledgerErrorStatus(err)
		utils.RespondWithError(c, status, message)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Payment deleted successfully",
		"paidAmount":    project.PaidAmount,
		"paymentStatus": project.PaymentStatus,
	})
}

// GetPaymentHistory returns the project's payment entries ordered by creation time
func GetPaymentHistory(c *gin.Context) {
	projectUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	entries, err := Ledger.History(projectUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve payment history")
		return
	}

	c.JSON(http.StatusOK, entries)
}
