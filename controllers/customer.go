package controllers

import (
	"errors"
	"net/http"
	"time"

	"studiotrack-backend/config"
	"studiotrack-backend/models"
	"studiotrack-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Name          string `json:"name" binding:"required"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email"`
	CustomerType  string `json:"customerType"`
	Notes         string `json:"notes"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer
type UpdateCustomerInput struct {
	Name          *string `json:"name"`
	Address       *string `json:"address"`
	ContactNumber *string `json:"contactNumber"`
	Email         *string `json:"email"`
	CustomerType  *string `json:"customerType"`
	Notes         *string `json:"notes"`
}

// CustomerListEntry is a customer row decorated with the latest project info
type CustomerListEntry struct {
	Customer     models.Customer `json:"customer"`
	LatestStatus string          `json:"latestStatus"`
	MeetingDate  *time.Time      `json:"meetingDate"`
}

// CreateCustomer creates a new customer owned by the logged-in user
func CreateCustomer(c *gin.Context) {
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

	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.ContactNumber != "" && !utils.ValidatePhone(input.ContactNumber) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid contact number format")
		return
	}

	// The customer type tag must come from the vocabulary when set
	if input.CustomerType != "" {
		var ctype models.CustomerType
		if err := config.DB.Where("name = ?", input.CustomerType).First(&ctype).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Unknown customer type")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
	}

	customer := models.Customer{
		ID:            uuid.New(),
		UserID:        userUUID,
		Name:          input.Name,
		Address:       input.Address,
		ContactNumber: input.ContactNumber,
		Email:         input.Email,
		CustomerType:  input.CustomerType,
		Notes:         input.Notes,
	}

	if err := config.DB.Create(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomers retrieves the user's customers with their latest project status
func GetCustomers(c *gin.Context) {
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

	var customers []models.Customer
	if err := config.DB.Where("user_id = ?", userUUID).
		Order("created_at DESC").
		Find(&customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	entries := make([]CustomerListEntry, 0, len(customers))
	for _, customer := range customers {
		entry := CustomerListEntry{Customer: customer, LatestStatus: "No status"}

		var project models.ProjectStatus
		if err := config.DB.Where("customer_id = ?", customer.ID).
			Order("created_at DESC").
			First(&project).Error; err == nil {
			entry.LatestStatus = project.Status
			entry.MeetingDate = project.MeetingDate
		}

		entries = append(entries, entry)
	}

	c.JSON(http.StatusOK, entries)
}

// GetCustomer retrieves a specific customer by ID
func GetCustomer(c *gin.Context) {
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

	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var customer models.Customer
	if err := config.DB.Where("user_id = ? AND id = ?", userUUID, customerUUID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer updates an existing customer
func UpdateCustomer(c *gin.Context) {
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

	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var customer models.Customer
	if err := config.DB.Where("user_id = ? AND id = ?", userUUID, customerUUID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.ContactNumber != nil {
		if *input.ContactNumber != "" && !utils.ValidatePhone(*input.ContactNumber) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid contact number format")
			return
		}
		customer.ContactNumber = *input.ContactNumber
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if input.CustomerType != nil {
		if *input.CustomerType != "" {
			var ctype models.CustomerType
			if err := config.DB.Where("name = ?", *input.CustomerType).First(&ctype).Error; err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "Unknown customer type")
				return
			}
		}
		customer.CustomerType = *input.CustomerType
	}
	if input.Notes != nil {
		customer.Notes = *input.Notes
	}

	if err := config.DB.Save(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer removes a customer together with its project records,
// their payment history and file attachments
func DeleteCustomer(c *gin.Context) {
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

	customerUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	var customer models.Customer
	if err := config.DB.Where("user_id = ? AND id = ?", userUUID, customerUUID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var projects []models.ProjectStatus
	if err := tx.Where("customer_id = ?", customer.ID).Find(&projects).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	for _, project := range projects {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.PaymentHistory{}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete payment history")
			return
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectFile{}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete attachments")
			return
		}
	}

	if err := tx.Where("customer_id = ?", customer.ID).Delete(&models.ProjectStatus{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete project records")
		return
	}

	if err := tx.Delete(&customer).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"message": "Customer removed"})
}
