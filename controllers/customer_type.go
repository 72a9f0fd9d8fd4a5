package controllers

import (
	"errors"
	"net/http"

	"studiotrack-backend/config"
	"studiotrack-backend/models"
	"studiotrack-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerTypeInput struct {
	Name string `json:"name" binding:"required"`
}

// GetCustomerTypes retrieves the whole customer-type vocabulary
func GetCustomerTypes(c *gin.Context) {
	var types []models.CustomerType
	if err := config.DB.Order("name ASC").Find(&types).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customer types")
		return
	}

	c.JSON(http.StatusOK, types)
}

// CreateCustomerType adds a new vocabulary entry
func CreateCustomerType(c *gin.Context) {
	var input CustomerTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var existing models.CustomerType
	if err := config.DB.Where("name = ?", input.Name).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Customer type already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	ctype := models.CustomerType{Name: input.Name}
	if err := config.DB.Create(&ctype).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer type")
		return
	}

	c.JSON(http.StatusCreated, ctype)
}

// UpdateCustomerType renames a vocabulary entry. Customers already tagged
// with the old name keep it; dangling tags are accepted.
func UpdateCustomerType(c *gin.Context) {
	typeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer type ID format")
		return
	}

	var input CustomerTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var ctype models.CustomerType
	if err := config.DB.First(&ctype, "id = ?", typeUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer type not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	ctype.Name = input.Name
	if err := config.DB.Save(&ctype).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer type")
		return
	}

	c.JSON(http.StatusOK, ctype)
}

// DeleteCustomerType removes a vocabulary entry without touching customers
// already tagged with it
func DeleteCustomerType(c *gin.Context) {
	typeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer type ID format")
		return
	}

	if err := config.DB.Delete(&models.CustomerType{}, "id = ?", typeUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer type")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer type deleted"})
}
