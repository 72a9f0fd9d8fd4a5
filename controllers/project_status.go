// controllers/project_status.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strconv"
	"time"

	"studiotrack-backend/config"
	"studiotrack-backend/models"
	"studiotrack-backend/services"
	"studiotrack-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileView is one attachment as exposed to the client: a tokenized URL plus
// the original filename.
type FileView struct {
	URL          string `json:"url"`
	OriginalName string `json:"originalName"`
	Path         string `json:"path"`
}

// ProjectStatusView is the full project record for one customer
type ProjectStatusView struct {
	ID             uuid.UUID  `json:"id"`
	CustomerID     uuid.UUID  `json:"customerId"`
	UserID         uuid.UUID  `json:"userId"`
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	Feedback       string     `json:"feedback"`
	TotalAmount    float64    `json:"totalAmount"`
	PaidAmount     float64    `json:"paidAmount"`
	PaymentStatus  string     `json:"paymentStatus"`
	QuotationFiles []FileView `json:"quotationFiles"`
	ImageFiles     []FileView `json:"imageFiles"`
	MeetingDate    *string    `json:"meetingDate"`
}

func fileBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/api/files", scheme, c.Request.Host)
}

// GetProjectStatus returns the project record for a customer, with signed
// short-lived URLs for every attachment
func GetProjectStatus(c *gin.Context) {
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
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid ID format")
		return
	}

	var project models.ProjectStatus
	if err := config.DB.Preload("Files").
		Where("user_id = ? AND customer_id = ?", userUUID, customerUUID).
		First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"message": "No project status found", "projectStatus": nil})
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	baseURL := fileBaseURL(c)
	view := ProjectStatusView{
		ID:             project.ID,
		CustomerID:     project.CustomerID,
		UserID:         project.UserID,
		Name:           project.Name,
		Status:         project.Status,
		Feedback:       project.Feedback,
		TotalAmount:    project.TotalAmount,
		PaidAmount:     project.PaidAmount,
		PaymentStatus:  project.PaymentStatus,
		QuotationFiles: []FileView{},
		ImageFiles:     []FileView{},
	}

	if project.MeetingDate != nil {
		formatted := project.MeetingDate.Format("2006-01-02")
		view.MeetingDate = &formatted
	}

	for _, file := range project.Files {
		filename := path.Base(file.Path)
		token, err := Files.SignedFileToken(customerUUID.String(), filename)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to sign file URL")
			return
		}
		fv := FileView{
			URL:          fmt.Sprintf("%s/%s/%s?token=%s", baseURL, customerUUID, filename, token),
			OriginalName: file.OriginalName,
			Path:         file.Path,
		}
		if file.Kind == models.FileKindQuotation {
			view.QuotationFiles = append(view.QuotationFiles, fv)
		} else {
			view.ImageFiles = append(view.ImageFiles, fv)
		}
	}

	c.JSON(http.StatusOK, view)
}

// UpsertProjectStatus creates or updates the project record for a customer.
// Multipart form: status, feedback, meetingDate, totalAmount, paidAmount,
// plus "quotations" and "images" file fields.
func UpsertProjectStatus(c *gin.Context) {
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
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid ID format")
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

	total, err := parseAmountField(c.PostForm("totalAmount"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid total amount")
		return
	}
	paid, err := parseAmountField(c.PostForm("paidAmount"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid paid amount")
		return
	}
	if total < 0 || paid < 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Amounts cannot be negative")
		return
	}
	if paid > total {
		utils.RespondWithError(c, http.StatusBadRequest, "Paid amount cannot exceed total amount")
		return
	}

	paymentStatus := services.DeriveStatus(total, paid)

	var meetingDate *time.Time
	if raw := c.PostForm("meetingDate"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid meeting date, expected YYYY-MM-DD")
			return
		}
		meetingDate = &parsed
	}

	var project models.ProjectStatus
	found := true
	if err := config.DB.Where("user_id = ? AND customer_id = ?", userUUID, customerUUID).
		First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			found = false
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
	}

	// Store uploads to disk before touching the database
	var newFiles []models.ProjectFile
	form, _ := c.MultipartForm()
	if form != nil {
		for kind, field := range map[string]string{
			models.FileKindQuotation: "quotations",
			models.FileKindImage:     "images",
		} {
			for _, fh := range form.File[field] {
				storedPath, err := Files.SaveUpload(customerUUID.String(), fh)
				if err != nil {
					utils.RespondWithError(c, http.StatusInternalServerError, "Failed to store uploaded file")
					return
				}
				newFiles = append(newFiles, models.ProjectFile{
					Kind:         kind,
					Path:         storedPath,
					OriginalName: fh.Filename,
					Size:         fh.Size,
				})
			}
		}
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if found {
		if status := c.PostForm("status"); status != "" {
			project.Status = status
		}
		if feedback := c.PostForm("feedback"); feedback != "" {
			project.Feedback = feedback
		}
		if meetingDate != nil {
			project.MeetingDate = meetingDate
		}
		project.TotalAmount = total
		project.PaidAmount = paid
		project.PaymentStatus = paymentStatus

		if err := tx.Save(&project).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update project status")
			return
		}
	} else {
		project = models.ProjectStatus{
			UserID:        userUUID,
			CustomerID:    customerUUID,
			Name:          customer.Name,
			Status:        c.PostForm("status"),
			Feedback:      c.PostForm("feedback"),
			MeetingDate:   meetingDate,
			TotalAmount:   total,
			PaidAmount:    paid,
			PaymentStatus: paymentStatus,
		}
		if err := tx.Create(&project).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create project status")
			return
		}
	}

	for i := range newFiles {
		newFiles[i].ProjectID = project.ID
		if err := tx.Create(&newFiles[i]).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save attachment")
			return
		}
	}

	tx.Commit()

	c.JSON(http.StatusCreated, project)
}

// ServeFile streams a stored attachment after validating the signed token
// from the query string. Registered outside the auth middleware; the token
// is the sole credential.
func ServeFile(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		utils.RespondWithError(c, http.StatusForbidden, "Token missing")
		return
	}

	customerID, filename, err := Files.VerifyFileToken(tokenString)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	// The token must match the requested path exactly
	if customerID != c.Param("id") || filename != c.Param("filename") {
		utils.RespondWithError(c, http.StatusUnauthorized, "Token does not match requested file")
		return
	}

	fullPath, err := Files.Resolve(customerID + "/" + filename)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid file path")
		return
	}

	if _, err := os.Stat(fullPath); err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "File not found")
		return
	}

	c.File(fullPath)
}

// DeleteProjectFile removes an attachment row and its file on disk.
// Query params: filePath (stored relative path), projectId.
func DeleteProjectFile(c *gin.Context) {
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

	filePath := c.Query("filePath")
	projectID := c.Query("projectId")
	if filePath == "" || projectID == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid parameters")
		return
	}

	projectUUID, err := uuid.Parse(projectID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var project models.ProjectStatus
	if err := config.DB.Where("user_id = ? AND id = ?", userUUID, projectUUID).
		First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Project not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	res := config.DB.Where("project_id = ? AND path = ?", project.ID, filePath).
		Delete(&models.ProjectFile{})
	if res.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete attachment")
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "File not found")
		return
	}

	if err := Files.Delete(filePath); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

func parseAmountField(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
