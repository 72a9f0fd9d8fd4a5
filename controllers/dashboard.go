package controllers

import (
	"net/http"
	"time"

	"studiotrack-backend/config"
	"studiotrack-backend/models"
	"studiotrack-backend/services"
	"studiotrack-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DashboardOverview struct {
	TotalCustomers   int64             `json:"totalCustomers"`
	TotalProjects    int64             `json:"totalProjects"`
	TotalBilled      float64           `json:"totalBilled"`
	TotalCollected   float64           `json:"totalCollected"`
	TotalOutstanding float64           `json:"totalOutstanding"`
	StatusBreakdown  map[string]int64  `json:"statusBreakdown"`
	UpcomingMeetings []UpcomingMeeting `json:"upcomingMeetings"`
}

type UpcomingMeeting struct {
	CustomerName string `json:"customerName"`
	Status       string `json:"status"`
	MeetingDate  string `json:"meetingDate"`
	InDays       int    `json:"inDays"`
}

// GetDashboardOverview aggregates customer, project and payment figures for
// the logged-in user
func GetDashboardOverview(c *gin.Context) {
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

	overview := DashboardOverview{
		StatusBreakdown:  map[string]int64{},
		UpcomingMeetings: []UpcomingMeeting{},
	}

	config.DB.Model(&models.Customer{}).
		Where("user_id = ? AND deleted_at IS NULL", userUUID).
		Count(&overview.TotalCustomers)

	config.DB.Model(&models.ProjectStatus{}).
		Where("user_id = ? AND deleted_at IS NULL", userUUID).
		Count(&overview.TotalProjects)

	config.DB.Model(&models.ProjectStatus{}).
		Where("user_id = ? AND deleted_at IS NULL", userUUID).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&overview.TotalBilled)

	config.DB.Model(&models.ProjectStatus{}).
		Where("user_id = ? AND deleted_at IS NULL", userUUID).
		Select("COALESCE(SUM(paid_amount), 0)").Scan(&overview.TotalCollected)

	overview.TotalOutstanding = overview.TotalBilled - overview.TotalCollected

	for _, status := range []string{services.StatusPending, services.StatusPartiallyPaid, services.StatusPaid} {
		var count int64
		config.DB.Model(&models.ProjectStatus{}).
			Where("user_id = ? AND payment_status = ? AND deleted_at IS NULL", userUUID, status).
			Count(&count)
		overview.StatusBreakdown[status] = count
	}

	// Meetings in the next 7 days
	now := utils.BeginningOfDay(time.Now())
	weekOut := now.AddDate(0, 0, 7)

	var projects []models.ProjectStatus
	config.DB.Where("user_id = ? AND meeting_date >= ? AND meeting_date < ?", userUUID, now, weekOut).
		Order("meeting_date ASC").
		Limit(7).
		Find(&projects)

	for _, project := range projects {
		var customer models.Customer
		if err := config.DB.First(&customer, "id = ?", project.CustomerID).Error; err != nil {
			continue
		}
		overview.UpcomingMeetings = append(overview.UpcomingMeetings, UpcomingMeeting{
			CustomerName: customer.Name,
			Status:       project.Status,
			MeetingDate:  project.MeetingDate.Format("2006-01-02"),
			InDays:       utils.DaysBetween(now, *project.MeetingDate),
		})
	}

	c.JSON(http.StatusOK, overview)
}
