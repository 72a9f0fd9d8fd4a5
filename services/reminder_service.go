// services/reminder_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"studiotrack-backend/models"
	"studiotrack-backend/utils"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// ReminderService notifies customers about project meetings scheduled for
// the next day. Requires Twilio credentials in the environment; without
// them the scheduler is not started.
type ReminderService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewReminderService(db *gorm.DB) *ReminderService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &ReminderService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *ReminderService) StartScheduler() {
	if os.Getenv("TWILIO_ACCOUNT_SID") == "" {
		log.Println("Twilio not configured, meeting reminders disabled")
		return
	}

	c := cron.New()

	// Every day at 9 AM
	c.AddFunc("0 9 * * *", func() {
		s.SendMeetingReminders()
	})

	c.Start()
	log.Println("Meeting reminder scheduler started")
}

// SendMeetingReminders messages every customer whose project meeting falls
// tomorrow and records the outcome in the reminder log.
func (s *ReminderService) SendMeetingReminders() {
	log.Println("Starting meeting reminder processing...")

	tomorrow := utils.BeginningOfDay(time.Now().AddDate(0, 0, 1))
	dayAfter := tomorrow.AddDate(0, 0, 1)

	var projects []models.ProjectStatus
	if err := s.db.Where("meeting_date >= ? AND meeting_date < ?", tomorrow, dayAfter).
		Find(&projects).Error; err != nil {
		log.Printf("Failed to fetch projects with upcoming meetings: %v", err)
		return
	}

	for _, project := range projects {
		s.remindCustomer(project)
	}

	log.Println("Meeting reminder processing completed")
}

func (s *ReminderService) remindCustomer(project models.ProjectStatus) {
	var customer models.Customer
	if err := s.db.First(&customer, "id = ?", project.CustomerID).Error; err != nil {
		log.Printf("Project %s: customer lookup failed: %v", project.ID, err)
		return
	}

	if customer.ContactNumber == "" {
		return
	}

	message := fmt.Sprintf(
		"Hi %s, a reminder about your project meeting tomorrow (%s). See you then!",
		customer.Name, project.MeetingDate.Format("02 Jan 2006"))

	channel := "sms"
	to := customer.ContactNumber
	if len(to) > 0 && to[0] == '+' {
		to = "whatsapp:" + to
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := s.client.Api.CreateMessage(params)
	status := "sent"
	errorMsg := ""

	if err != nil {
		log.Printf("Failed to send reminder to %s: %v", customer.ContactNumber, err)
		status = "failed"
		errorMsg = err.Error()
	} else if resp.Sid != nil {
		log.Printf("Reminder sent to %s, SID: %s", customer.ContactNumber, *resp.Sid)
	}

	reminderLog := models.ReminderLog{
		UserID:       project.UserID,
		CustomerID:   customer.ID,
		ProjectID:    project.ID,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      channel,
		SentAt:       time.Now(),
	}

	if err := s.db.Create(&reminderLog).Error; err != nil {
		log.Printf("Failed to log reminder for customer %s: %v", customer.ID, err)
	}
}
