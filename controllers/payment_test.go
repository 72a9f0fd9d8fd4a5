package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"studiotrack-backend/config"
	"studiotrack-backend/models"
	"studiotrack-backend/routes"
	"studiotrack-backend/services"
	"studiotrack-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	router *gin.Engine
	token  string
	userID uuid.UUID
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("UPLOAD_DIR", t.TempDir())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.CustomerType{},
		&models.ProjectStatus{},
		&models.ProjectFile{},
		&models.PaymentHistory{},
	))
	config.DB = db

	userID := uuid.New()
	user := models.User{
		ID:       userID,
		Email:    "owner@example.com",
		Password: "already-hashed",
		Name:     "Owner",
	}
	// Skip the bcrypt hook, tests only need the row to exist
	require.NoError(t, db.Session(&gorm.Session{SkipHooks: true}).Create(&user).Error)

	token, err := utils.GenerateToken(userID.String())
	require.NoError(t, err)

	return &testEnv{
		router: routes.SetupRouter(),
		token:  token,
		userID: userID,
	}
}

func setupOtherUser(t *testing.T, env *testEnv) *testEnv {
	t.Helper()

	userID := uuid.New()
	user := models.User{
		ID:       userID,
		Email:    "other@example.com",
		Password: "already-hashed",
		Name:     "Other",
	}
	require.NoError(t, config.DB.Session(&gorm.Session{SkipHooks: true}).Create(&user).Error)

	token, err := utils.GenerateToken(userID.String())
	require.NoError(t, err)

	return &testEnv{router: env.router, token: token, userID: userID}
}

func (e *testEnv) seedCustomer(t *testing.T) *models.Customer {
	t.Helper()

	customer := models.Customer{
		ID:     uuid.New(),
		UserID: e.userID,
		Name:   "Meridian Homes",
	}
	require.NoError(t, config.DB.Create(&customer).Error)
	return &customer
}

func (e *testEnv) seedProject(t *testing.T, total float64) *models.ProjectStatus {
	t.Helper()

	customer := e.seedCustomer(t)

	project := models.ProjectStatus{
		UserID:        e.userID,
		CustomerID:    customer.ID,
		Name:          customer.Name,
		Status:        "Enquiry",
		TotalAmount:   total,
		PaymentStatus: services.StatusPending,
	}
	require.NoError(t, config.DB.Create(&project).Error)
	return &project
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestAddPaymentEndpoint(t *testing.T) {
	env := setupEnv(t)
	project := env.seedProject(t, 1000)

	w := env.do(http.MethodPost, fmt.Sprintf("/api/payments/%s/payment", project.ID), gin.H{
		"amount":        400,
		"paymentMethod": "UPI",
		"referenceId":   "UPI-9001",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		PaidAmount    float64 `json:"paidAmount"`
		PaymentStatus string  `json:"paymentStatus"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 400.0, resp.PaidAmount)
	assert.Equal(t, services.StatusPartiallyPaid, resp.PaymentStatus)
}

func TestAddPaymentValidation(t *testing.T) {
	env := setupEnv(t)
	project := env.seedProject(t, 1000)

	// Negative amount
	w := env.do(http.MethodPost, fmt.Sprintf("/api/payments/%s/payment", project.ID), gin.H{
		"amount": -5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Overpayment
	w = env.do(http.MethodPost, fmt.Sprintf("/api/payments/%s/payment", project.ID), gin.H{
		"amount": 1500,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown method
	w = env.do(http.MethodPost, fmt.Sprintf("/api/payments/%s/payment", project.ID), gin.H{
		"amount":        100,
		"paymentMethod": "Barter",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing was recorded
	var count int64
	config.DB.Model(&models.PaymentHistory{}).Where("project_id = ?", project.ID).Count(&count)
	assert.Zero(t, count)
}

func TestAddPaymentUnknownProject(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodPost, fmt.Sprintf("/api/payments/%s/payment", uuid.New()), gin.H{
		"amount": 100,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddPaymentRequiresAuth(t *testing.T) {
	env := setupEnv(t)
	project := env.seedProject(t, 1000)

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/payments/%s/payment", project.ID),
		bytes.NewBufferString(`{"amount":100}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAddPaymentForbiddenForNonOwner(t *testing.T) {
	env := setupEnv(t)
	project := env.seedProject(t, 1000)

	other := setupOtherUser(t, env)
	w := other.do(http.MethodPost, fmt.Sprintf("/api/payments/%s/payment", project.ID), gin.H{
		"amount": 100,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPaymentHistoryEndpoint(t *testing.T) {
	env := setupEnv(t)
	project := env.seedProject(t, 1000)

	for _, amount := range []float64{200, 300} {
		w := env.do(http.MethodPost, fmt.Sprintf("/api/payments/%s/payment", project.ID), gin.H{
			"amount": amount,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(http.MethodGet, fmt.Sprintf("/api/payments/%s/history", project.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []models.PaymentHistory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, 200.0, entries[0].Amount)
	assert.Equal(t, 300.0, entries[1].Amount)
}

func TestDeletePaymentEndpoint(t *testing.T) {
	env := setupEnv(t)
	project := env.seedProject(t, 1000)

	w := env.do(http.MethodPost, fmt.Sprintf("/api/payments/%s/payment", project.ID), gin.H{
		"amount": 400,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var entry models.PaymentHistory
	require.NoError(t, config.DB.First(&entry, "project_id = ?", project.ID).Error)

	w = env.do(http.MethodDelete, fmt.Sprintf("/api/payments/%s", entry.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		PaidAmount    float64 `json:"paidAmount"`
		PaymentStatus string  `json:"paymentStatus"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.0, resp.PaidAmount)
	assert.Equal(t, services.StatusPending, resp.PaymentStatus)

	// Second delete is a 404
	w = env.do(http.MethodDelete, fmt.Sprintf("/api/payments/%s", entry.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
