package controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"studiotrack-backend/config"
	"studiotrack-backend/controllers"
	"studiotrack-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomerValidatesType(t *testing.T) {
	env := setupEnv(t)

	// Unknown type is rejected
	w := env.do(http.MethodPost, "/api/customers", gin.H{
		"name":         "Leela Constructions",
		"customerType": "Architect",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Add the vocabulary entry, then creation succeeds
	w = env.do(http.MethodPost, "/api/customertypes", gin.H{"name": "Architect"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodPost, "/api/customers", gin.H{
		"name":          "Leela Constructions",
		"customerType":  "Architect",
		"contactNumber": "+919876543210",
		"notes":         "Referred by Prakash",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var customer models.Customer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &customer))
	assert.Equal(t, "Architect", customer.CustomerType)
	assert.Equal(t, env.userID, customer.UserID)
}

func TestCreateCustomerRejectsBadPhone(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodPost, "/api/customers", gin.H{
		"name":          "Bad Phone Inc",
		"contactNumber": "not-a-number",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCustomersIncludesLatestStatus(t *testing.T) {
	env := setupEnv(t)
	project := env.seedProject(t, 1000)

	w := env.do(http.MethodGet, "/api/customers", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []controllers.CustomerListEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, project.Status, entries[0].LatestStatus)
}

func TestCustomerNotVisibleToOtherUsers(t *testing.T) {
	env := setupEnv(t)
	customer := env.seedCustomer(t)

	other := setupOtherUser(t, env)
	w := other.do(http.MethodGet, "/api/customers/"+customer.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCustomerCascades(t *testing.T) {
	env := setupEnv(t)
	project := env.seedProject(t, 1000)

	w := env.do(http.MethodPost, "/api/payments/"+project.ID.String()+"/payment", gin.H{
		"amount": 100,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodDelete, "/api/customers/"+project.CustomerID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var projectCount, paymentCount int64
	config.DB.Model(&models.ProjectStatus{}).Where("customer_id = ?", project.CustomerID).Count(&projectCount)
	config.DB.Model(&models.PaymentHistory{}).Where("project_id = ?", project.ID).Count(&paymentCount)
	assert.Zero(t, projectCount)
	assert.Zero(t, paymentCount)
}

func TestCustomerTypeLifecycle(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodPost, "/api/customertypes", gin.H{"name": "Broker"})
	require.Equal(t, http.StatusCreated, w.Code)

	var ctype models.CustomerType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ctype))

	// Duplicate name conflicts
	w = env.do(http.MethodPost, "/api/customertypes", gin.H{"name": "Broker"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Tag a customer, then delete the type; the tag is left dangling
	require.NoError(t, config.DB.Create(&models.Customer{
		UserID:       env.userID,
		Name:         "Dangling Tag Ltd",
		CustomerType: "Broker",
	}).Error)

	w = env.do(http.MethodDelete, "/api/customertypes/"+ctype.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var customer models.Customer
	require.NoError(t, config.DB.First(&customer, "name = ?", "Dangling Tag Ltd").Error)
	assert.Equal(t, "Broker", customer.CustomerType)
}
