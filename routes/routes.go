package routes

import (
	"os"
	"strings"

	"studiotrack-backend/config"
	"studiotrack-backend/controllers"
	"studiotrack-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func allowedOrigins() []string {
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		return strings.Split(env, ",")
	}
	return []string{"http://localhost:3000"}
}

func SetupRouter() *gin.Engine {
	r := gin.Default()

	origins := allowedOrigins()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	controllers.InitServices(config.DB)

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	// Attachment downloads authenticate with the signed token in the query
	// string instead of the bearer header
	r.GET("/api/files/:id/:filename", controllers.ServeFile)

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
		}

		// Customer type vocabulary
		customerTypes := api.Group("/customertypes")
		{
			customerTypes.GET("", controllers.GetCustomerTypes)
			customerTypes.POST("", controllers.CreateCustomerType)
			customerTypes.PUT("/:id", controllers.UpdateCustomerType)
			customerTypes.DELETE("/:id", controllers.DeleteCustomerType)
		}

		// Project status routes (keyed by customer ID)
		projects := api.Group("/project-status")
		{
			projects.GET("/:id", controllers.GetProjectStatus)
			projects.POST("/:id", controllers.UpsertProjectStatus)
		}

		// Payment ledger routes
		payments := api.Group("/payments")
		{
			payments.POST("/:id/payment", controllers.AddPayment)
			payments.GET("/:id/history", controllers.GetPaymentHistory)
			payments.DELETE("/:id", controllers.DeletePayment)
		}

		// Attachment delete (by stored path)
		api.DELETE("/files", controllers.DeleteProjectFile)

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)
	}

	return r
}
