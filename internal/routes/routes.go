package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mission-clinic-server/internal/config"
	"mission-clinic-server/internal/handlers"
	"mission-clinic-server/internal/middleware"
	"mission-clinic-server/internal/store"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, s *store.Store, cfg *config.Config, denylist middleware.Denylist, logger *zap.Logger) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(s, cfg, denylist, logger)
	participantHandler := handlers.NewParticipantHandler(s)
	clinicDayHandler := handlers.NewClinicDayHandler(s)
	assignmentHandler := handlers.NewAssignmentHandler(s, logger)
	flowRateHandler := handlers.NewFlowRateHandler(s)
	patientRecordHandler := handlers.NewPatientRecordHandler(s)
	pharmacyHandler := handlers.NewPharmacyHandler(s)
	snapshotHandler := handlers.NewSnapshotHandler(s, logger)

	adminOnly := middleware.AdminMiddleware()

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		public.POST("/auth/login", authHandler.Login)
		public.GET("/catalog", snapshotHandler.GetCatalog)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg, denylist, logger))
	{
		authRoutes := private.Group("/auth")
		{
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/profile", authHandler.GetProfile)
			authRoutes.POST("/admin", authHandler.ElevateToAdmin)
		}

		participantRoutes := private.Group("/participants")
		{
			participantRoutes.GET("", participantHandler.GetParticipants)
			participantRoutes.POST("", adminOnly, participantHandler.CreateParticipant)
			participantRoutes.PUT("/:id", adminOnly, participantHandler.UpdateParticipant)
		}

		dayRoutes := private.Group("/clinic-days")
		{
			dayRoutes.GET("", clinicDayHandler.GetClinicDays)
			dayRoutes.POST("", adminOnly, clinicDayHandler.CreateClinicDay)
			dayRoutes.PUT("/:id", adminOnly, clinicDayHandler.UpdateClinicDay)
			dayRoutes.DELETE("/:id", adminOnly, clinicDayHandler.DeleteClinicDay)

			// Staffing views of one day
			dayRoutes.GET("/:id/statuses", clinicDayHandler.GetStatuses)
			dayRoutes.GET("/:id/understaffed", clinicDayHandler.GetUnderstaffed)
			dayRoutes.GET("/:id/unassigned", clinicDayHandler.GetUnassigned)
			dayRoutes.GET("/:id/capacity", clinicDayHandler.GetCapacity)
			dayRoutes.GET("/:id/tickets", clinicDayHandler.GetRecommendedTickets)
			dayRoutes.GET("/:id/participants", clinicDayHandler.GetShiftParticipants)
			dayRoutes.GET("/:id/my-assignments", clinicDayHandler.GetMyAssignments)
			dayRoutes.GET("/:id/report.xlsx", snapshotHandler.DownloadReport)
		}

		assignmentRoutes := private.Group("/assignments")
		{
			assignmentRoutes.POST("", assignmentHandler.CreateAssignment)
			assignmentRoutes.DELETE("/:id", assignmentHandler.DeleteAssignment) // owner or admin, checked in handler
			assignmentRoutes.PATCH("/:id/attendance", assignmentHandler.MarkAttendance)
		}

		private.GET("/flow-rates", flowRateHandler.GetFlowRates)
		private.PUT("/flow-rates/:roleId", adminOnly, flowRateHandler.UpdateFlowRate)
		private.POST("/shift-actuals", flowRateHandler.RecordShiftActuals)
		private.PUT("/role-capacities", adminOnly, flowRateHandler.UpdateRoleCapacity)

		recordRoutes := private.Group("/patient-records")
		{
			recordRoutes.GET("", patientRecordHandler.GetPatientRecords)
			recordRoutes.POST("", patientRecordHandler.CreatePatientRecord)
			recordRoutes.PUT("/:id", patientRecordHandler.UpdatePatientRecord)
		}

		private.GET("/pharmacy-items", pharmacyHandler.GetPharmacyItems)
		private.PUT("/pharmacy-items", pharmacyHandler.UpdatePharmacyItems)

		private.GET("/snapshot", snapshotHandler.ExportSnapshot)
		private.POST("/snapshot", adminOnly, snapshotHandler.ImportSnapshot)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
