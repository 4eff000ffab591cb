package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handler "statement-reconciliation-backend/internal/handlers"
	"statement-reconciliation-backend/internal/repository"
	service "statement-reconciliation-backend/internal/services/reconciliation"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	billRepo := repository.NewGormBillRepository(db)
	batchRepo := repository.NewGormBatchRepository(db)
	memberRepo := repository.NewGormMemberRepository(db)

	reconService := service.NewService(billRepo, batchRepo, memberRepo)
	reconHandler := handler.NewReconciliationHandler(reconService)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Reconciliation batch routes
	recon := api.Group("/reconciliation")
	recon.POST("/import", reconHandler.ImportStatement)
	recon.GET("/:batchId", reconHandler.GetBatch)
	recon.GET("/:batchId/proposals", reconHandler.ListProposals)
	recon.POST("/:batchId/confirm", reconHandler.Confirm)
	recon.POST("/:batchId/transactions/:id/match", reconHandler.ManualMatch)
	recon.POST("/:batchId/transactions/:id/unmatch", reconHandler.Unmatch)
	recon.POST("/:batchId/transactions/:id/skip", reconHandler.Skip)

	// Billing collaborator routes
	bills := api.Group("/bills")
	{
		bills.GET("", reconHandler.ListOpenBills)
		bills.POST("", reconHandler.CreateBill)
	}

	// Owner directory routes
	members := api.Group("/members")
	{
		members.POST("", reconHandler.CreateMember)
	}
}
