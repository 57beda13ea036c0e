// file: internals/route/index.go
package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	txRoute "arsitekku_backend/internals/features/finance/transactions/route"
	txservice "arsitekku_backend/internals/features/finance/transactions/service"
	archRoute "arsitekku_backend/internals/features/users/architects/route"
	"arsitekku_backend/internals/middlewares"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, gateway *txservice.MidtransGateway) {
	api := app.Group("/api")

	// ===================== PUBLIC =====================
	log.Println("[INFO] Mounting Architect routes...")
	archRoute.ArchitectPublicRoutes(api.Group("/architects"), db, gateway)

	log.Println("[INFO] Mounting Payment routes...")
	txRoute.TransactionPublicRoutes(api, db, gateway)

	// ===================== ADMIN =====================
	log.Println("[INFO] Mounting Admin routes (JWT role=admin)...")
	admin := api.Group("/admin", middlewares.AdminOnly())
	txRoute.TransactionAdminRoutes(admin, db, gateway)
}
