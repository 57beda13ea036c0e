package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	txservice "arsitekku_backend/internals/features/finance/transactions/service"
	archController "arsitekku_backend/internals/features/users/architects/controller"
)

// Panggil dengan: route.ArchitectPublicRoutes(app.Group("/api/architects"), db, gateway)
// Hasil endpoint:
//
//	POST /api/architects/register
func ArchitectPublicRoutes(r fiber.Router, db *gorm.DB, gateway *txservice.MidtransGateway) {
	ctl := archController.NewArchitectController(db, gateway)

	r.Post("/register", ctl.Register)
}
