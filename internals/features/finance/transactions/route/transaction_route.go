package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	txController "arsitekku_backend/internals/features/finance/transactions/controller"
	txservice "arsitekku_backend/internals/features/finance/transactions/service"
	"arsitekku_backend/internals/notifications"
)

// Route publik pembayaran (tanpa JWT — webhook diverifikasi via signature,
// halaman pembayaran via payment token acak).
//
//	POST /api/payments/notification
//	GET  /api/payments/:token
//	GET  /api/architects/:id/transactions
func TransactionPublicRoutes(api fiber.Router, db *gorm.DB, gateway *txservice.MidtransGateway) {
	ctl := txController.NewTransactionController(db, gateway, &notifications.PaymentMailer{})

	payments := api.Group("/payments")
	payments.Post("/notification", ctl.MidtransWebhook)
	payments.Get("/:token", ctl.GetPaymentInfo)

	api.Get("/architects/:id/transactions", ctl.ListByArchitect)
}

// Route admin (dipasang di group ber-middleware AdminOnly).
//
//	GET   /api/admin/transactions/overdue
//	PATCH /api/admin/transactions/:order_id/status
//	POST  /api/admin/transactions/:order_id/reconcile
//	POST  /api/admin/transactions/:order_id/resend
func TransactionAdminRoutes(admin fiber.Router, db *gorm.DB, gateway *txservice.MidtransGateway) {
	ctl := txController.NewTransactionController(db, gateway, &notifications.PaymentMailer{})

	trx := admin.Group("/transactions")
	trx.Get("/overdue", ctl.ListOverdue)
	trx.Patch("/:order_id/status", ctl.OverrideStatus)
	trx.Post("/:order_id/reconcile", ctl.ReconcileWithGateway)
	trx.Post("/:order_id/resend", ctl.ResendPaymentLink)
}
