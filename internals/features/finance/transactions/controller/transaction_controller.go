package controller

import (
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"arsitekku_backend/internals/configs"
	dto "arsitekku_backend/internals/features/finance/transactions/dto"
	"arsitekku_backend/internals/features/finance/transactions/model"
	svc "arsitekku_backend/internals/features/finance/transactions/service"
	archservice "arsitekku_backend/internals/features/users/architects/service"
	helper "arsitekku_backend/internals/helpers"
)

/* =======================================================================
   Controller
======================================================================= */

type TransactionController struct {
	DB         *gorm.DB
	Validator  *validator.Validate
	Store      *svc.TransactionStore
	Gateway    *svc.MidtransGateway
	Reconciler *svc.WebhookReconciler
	Architects *archservice.ArchitectService
}

func NewTransactionController(db *gorm.DB, gateway *svc.MidtransGateway, mailer svc.PaymentNotifier) *TransactionController {
	store := &svc.TransactionStore{DB: db}
	architects := &archservice.ArchitectService{DB: db}
	return &TransactionController{
		DB:         db,
		Validator:  validator.New(),
		Store:      store,
		Gateway:    gateway,
		Architects: architects,
		Reconciler: &svc.WebhookReconciler{
			Store:     store,
			Verifier:  gateway,
			Activator: architects,
			Notifier:  mailer,
		},
	}
}

/* =======================================================================
   Webhook Midtrans
======================================================================= */

// POST /api/payments/notification
// Selalu balas 200 setelah logging — gateway menonaktifkan endpoint yang
// terus-menerus balas error; sweeper + override admin adalah jaring pengaman.
func (h *TransactionController) MidtransWebhook(c *fiber.Ctx) error {
	var notif dto.MidtransNotification
	if err := c.BodyParser(&notif); err != nil {
		log.Printf("[WEBHOOK] payload tidak bisa dibaca: %v", err)
		return c.JSON(fiber.Map{"status": "ignored", "reason": "invalid payload"})
	}

	raw := make([]byte, len(c.Body()))
	copy(raw, c.Body())

	result, err := h.Reconciler.Process(c.UserContext(), notif, raw)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrInvalidSignature):
			// satu-satunya jalur non-200: notifikasi tidak otentik
			return fiber.NewError(fiber.StatusUnauthorized, "invalid signature")
		case errors.Is(err, svc.ErrTransactionNotFound):
			log.Printf("[WEBHOOK] order_id=%s tidak ditemukan, tetap di-ack", notif.OrderID)
			return c.JSON(fiber.Map{"status": "ignored", "reason": "transaction not found"})
		default:
			log.Printf("[WEBHOOK] rekonsiliasi order_id=%s gagal: %v", notif.OrderID, err)
			return c.JSON(fiber.Map{"status": "error_logged"})
		}
	}

	return c.JSON(fiber.Map{
		"status":             "ok",
		"order_id":           result.OrderID,
		"transaction_status": result.Status,
		"already_processed":  result.AlreadyProcessed,
	})
}

/* =======================================================================
   Halaman pembayaran publik (by payment token)
======================================================================= */

// GET /api/payments/:token
// Token Snap di-backfill malas kalau create-transaction gagal saat registrasi.
func (h *TransactionController) GetPaymentInfo(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "payment token is required")
	}

	validation, err := h.Store.ValidateForPayment(c.UserContext(), token, time.Now())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !validation.Valid {
		if validation.Transaction == nil {
			return fiber.NewError(fiber.StatusNotFound, validation.Reason)
		}
		return fiber.NewError(fiber.StatusGone, validation.Reason)
	}

	trx := validation.Transaction

	// backfill token Snap bila belum ada
	if trx.TransactionGatewayToken == nil {
		arch, archErr := h.Architects.FindByID(c.UserContext(), trx.TransactionArchitectID)
		if archErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, archErr.Error())
		}
		gwToken, redirectURL, gwErr := h.Gateway.CreateTransaction(trx, svc.CustomerInput{
			Name:  arch.ArchitectName,
			Email: arch.ArchitectEmail,
			Phone: arch.ArchitectPhone,
		})
		if gwErr != nil {
			// non-fatal: halaman tetap tampil, client bisa coba lagi nanti
			log.Printf("[MIDTRANS] backfill token order_id=%s gagal: %v", trx.TransactionOrderID, gwErr)
		} else {
			if err := h.Store.AttachGatewayToken(c.UserContext(), trx.TransactionOrderID, gwToken, redirectURL); err != nil {
				log.Printf("[MIDTRANS] simpan token order_id=%s gagal: %v", trx.TransactionOrderID, err)
			}
			trx.TransactionGatewayToken = &gwToken
			trx.TransactionRedirectURL = &redirectURL
		}
	}

	return helper.JsonOK(c, "ok", fiber.Map{
		"transaction": dto.FromModel(trx),
		"client_key":  configs.MidtransClientKey,
	})
}

/* =======================================================================
   Riwayat transaksi per arsitek
======================================================================= */

// GET /api/architects/:id/transactions
func (h *TransactionController) ListByArchitect(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid architect id")
	}

	list, err := h.Store.FindByArchitectID(c.UserContext(), id)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", dto.FromModels(list))
}

/* =======================================================================
   Admin — override status & resend payment link
======================================================================= */

// PATCH /api/admin/transactions/:order_id/status
func (h *TransactionController) OverrideStatus(c *fiber.Ctx) error {
	orderID := c.Params("order_id")

	var req dto.OverrideStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	trx, err := h.Store.FindByOrderID(c.UserContext(), orderID)
	if err != nil {
		if errors.Is(err, svc.ErrTransactionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "transaction not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	var first bool
	switch req.Status {
	case "success":
		method := req.PaymentMethod
		if method == "" {
			method = "manual_override"
		}
		first, err = h.Store.MarkSuccess(c.UserContext(), orderID, method, time.Now())
		if err == nil && first {
			if _, actErr := h.Architects.Activate(c.UserContext(), trx.TransactionArchitectID); actErr != nil {
				log.Printf("[ADMIN] aktivasi arsitek %s gagal: %v", trx.TransactionArchitectID, actErr)
			}
		}
	case "failed":
		first, err = h.Store.MarkFailed(c.UserContext(), orderID)
		if err == nil && first {
			h.Gateway.Cancel(orderID)
		}
	case "expired":
		first, err = h.Store.MarkExpired(c.UserContext(), orderID)
		if err == nil && first {
			h.Gateway.Expire(orderID)
		}
	}
	if err != nil {
		if errors.Is(err, svc.ErrStatusConflict) {
			return fiber.NewError(fiber.StatusConflict, "status transition conflicts with current state "+trx.TransactionStatus)
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	updated, err := h.Store.FindByOrderID(c.UserContext(), orderID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "status diperbarui", fiber.Map{
		"transaction": dto.FromModel(updated),
		"first_time":  first,
	})
}

// POST /api/admin/transactions/:order_id/reconcile
// Tanya status langsung ke gateway lalu terapkan lewat state machine yang sama
// dengan webhook — untuk notifikasi yang hilang di jalan.
func (h *TransactionController) ReconcileWithGateway(c *fiber.Ctx) error {
	orderID := c.Params("order_id")

	trx, err := h.Store.FindByOrderID(c.UserContext(), orderID)
	if err != nil {
		if errors.Is(err, svc.ErrTransactionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "transaction not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	status, err := h.Gateway.GetStatus(orderID)
	if err != nil {
		if errors.Is(err, svc.ErrGatewayOrderNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order tidak dikenal di gateway")
		}
		return fiber.NewError(fiber.StatusBadGateway, "midtrans error: "+err.Error())
	}

	next, recognized := svc.MapNotificationStatus(status.TransactionStatus, status.FraudStatus)
	if !recognized {
		log.Printf("[ADMIN] reconcile %s: status gateway tidak dikenal %q", orderID, status.TransactionStatus)
	}

	var first bool
	switch next {
	case model.TransactionStatusSuccess:
		first, err = h.Store.MarkSuccess(c.UserContext(), orderID, status.PaymentType, time.Now())
		if err == nil && first {
			if _, actErr := h.Architects.Activate(c.UserContext(), trx.TransactionArchitectID); actErr != nil {
				log.Printf("[ADMIN] aktivasi arsitek %s gagal: %v", trx.TransactionArchitectID, actErr)
			}
		}
	case model.TransactionStatusFailed:
		first, err = h.Store.MarkFailed(c.UserContext(), orderID)
	}
	if err != nil {
		if errors.Is(err, svc.ErrStatusConflict) {
			return fiber.NewError(fiber.StatusConflict, "status gateway bertentangan dengan status lokal "+trx.TransactionStatus)
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	updated, err := h.Store.FindByOrderID(c.UserContext(), orderID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "rekonsiliasi selesai", fiber.Map{
		"gateway_status": status.TransactionStatus,
		"transaction":    dto.FromModel(updated),
		"first_time":     first,
	})
}

// GET /api/admin/transactions/overdue
// Pratinjau pending yang sudah lewat batas bayar tapi belum disapu sweeper.
func (h *TransactionController) ListOverdue(c *fiber.Ctx) error {
	list, err := h.Store.FindExpiredPending(c.UserContext(), time.Now())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", dto.FromModels(list))
}

// POST /api/admin/transactions/:order_id/resend
// Jalur manual saat gateway down waktu registrasi — di sini error gateway
// justru HARUS muncul ke pemanggil.
func (h *TransactionController) ResendPaymentLink(c *fiber.Ctx) error {
	orderID := c.Params("order_id")

	trx, err := h.Store.FindByOrderID(c.UserContext(), orderID)
	if err != nil {
		if errors.Is(err, svc.ErrTransactionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "transaction not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	validation := svc.EvaluatePayability(trx, time.Now())
	if !validation.Valid {
		return fiber.NewError(fiber.StatusConflict, validation.Reason)
	}

	if trx.TransactionGatewayToken == nil {
		arch, archErr := h.Architects.FindByID(c.UserContext(), trx.TransactionArchitectID)
		if archErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, archErr.Error())
		}
		gwToken, redirectURL, gwErr := h.Gateway.CreateTransaction(trx, svc.CustomerInput{
			Name:  arch.ArchitectName,
			Email: arch.ArchitectEmail,
			Phone: arch.ArchitectPhone,
		})
		if gwErr != nil {
			return fiber.NewError(fiber.StatusBadGateway, "midtrans error: "+gwErr.Error())
		}
		if err := h.Store.AttachGatewayToken(c.UserContext(), orderID, gwToken, redirectURL); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		trx.TransactionGatewayToken = &gwToken
		trx.TransactionRedirectURL = &redirectURL
	}

	return helper.JsonOK(c, "payment link siap", fiber.Map{
		"payment_url":  configs.PaymentPageBaseURL + "/" + trx.TransactionPaymentToken,
		"redirect_url": trx.TransactionRedirectURL,
	})
}
