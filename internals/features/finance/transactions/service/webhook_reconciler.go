package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"arsitekku_backend/internals/features/finance/transactions/dto"
	"arsitekku_backend/internals/features/finance/transactions/model"
	archmodel "arsitekku_backend/internals/features/users/architects/model"
)

/* =========================================================
   Webhook Reconciler — state machine inti
========================================================= */

type ReconcilerStore interface {
	FindByOrderID(ctx context.Context, orderID string) (*model.Transaction, error)
	AttachGatewayPayload(ctx context.Context, orderID string, raw []byte) error
	MarkSuccess(ctx context.Context, orderID, paymentMethod string, now time.Time) (bool, error)
	MarkFailed(ctx context.Context, orderID string) (bool, error)
}

type SignatureVerifier interface {
	VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool
}

type AccountActivator interface {
	Activate(ctx context.Context, architectID uuid.UUID) (*archmodel.Architect, error)
	FindByID(ctx context.Context, architectID uuid.UUID) (*archmodel.Architect, error)
}

type PaymentNotifier interface {
	SendPaymentSuccess(name, email, orderID string)
	SendPaymentFailed(name, email, orderID string)
}

type WebhookReconciler struct {
	Store     ReconcilerStore
	Verifier  SignatureVerifier
	Activator AccountActivator
	Notifier  PaymentNotifier
}

// ReconcileResult menjelaskan hasil akhir + apakah ini pemrosesan pertama.
type ReconcileResult struct {
	OrderID          string
	Status           string
	AlreadyProcessed bool
}

// MapNotificationStatus memetakan kosakata Midtrans ke status internal.
// recognized=false untuk kombinasi yang tidak dikenal (default pending).
func MapNotificationStatus(transactionStatus, fraudStatus string) (string, bool) {
	ts := strings.ToLower(transactionStatus)
	fraud := strings.ToLower(fraudStatus)

	switch ts {
	case "capture":
		if fraud == "accept" {
			return model.TransactionStatusSuccess, true
		}
		if fraud == "challenge" {
			return model.TransactionStatusPending, true
		}
		return model.TransactionStatusFailed, true

	case "settlement":
		return model.TransactionStatusSuccess, true

	case "pending":
		return model.TransactionStatusPending, true

	case "deny", "cancel", "expire":
		return model.TransactionStatusFailed, true
	}

	return model.TransactionStatusPending, false
}

// Process menjalankan rekonsiliasi satu notifikasi, urutannya ketat:
// verifikasi signature → lookup → short-circuit success → audit payload →
// mapping status + efek samping. Error sebelum audit tidak menyentuh store
// sama sekali (aman di-retry dari sisi gateway).
func (r *WebhookReconciler) Process(ctx context.Context, n dto.MidtransNotification, raw []byte) (ReconcileResult, error) {
	if strings.TrimSpace(n.OrderID) == "" {
		return ReconcileResult{}, ErrInvalidPayload
	}

	if !r.Verifier.VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, n.SignatureKey) {
		return ReconcileResult{OrderID: n.OrderID}, ErrInvalidSignature
	}

	trx, err := r.Store.FindByOrderID(ctx, n.OrderID)
	if err != nil {
		// order yang tidak pernah kita buat — seharusnya tidak terjadi
		log.Printf("[WEBHOOK] order_id=%s tidak dikenal: %v", n.OrderID, err)
		return ReconcileResult{OrderID: n.OrderID}, err
	}

	// pertahanan utama terhadap delivery ganda
	if trx.TransactionStatus == model.TransactionStatusSuccess {
		return ReconcileResult{
			OrderID:          n.OrderID,
			Status:           model.TransactionStatusSuccess,
			AlreadyProcessed: true,
		}, nil
	}

	// payload mentah selalu disimpan untuk audit, apa pun hasil mappingnya
	if err := r.Store.AttachGatewayPayload(ctx, n.OrderID, raw); err != nil {
		return ReconcileResult{OrderID: n.OrderID}, err
	}

	next, recognized := MapNotificationStatus(n.TransactionStatus, n.FraudStatus)

	switch next {
	case model.TransactionStatusSuccess:
		first, err := r.Store.MarkSuccess(ctx, n.OrderID, n.PaymentType, time.Now())
		if err != nil {
			return ReconcileResult{OrderID: n.OrderID}, err
		}
		if first {
			r.activateAndNotify(ctx, trx.TransactionArchitectID, n.OrderID)
		}
		return ReconcileResult{
			OrderID:          n.OrderID,
			Status:           model.TransactionStatusSuccess,
			AlreadyProcessed: !first,
		}, nil

	case model.TransactionStatusFailed:
		first, err := r.Store.MarkFailed(ctx, n.OrderID)
		if err != nil {
			return ReconcileResult{OrderID: n.OrderID}, err
		}
		if first {
			r.notifyFailed(ctx, trx.TransactionArchitectID, n.OrderID)
		}
		return ReconcileResult{
			OrderID:          n.OrderID,
			Status:           model.TransactionStatusFailed,
			AlreadyProcessed: !first,
		}, nil
	}

	if !recognized {
		log.Printf("[WEBHOOK] status tidak dikenal: transaction_status=%s fraud_status=%s order_id=%s",
			n.TransactionStatus, n.FraudStatus, n.OrderID)
	}
	return ReconcileResult{OrderID: n.OrderID, Status: model.TransactionStatusPending}, nil
}

// activateAndNotify: aktivasi akun lalu email selamat datang.
// Keduanya tidak boleh menggagalkan rekonsiliasi yang sudah selesai secara logis.
func (r *WebhookReconciler) activateAndNotify(ctx context.Context, architectID uuid.UUID, orderID string) {
	arch, err := r.Activator.Activate(ctx, architectID)
	if err != nil {
		log.Printf("[WEBHOOK] aktivasi arsitek %s gagal: %v", architectID, err)
		return
	}
	r.Notifier.SendPaymentSuccess(arch.ArchitectName, arch.ArchitectEmail, orderID)
}

func (r *WebhookReconciler) notifyFailed(ctx context.Context, architectID uuid.UUID, orderID string) {
	arch, err := r.Activator.FindByID(ctx, architectID)
	if err != nil {
		log.Printf("[WEBHOOK] lookup arsitek %s gagal: %v", architectID, err)
		return
	}
	r.Notifier.SendPaymentFailed(arch.ArchitectName, arch.ArchitectEmail, orderID)
}
