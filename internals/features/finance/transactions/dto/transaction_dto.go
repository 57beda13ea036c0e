package dto

import (
	"time"

	"github.com/google/uuid"

	"arsitekku_backend/internals/features/finance/transactions/model"
)

/* =========================================================
   Inbound — notifikasi Midtrans
========================================================= */

type MidtransNotification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"` // capture, settlement, pending, deny, cancel, expire, ...
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"` // string dari Midtrans
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"` // accept / challenge / deny
	TransactionID     string `json:"transaction_id"`
	SettlementTime    string `json:"settlement_time"`
	// field lain aman diabaikan
}

/* =========================================================
   Inbound — admin override
========================================================= */

type OverrideStatusRequest struct {
	Status        string `json:"status" validate:"required,oneof=success failed expired"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,max=40"`
}

/* =========================================================
   Outbound
========================================================= */

type TransactionResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	ArchitectID   uuid.UUID `json:"architect_id"`
	OrderID       string    `json:"order_id"`
	PaymentToken  string    `json:"payment_token"`
	GatewayToken  *string   `json:"gateway_token,omitempty"`
	RedirectURL   *string   `json:"redirect_url,omitempty"`
	AmountIDR     int       `json:"amount_idr"`
	Status        string    `json:"status"`
	PaymentMethod *string   `json:"payment_method,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	ExpiredAt     time.Time  `json:"expired_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

func FromModel(t *model.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		ArchitectID:   t.TransactionArchitectID,
		OrderID:       t.TransactionOrderID,
		PaymentToken:  t.TransactionPaymentToken,
		GatewayToken:  t.TransactionGatewayToken,
		RedirectURL:   t.TransactionRedirectURL,
		AmountIDR:     t.TransactionAmountIDR,
		Status:        t.TransactionStatus,
		PaymentMethod: t.TransactionPaymentMethod,
		PaidAt:        t.TransactionPaidAt,
		ExpiredAt:     t.TransactionExpiredAt,
		CreatedAt:     t.CreatedAt,
	}
}

func FromModels(list []model.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}
