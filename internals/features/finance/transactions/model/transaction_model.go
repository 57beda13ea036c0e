package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	archmodel "arsitekku_backend/internals/features/users/architects/model"
)

/* ===================== Enums (string) ===================== */
/* Selaras dengan ENUM di PostgreSQL: transaction_status */

const (
	TransactionStatusPending = "pending"
	TransactionStatusSuccess = "success"
	TransactionStatusFailed  = "failed"
	TransactionStatusExpired = "expired"
)

/* ===================== Model ===================== */

type Transaction struct {
	TransactionID uuid.UUID `gorm:"column:transaction_id;type:uuid;default:gen_random_uuid();primaryKey" json:"transaction_id"`

	// pemilik — ikut terhapus (cascade) saat akun arsitek dihapus
	TransactionArchitectID uuid.UUID            `gorm:"column:transaction_architect_id;type:uuid;not null;index" json:"transaction_architect_id"`
	Architect              *archmodel.Architect `gorm:"foreignKey:TransactionArchitectID;references:ArchitectID;constraint:OnDelete:CASCADE" json:"-"`

	// order_id dikirim ke gateway; payment_token hanya untuk halaman pembayaran internal
	TransactionOrderID      string `gorm:"column:transaction_order_id;type:varchar(64);uniqueIndex;not null" json:"transaction_order_id"`
	TransactionPaymentToken string `gorm:"column:transaction_payment_token;type:varchar(40);uniqueIndex;not null" json:"transaction_payment_token"`

	// token Snap dari Midtrans; nullable sampai create-transaction pertama berhasil
	TransactionGatewayToken *string `gorm:"column:transaction_gateway_token" json:"transaction_gateway_token,omitempty"`
	TransactionRedirectURL  *string `gorm:"column:transaction_redirect_url" json:"transaction_redirect_url,omitempty"`

	// nominal tetap per produk, tidak pernah dari input client
	TransactionAmountIDR int `gorm:"column:transaction_amount_idr;not null;check:transaction_amount_idr >= 0" json:"transaction_amount_idr"`

	TransactionStatus string `gorm:"column:transaction_status;type:varchar(16);not null;default:'pending';index" json:"transaction_status"`

	// diisi hanya saat transisi ke success; paid_at first-write-wins
	TransactionPaymentMethod *string    `gorm:"column:transaction_payment_method" json:"transaction_payment_method,omitempty"`
	TransactionPaidAt        *time.Time `gorm:"column:transaction_paid_at" json:"transaction_paid_at,omitempty"`

	// ditetapkan saat create = created_at + grace period; tidak pernah diperpanjang
	TransactionExpiredAt time.Time `gorm:"column:transaction_expired_at;not null" json:"transaction_expired_at"`

	// payload notifikasi terakhir dari gateway, untuk audit/debug
	TransactionGatewayResponse datatypes.JSON `gorm:"column:transaction_gateway_response;type:jsonb" json:"transaction_gateway_response,omitempty"`

	CreatedAt time.Time `gorm:"column:transaction_created_at;autoCreateTime" json:"transaction_created_at"`
	UpdatedAt time.Time `gorm:"column:transaction_updated_at;autoUpdateTime" json:"transaction_updated_at"`
}

func (Transaction) TableName() string { return "transactions" }

/* ===================== Helpers ===================== */

func (t *Transaction) IsTerminal() bool {
	switch t.TransactionStatus {
	case TransactionStatusSuccess, TransactionStatusFailed, TransactionStatusExpired:
		return true
	default:
		return false
	}
}

// IsLogicallyExpired: pending yang sudah lewat expired_at dianggap kadaluarsa
// untuk keputusan baca, meski sweeper belum membalik statusnya.
func (t *Transaction) IsLogicallyExpired(now time.Time) bool {
	return t.TransactionStatus == TransactionStatusPending && now.After(t.TransactionExpiredAt)
}
