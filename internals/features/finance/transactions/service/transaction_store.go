package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"arsitekku_backend/internals/features/finance/transactions/model"
)

/* =========================================================
   Transaction Store
   Semua transisi terminal dinyatakan sebagai conditional update
   (WHERE transaction_status = 'pending'), bukan read-modify-write,
   supaya benar di bawah balapan webhook vs sweeper vs admin.
========================================================= */

type TransactionStore struct {
	DB *gorm.DB
}

// Create menyimpan percobaan pembayaran baru dengan status pending.
func (s *TransactionStore) Create(ctx context.Context, architectID uuid.UUID, orderID, paymentToken string, amountIDR int, expiredAt time.Time) (*model.Transaction, error) {
	trx := &model.Transaction{
		TransactionArchitectID:  architectID,
		TransactionOrderID:      orderID,
		TransactionPaymentToken: paymentToken,
		TransactionAmountIDR:    amountIDR,
		TransactionStatus:       model.TransactionStatusPending,
		TransactionExpiredAt:    expiredAt,
	}
	if err := s.DB.WithContext(ctx).Create(trx).Error; err != nil {
		return nil, err
	}
	return trx, nil
}

func (s *TransactionStore) FindByOrderID(ctx context.Context, orderID string) (*model.Transaction, error) {
	var trx model.Transaction
	if err := s.DB.WithContext(ctx).
		First(&trx, "transaction_order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &trx, nil
}

func (s *TransactionStore) FindByPaymentToken(ctx context.Context, paymentToken string) (*model.Transaction, error) {
	var trx model.Transaction
	if err := s.DB.WithContext(ctx).
		First(&trx, "transaction_payment_token = ?", paymentToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &trx, nil
}

// FindByArchitectID: riwayat transaksi milik satu arsitek, terbaru dulu.
func (s *TransactionStore) FindByArchitectID(ctx context.Context, architectID uuid.UUID) ([]model.Transaction, error) {
	var list []model.Transaction
	if err := s.DB.WithContext(ctx).
		Where("transaction_architect_id = ?", architectID).
		Order("transaction_created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// AttachGatewayToken menyimpan token Snap + redirect URL hasil create-transaction.
// Dipakai saat registrasi dan saat backfill dari halaman payment-info.
func (s *TransactionStore) AttachGatewayToken(ctx context.Context, orderID, gatewayToken, redirectURL string) error {
	return s.DB.WithContext(ctx).Model(&model.Transaction{}).
		Where("transaction_order_id = ?", orderID).
		Updates(map[string]interface{}{
			"transaction_gateway_token": gatewayToken,
			"transaction_redirect_url":  redirectURL,
		}).Error
}

// AttachGatewayPayload menyimpan payload mentah notifikasi terakhir (audit),
// tanpa syarat status apa pun.
func (s *TransactionStore) AttachGatewayPayload(ctx context.Context, orderID string, raw []byte) error {
	return s.DB.WithContext(ctx).Model(&model.Transaction{}).
		Where("transaction_order_id = ?", orderID).
		Update("transaction_gateway_response", datatypes.JSON(raw)).Error
}

// MarkSuccess: pending → success. Idempoten — pemanggilan ulang pada transaksi
// yang sudah success mengembalikan first=false tanpa menyentuh paid_at.
func (s *TransactionStore) MarkSuccess(ctx context.Context, orderID, paymentMethod string, now time.Time) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&model.Transaction{}).
		Where("transaction_order_id = ? AND transaction_status = ?", orderID, model.TransactionStatusPending).
		Updates(map[string]interface{}{
			"transaction_status":         model.TransactionStatusSuccess,
			"transaction_paid_at":        now,
			"transaction_payment_method": paymentMethod,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	cur, err := s.FindByOrderID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if cur.TransactionStatus == model.TransactionStatusSuccess {
		// replay — paid_at pertama yang menang, tidak ditimpa
		return false, nil
	}
	log.Printf("[CONFLICT] mark-success %s ditolak, status sekarang=%s", orderID, cur.TransactionStatus)
	return false, ErrStatusConflict
}

// MarkFailed: pending → failed. Sudah failed = no-op; sudah expired dianggap
// hasil balapan normal dengan sweeper (no-op); failed di atas success adalah
// anomali gateway dan dicatat sebagai konflik, tidak pernah ditimpa diam-diam.
func (s *TransactionStore) MarkFailed(ctx context.Context, orderID string) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&model.Transaction{}).
		Where("transaction_order_id = ? AND transaction_status = ?", orderID, model.TransactionStatusPending).
		Update("transaction_status", model.TransactionStatusFailed)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	cur, err := s.FindByOrderID(ctx, orderID)
	if err != nil {
		return false, err
	}
	switch cur.TransactionStatus {
	case model.TransactionStatusFailed:
		return false, nil
	case model.TransactionStatusExpired:
		log.Printf("[INFO] mark-failed %s diabaikan, sweeper sudah menutup transaksi", orderID)
		return false, nil
	default:
		log.Printf("[CONFLICT] mark-failed %s ditolak, status sekarang=%s", orderID, cur.TransactionStatus)
		return false, ErrStatusConflict
	}
}

// MarkExpired: pending → expired untuk satu transaksi (jalur admin override).
func (s *TransactionStore) MarkExpired(ctx context.Context, orderID string) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&model.Transaction{}).
		Where("transaction_order_id = ? AND transaction_status = ?", orderID, model.TransactionStatusPending).
		Update("transaction_status", model.TransactionStatusExpired)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	cur, err := s.FindByOrderID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if cur.TransactionStatus == model.TransactionStatusExpired {
		return false, nil
	}
	log.Printf("[CONFLICT] mark-expired %s ditolak, status sekarang=%s", orderID, cur.TransactionStatus)
	return false, ErrStatusConflict
}

// FindExpiredPending: semua pending yang sudah lewat batas bayar.
func (s *TransactionStore) FindExpiredPending(ctx context.Context, now time.Time) ([]model.Transaction, error) {
	var list []model.Transaction
	if err := s.DB.WithContext(ctx).
		Where("transaction_status = ? AND transaction_expired_at < ?", model.TransactionStatusPending, now).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ExpiredTransaction: baris hasil sweep, cukup untuk notifikasi + expire gateway.
type ExpiredTransaction struct {
	TransactionID          uuid.UUID `gorm:"column:transaction_id"`
	TransactionOrderID     string    `gorm:"column:transaction_order_id"`
	TransactionArchitectID uuid.UUID `gorm:"column:transaction_architect_id"`
}

// SweepExpired membalik semua pending kadaluarsa ke expired dalam SATU update
// set-based. Notifikasi dikirim dari baris RETURNING (baris yang BENAR-BENAR
// berubah), sehingga dua sweeper yang jalan bersamaan tidak menggandakan email:
// update kedua kena 0 baris.
func (s *TransactionStore) SweepExpired(ctx context.Context, now time.Time) ([]ExpiredTransaction, error) {
	var rows []ExpiredTransaction
	err := s.DB.WithContext(ctx).Raw(`
		UPDATE transactions
		   SET transaction_status     = 'expired',
		       transaction_updated_at = NOW()
		 WHERE transaction_status = 'pending'
		   AND transaction_expired_at < ?
	 RETURNING transaction_id, transaction_order_id, transaction_architect_id
	`, now).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

/* =========================================================
   Validasi halaman pembayaran
========================================================= */

type PaymentValidation struct {
	Valid       bool
	Reason      string
	Transaction *model.Transaction
}

// ValidateForPayment: gerbang bisnis sebelum client boleh buka checkout.
// Prioritas alasan: tidak ditemukan → status bukan pending → lewat batas bayar.
func (s *TransactionStore) ValidateForPayment(ctx context.Context, paymentToken string, now time.Time) (PaymentValidation, error) {
	trx, err := s.FindByPaymentToken(ctx, paymentToken)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			return PaymentValidation{Valid: false, Reason: "transaksi tidak ditemukan"}, nil
		}
		return PaymentValidation{}, err
	}
	return EvaluatePayability(trx, now), nil
}

// EvaluatePayability: keputusan murni atas satu transaksi yang sudah dimuat.
func EvaluatePayability(trx *model.Transaction, now time.Time) PaymentValidation {
	if trx.TransactionStatus != model.TransactionStatusPending {
		return PaymentValidation{
			Valid:       false,
			Reason:      "transaksi sudah berstatus " + trx.TransactionStatus,
			Transaction: trx,
		}
	}
	if trx.IsLogicallyExpired(now) {
		// lewat batas bayar meski sweeper belum jalan
		return PaymentValidation{
			Valid:       false,
			Reason:      "batas waktu pembayaran sudah lewat",
			Transaction: trx,
		}
	}
	return PaymentValidation{Valid: true, Transaction: trx}
}
