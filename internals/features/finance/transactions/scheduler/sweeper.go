package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	txservice "arsitekku_backend/internals/features/finance/transactions/service"
	archmodel "arsitekku_backend/internals/features/users/architects/model"
)

/* =========================================================
   Expiry Sweeper — menutup transaksi pending yang terbengkalai
========================================================= */

type SweeperStore interface {
	SweepExpired(ctx context.Context, now time.Time) ([]txservice.ExpiredTransaction, error)
}

type GatewayExpirer interface {
	Expire(orderID string)
}

type ArchitectFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*archmodel.Architect, error)
}

type ExpiredNotifier interface {
	SendPaymentExpired(name, email, orderID string)
}

type ExpirySweeper struct {
	Store      SweeperStore
	Gateway    GatewayExpirer
	Architects ArchitectFinder
	Mailer     ExpiredNotifier
}

// RunOnce menjalankan satu putaran sweep:
// satu bulk update set-based, lalu per baris yang BENAR-BENAR berubah:
// expire sesi gateway (best-effort) + email notifikasi (best-effort).
// Idempoten — putaran kedua menemukan 0 baris.
func (s *ExpirySweeper) RunOnce(ctx context.Context) (int, error) {
	now := time.Now()

	rows, err := s.Store.SweepExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		log.Println("[SWEEPER] tidak ada transaksi kadaluarsa")
		return 0, nil
	}

	log.Printf("[SWEEPER] %d transaksi pending dibalik ke expired", len(rows))

	for _, row := range rows {
		// tutup sesi checkout di gateway; kegagalan tidak memblokir batch —
		// status lokal sudah final
		s.Gateway.Expire(row.TransactionOrderID)

		arch, err := s.Architects.FindByID(ctx, row.TransactionArchitectID)
		if err != nil {
			log.Printf("[SWEEPER] lookup arsitek %s gagal: %v", row.TransactionArchitectID, err)
			continue
		}
		s.Mailer.SendPaymentExpired(arch.ArchitectName, arch.ArchitectEmail, row.TransactionOrderID)
	}

	return len(rows), nil
}
