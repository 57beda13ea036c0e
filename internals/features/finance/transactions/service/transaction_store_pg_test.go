package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"arsitekku_backend/internals/features/finance/transactions/model"
	archmodel "arsitekku_backend/internals/features/users/architects/model"
)

// setupTestDB menyalakan Postgres sekali pakai per test. Tanpa Docker,
// test integrasi di-skip, bukan gagal.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("arsitekku_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(ctr)
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.AutoMigrate(&archmodel.Architect{}, &model.Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createArchitect(t *testing.T, db *gorm.DB, email string) uuid.UUID {
	t.Helper()
	arch := &archmodel.Architect{
		ArchitectName:     "Test Arsitek",
		ArchitectEmail:    email,
		ArchitectPassword: "hashed",
		ArchitectStatus:   archmodel.ArchitectStatusUnpaid,
	}
	if err := db.Create(arch).Error; err != nil {
		t.Fatalf("create architect: %v", err)
	}
	return arch.ArchitectID
}

func createPending(t *testing.T, store *TransactionStore, architectID uuid.UUID, orderID string, expiredAt time.Time) *model.Transaction {
	t.Helper()
	trx, err := store.Create(context.Background(), architectID, orderID, uuid.NewString(), 500000, expiredAt)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return trx
}

func TestTransactionStore_MarkSuccessIdempotent(t *testing.T) {
	db := setupTestDB(t)
	store := &TransactionStore{DB: db}
	ctx := context.Background()

	archID := createArchitect(t, db, "success@example.com")
	createPending(t, store, archID, "ORD-SUCCESS", time.Now().Add(24*time.Hour))

	firstPaidAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first, err := store.MarkSuccess(ctx, "ORD-SUCCESS", "bank_transfer", firstPaidAt)
	if err != nil || !first {
		t.Fatalf("first MarkSuccess = (%v, %v), want (true, nil)", first, err)
	}

	// replay: first=false, paid_at pertama tidak tertimpa
	second, err := store.MarkSuccess(ctx, "ORD-SUCCESS", "gopay", firstPaidAt.Add(time.Hour))
	if err != nil || second {
		t.Fatalf("replayed MarkSuccess = (%v, %v), want (false, nil)", second, err)
	}

	cur, err := store.FindByOrderID(ctx, "ORD-SUCCESS")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if cur.TransactionStatus != model.TransactionStatusSuccess {
		t.Errorf("status = %q, want success", cur.TransactionStatus)
	}
	if cur.TransactionPaidAt == nil || !cur.TransactionPaidAt.UTC().Equal(firstPaidAt) {
		t.Errorf("paid_at = %v, want first write %v", cur.TransactionPaidAt, firstPaidAt)
	}
	if cur.TransactionPaymentMethod == nil || *cur.TransactionPaymentMethod != "bank_transfer" {
		t.Errorf("payment_method = %v, want bank_transfer", cur.TransactionPaymentMethod)
	}
}

func TestTransactionStore_TerminalAbsorption(t *testing.T) {
	db := setupTestDB(t)
	store := &TransactionStore{DB: db}
	ctx := context.Background()

	archID := createArchitect(t, db, "terminal@example.com")

	t.Run("success over failed is a conflict", func(t *testing.T) {
		createPending(t, store, archID, "ORD-F1", time.Now().Add(time.Hour))
		if _, err := store.MarkFailed(ctx, "ORD-F1"); err != nil {
			t.Fatalf("mark failed: %v", err)
		}

		first, err := store.MarkSuccess(ctx, "ORD-F1", "bank_transfer", time.Now())
		if !errors.Is(err, ErrStatusConflict) || first {
			t.Errorf("MarkSuccess over failed = (%v, %v), want (false, ErrStatusConflict)", first, err)
		}

		cur, _ := store.FindByOrderID(ctx, "ORD-F1")
		if cur.TransactionStatus != model.TransactionStatusFailed {
			t.Errorf("status = %q, want failed (terminal state absorbs)", cur.TransactionStatus)
		}
	})

	t.Run("failed over expired is a benign no-op", func(t *testing.T) {
		createPending(t, store, archID, "ORD-E1", time.Now().Add(time.Hour))
		if _, err := store.MarkExpired(ctx, "ORD-E1"); err != nil {
			t.Fatalf("mark expired: %v", err)
		}

		first, err := store.MarkFailed(ctx, "ORD-E1")
		if err != nil || first {
			t.Errorf("MarkFailed over expired = (%v, %v), want (false, nil)", first, err)
		}
	})

	t.Run("failed over success is a conflict", func(t *testing.T) {
		createPending(t, store, archID, "ORD-S1", time.Now().Add(time.Hour))
		if _, err := store.MarkSuccess(ctx, "ORD-S1", "qris", time.Now()); err != nil {
			t.Fatalf("mark success: %v", err)
		}

		if _, err := store.MarkFailed(ctx, "ORD-S1"); !errors.Is(err, ErrStatusConflict) {
			t.Errorf("MarkFailed over success = %v, want ErrStatusConflict", err)
		}
	})
}

func TestTransactionStore_SweepExpired(t *testing.T) {
	db := setupTestDB(t)
	store := &TransactionStore{DB: db}
	ctx := context.Background()

	archID := createArchitect(t, db, "sweep@example.com")
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(24 * time.Hour)

	createPending(t, store, archID, "ORD-DUE-1", past)
	createPending(t, store, archID, "ORD-DUE-2", past)
	createPending(t, store, archID, "ORD-DUE-3", past)
	createPending(t, store, archID, "ORD-FRESH", future)

	// success yang kebetulan lewat batas TIDAK boleh tersapu
	createPending(t, store, archID, "ORD-PAID-LATE", past)
	if _, err := store.MarkSuccess(ctx, "ORD-PAID-LATE", "qris", time.Now()); err != nil {
		t.Fatalf("mark success: %v", err)
	}

	rows, err := store.SweepExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 swept rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.TransactionArchitectID != archID {
			t.Errorf("returned row should carry architect id, got %s", row.TransactionArchitectID)
		}
		cur, _ := store.FindByOrderID(ctx, row.TransactionOrderID)
		if cur.TransactionStatus != model.TransactionStatusExpired {
			t.Errorf("%s status = %q, want expired", row.TransactionOrderID, cur.TransactionStatus)
		}
	}

	fresh, _ := store.FindByOrderID(ctx, "ORD-FRESH")
	if fresh.TransactionStatus != model.TransactionStatusPending {
		t.Errorf("fresh pending row must survive the sweep, got %q", fresh.TransactionStatus)
	}
	paid, _ := store.FindByOrderID(ctx, "ORD-PAID-LATE")
	if paid.TransactionStatus != model.TransactionStatusSuccess {
		t.Errorf("success row must never be swept, got %q", paid.TransactionStatus)
	}

	// putaran kedua idempoten: 0 baris, tidak ada notifikasi ganda
	again, err := store.SweepExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second sweep should find nothing, got %d rows", len(again))
	}
}

func TestTransactionStore_ValidateForPayment(t *testing.T) {
	db := setupTestDB(t)
	store := &TransactionStore{DB: db}
	ctx := context.Background()
	now := time.Now()

	archID := createArchitect(t, db, "validate@example.com")

	t.Run("pending within deadline is payable", func(t *testing.T) {
		trx := createPending(t, store, archID, "ORD-V1", now.Add(time.Hour))
		v, err := store.ValidateForPayment(ctx, trx.TransactionPaymentToken, now)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if !v.Valid || v.Transaction == nil {
			t.Errorf("expected payable, got %+v", v)
		}
	})

	t.Run("logically expired pending is rejected before the sweeper runs", func(t *testing.T) {
		trx := createPending(t, store, archID, "ORD-V2", now.Add(-time.Minute))
		v, err := store.ValidateForPayment(ctx, trx.TransactionPaymentToken, now)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if v.Valid || v.Reason != "batas waktu pembayaran sudah lewat" {
			t.Errorf("expected expiry rejection, got %+v", v)
		}
	})

	t.Run("terminal status is rejected with the status in the reason", func(t *testing.T) {
		trx := createPending(t, store, archID, "ORD-V3", now.Add(time.Hour))
		if _, err := store.MarkSuccess(ctx, "ORD-V3", "qris", now); err != nil {
			t.Fatalf("mark success: %v", err)
		}
		v, err := store.ValidateForPayment(ctx, trx.TransactionPaymentToken, now)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if v.Valid || v.Reason != "transaksi sudah berstatus success" {
			t.Errorf("expected status rejection, got %+v", v)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		v, err := store.ValidateForPayment(ctx, uuid.NewString(), now)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if v.Valid || v.Transaction != nil {
			t.Errorf("unknown token must be invalid without a row, got %+v", v)
		}
	})
}

func TestTransactionStore_GatewayAttachments(t *testing.T) {
	db := setupTestDB(t)
	store := &TransactionStore{DB: db}
	ctx := context.Background()

	archID := createArchitect(t, db, "attach@example.com")
	createPending(t, store, archID, "ORD-ATTACH", time.Now().Add(time.Hour))

	if err := store.AttachGatewayToken(ctx, "ORD-ATTACH", "snap-token-123", "https://app.sandbox.midtrans.com/snap/v4/redirection/snap-token-123"); err != nil {
		t.Fatalf("attach token: %v", err)
	}
	if err := store.AttachGatewayPayload(ctx, "ORD-ATTACH", []byte(`{"transaction_status":"pending"}`)); err != nil {
		t.Fatalf("attach payload: %v", err)
	}

	cur, err := store.FindByOrderID(ctx, "ORD-ATTACH")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if cur.TransactionGatewayToken == nil || *cur.TransactionGatewayToken != "snap-token-123" {
		t.Errorf("gateway token = %v, want snap-token-123", cur.TransactionGatewayToken)
	}
	if len(cur.TransactionGatewayResponse) == 0 {
		t.Error("gateway payload should be stored")
	}
	if cur.TransactionStatus != model.TransactionStatusPending {
		t.Errorf("attachments must not change status, got %q", cur.TransactionStatus)
	}
}

func TestTransactionStore_FindByArchitectID_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	store := &TransactionStore{DB: db}
	ctx := context.Background()

	archID := createArchitect(t, db, "history@example.com")
	other := createArchitect(t, db, "other@example.com")

	createPending(t, store, archID, "ORD-H1", time.Now().Add(time.Hour))
	time.Sleep(10 * time.Millisecond)
	createPending(t, store, archID, "ORD-H2", time.Now().Add(time.Hour))
	createPending(t, store, other, "ORD-OTHER", time.Now().Add(time.Hour))

	list, err := store.FindByArchitectID(ctx, archID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 rows for architect, got %d", len(list))
	}
	if list[0].TransactionOrderID != "ORD-H2" {
		t.Errorf("expected newest first, got %q", list[0].TransactionOrderID)
	}
}
