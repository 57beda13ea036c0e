package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"arsitekku_backend/internals/features/finance/transactions/model"
	archmodel "arsitekku_backend/internals/features/users/architects/model"
)

var errMockStore = errors.New("mock store error")

// mockStore implements ReconcilerStore with call recording.
type mockStore struct {
	trx *model.Transaction

	findErr        error
	markSuccessErr error
	markFailedErr  error

	// first=false simulates a concurrent writer winning the conditional update
	markSuccessFirst bool
	markFailedFirst  bool

	attachedPayloads [][]byte
	markSuccessCalls []string
	markFailedCalls  []string
	paymentMethods   []string
}

func newMockStore(trx *model.Transaction) *mockStore {
	return &mockStore{trx: trx, markSuccessFirst: true, markFailedFirst: true}
}

func (m *mockStore) FindByOrderID(ctx context.Context, orderID string) (*model.Transaction, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.trx == nil || m.trx.TransactionOrderID != orderID {
		return nil, ErrTransactionNotFound
	}
	return m.trx, nil
}

func (m *mockStore) AttachGatewayPayload(ctx context.Context, orderID string, raw []byte) error {
	m.attachedPayloads = append(m.attachedPayloads, raw)
	return nil
}

func (m *mockStore) MarkSuccess(ctx context.Context, orderID, paymentMethod string, now time.Time) (bool, error) {
	if m.markSuccessErr != nil {
		return false, m.markSuccessErr
	}
	m.markSuccessCalls = append(m.markSuccessCalls, orderID)
	m.paymentMethods = append(m.paymentMethods, paymentMethod)
	return m.markSuccessFirst, nil
}

func (m *mockStore) MarkFailed(ctx context.Context, orderID string) (bool, error) {
	if m.markFailedErr != nil {
		return false, m.markFailedErr
	}
	m.markFailedCalls = append(m.markFailedCalls, orderID)
	return m.markFailedFirst, nil
}

// mockVerifier accepts everything unless ok=false.
type mockVerifier struct {
	ok    bool
	calls int
}

func (m *mockVerifier) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	m.calls++
	return m.ok
}

// mockActivator implements AccountActivator.
type mockActivator struct {
	arch        *archmodel.Architect
	activateErr error

	activateCalls []uuid.UUID
	findCalls     []uuid.UUID
}

func (m *mockActivator) Activate(ctx context.Context, id uuid.UUID) (*archmodel.Architect, error) {
	m.activateCalls = append(m.activateCalls, id)
	if m.activateErr != nil {
		return nil, m.activateErr
	}
	return m.arch, nil
}

func (m *mockActivator) FindByID(ctx context.Context, id uuid.UUID) (*archmodel.Architect, error) {
	m.findCalls = append(m.findCalls, id)
	if m.arch == nil {
		return nil, errMockStore
	}
	return m.arch, nil
}

// mockNotifier records outgoing mails.
type mockNotifier struct {
	successMails []string
	failedMails  []string
}

func (m *mockNotifier) SendPaymentSuccess(name, email, orderID string) {
	m.successMails = append(m.successMails, orderID)
}

func (m *mockNotifier) SendPaymentFailed(name, email, orderID string) {
	m.failedMails = append(m.failedMails, orderID)
}
