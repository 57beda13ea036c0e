package service

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	"arsitekku_backend/internals/features/finance/transactions/model"
)

/* =========================================================
   Midtrans Gateway Client
========================================================= */

// CustomerInput: data customer untuk Snap checkout.
type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

// MidtransGateway membungkus seluruh interaksi HTTP ke Midtrans (Snap + Core API).
// Sandbox/production dipilih sekali saat konstruksi, tidak pernah per-request.
type MidtransGateway struct {
	Snap      snap.Client
	Core      coreapi.Client
	serverKey string
}

// NewMidtransGateway dipanggil sekali saat bootstrap app.
// useProduction=true untuk Production, false untuk Sandbox.
func NewMidtransGateway(serverKey string, useProduction bool) *MidtransGateway {
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}

	// timeout eksplisit untuk semua call keluar ke gateway
	midtrans.DefaultGoHttpClient = &http.Client{Timeout: 20 * time.Second}

	g := &MidtransGateway{serverKey: serverKey}
	g.Snap.New(serverKey, env)
	g.Core.New(serverKey, env)
	return g
}

// CreateTransaction membuat sesi checkout Snap untuk sebuah transaksi lokal.
// Error dari gateway TIDAK fatal untuk registrasi — token bisa di-backfill
// belakangan lewat halaman payment-info.
func (g *MidtransGateway) CreateTransaction(t *model.Transaction, cust CustomerInput) (string, string, error) {
	if t.TransactionAmountIDR <= 0 {
		return "", "", fmt.Errorf("invalid transaction_amount_idr")
	}
	if strings.TrimSpace(t.TransactionOrderID) == "" {
		return "", "", fmt.Errorf("transaction_order_id is required")
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  t.TransactionOrderID,
			GrossAmt: int64(t.TransactionAmountIDR),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: cust.Name,
			Email: cust.Email,
			Phone: cust.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       t.TransactionOrderID,
				Price:    int64(t.TransactionAmountIDR),
				Qty:      1,
				Name:     "Biaya Registrasi Arsitek",
				Category: "registration",
			},
		},
	}

	resp, err := g.Snap.CreateTransaction(req)
	if err != nil {
		return "", "", err
	}
	return resp.Token, resp.RedirectURL, nil
}

// GetStatus menanyakan status transaksi langsung ke gateway.
func (g *MidtransGateway) GetStatus(orderID string) (*coreapi.TransactionStatusResponse, error) {
	resp, err := g.Core.CheckTransaction(orderID)
	if err != nil {
		if err.StatusCode == 404 {
			return nil, ErrGatewayOrderNotFound
		}
		return nil, err
	}
	return resp, nil
}

// Cancel: best-effort — kegagalan hanya dicatat, status lokal tetap source of truth.
func (g *MidtransGateway) Cancel(orderID string) {
	if _, err := g.Core.CancelTransaction(orderID); err != nil {
		log.Printf("[MIDTRANS] cancel %s gagal: %v", orderID, err)
	}
}

// Expire: best-effort — dipakai sweeper agar sesi checkout gateway ikut ditutup.
func (g *MidtransGateway) Expire(orderID string) {
	if _, err := g.Core.ExpireTransaction(orderID); err != nil {
		log.Printf("[MIDTRANS] expire %s gagal: %v", orderID, err)
	}
}

// VerifySignature memeriksa SHA512(order_id + status_code + gross_amount + server_key).
// Mengembalikan false untuk anomali apa pun — tidak ada jalur "gagal = lolos".
func (g *MidtransGateway) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	want := strings.ToLower(strings.TrimSpace(signatureKey))
	if want == "" || orderID == "" {
		return false
	}
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + g.serverKey))
	got := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
