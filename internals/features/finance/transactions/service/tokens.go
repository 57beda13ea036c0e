package service

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

const orderSuffixLength = 6
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))

// GenerateOrderID membentuk order_id untuk Midtrans: {PREFIX}-{millis}-{6 acak}.
// Collision-resistant secara praktis; keunikan final dijamin unique index di DB.
func GenerateOrderID(prefix string) string {
	b := make([]byte, orderSuffixLength)
	for i := range b {
		b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), string(b))
}

// GeneratePaymentToken membuat token opaque untuk URL halaman pembayaran.
// Tidak pernah dikirim ke gateway.
func GeneratePaymentToken() string {
	return uuid.NewString()
}

// ExpiryDate menghitung batas bayar = now + grace period (jam).
func ExpiryDate(now time.Time, hours int) time.Time {
	if hours <= 0 {
		hours = 24
	}
	return now.Add(time.Duration(hours) * time.Hour)
}

// IsExpired: perbandingan murni, tanpa efek samping.
func IsExpired(expiredAt, now time.Time) bool {
	return now.After(expiredAt)
}
