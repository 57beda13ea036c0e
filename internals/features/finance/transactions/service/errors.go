package service

import "errors"

var (
	// payload webhook tidak lengkap / tidak bisa dibaca
	ErrInvalidPayload = errors.New("invalid notification payload")

	// signature_key tidak cocok dengan SHA512(order_id+status_code+gross_amount+server_key)
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// order_id tidak dikenal — sistem ini tidak pernah membuat transaksi tsb
	ErrTransactionNotFound = errors.New("transaction not found")

	// transisi status yang tidak diizinkan (mis. failed di atas success)
	ErrStatusConflict = errors.New("conflicting status transition")

	// gateway tidak punya catatan untuk order_id tsb
	ErrGatewayOrderNotFound = errors.New("order not found on payment gateway")
)
