package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"arsitekku_backend/internals/configs"
)

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
}

var EmailClient *BrevoService

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func InitEmailService() {
	apiKey := configs.GetEnv("BREVO_API_KEY")
	senderEmail := configs.GetEnv("EMAIL_SENDER")
	senderName := configs.GetEnv("EMAIL_SENDER_NAME", "ArsitekKu")

	if apiKey == "" || senderEmail == "" {
		log.Println("⚠️ Email service belum dikonfigurasi, notifikasi email dilewati.")
		EmailClient = nil
		return
	}

	EmailClient = &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
	}
	log.Println("✅ Email service siap.")
}

func (s *BrevoService) send(toEmail, toName, subject, htmlContent string) error {
	url := "https://api.brevo.com/v3/smtp/email"

	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	client := &http.Client{
		Timeout: 10 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("brevo api error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// SendEmail: fire-and-forget. Kegagalan hanya dicatat — outage provider email
// tidak boleh menggagalkan rekonsiliasi webhook atau batch sweeper.
func SendEmail(toName, toEmail, subject, htmlContent string) {
	if EmailClient == nil {
		log.Println("Email client belum diinisialisasi, email dilewati.")
		return
	}

	if err := EmailClient.send(toEmail, toName, subject, htmlContent); err != nil {
		log.Printf("🔥 Gagal kirim email ke %s: %v", toEmail, err)
		return
	}
	log.Printf("✅ Email terkirim ke %s", toEmail)
}

/* =========================================================
   PaymentMailer — notifikasi siklus hidup pembayaran
========================================================= */

type PaymentMailer struct{}

func (PaymentMailer) SendPaymentSuccess(name, email, orderID string) {
	subject := "Selamat Datang di ArsitekKu — Akun Anda Aktif!"
	body := fmt.Sprintf(
		"<h1>Pembayaran Berhasil</h1><p>Halo %s,</p><p>Pembayaran registrasi Anda (order <b>%s</b>) sudah kami terima. Akun arsitek Anda kini aktif — selamat berkarya!</p>",
		name, orderID,
	)
	go SendEmail(name, email, subject, body)
}

func (PaymentMailer) SendPaymentFailed(name, email, orderID string) {
	subject := "Pembayaran Registrasi Gagal"
	body := fmt.Sprintf(
		"<h1>Pembayaran Gagal</h1><p>Halo %s,</p><p>Pembayaran untuk order <b>%s</b> gagal diproses. Silakan daftar ulang untuk mendapatkan tautan pembayaran baru.</p>",
		name, orderID,
	)
	go SendEmail(name, email, subject, body)
}

func (PaymentMailer) SendPaymentExpired(name, email, orderID string) {
	subject := "Batas Waktu Pembayaran Berakhir"
	body := fmt.Sprintf(
		"<h1>Pembayaran Kadaluarsa</h1><p>Halo %s,</p><p>Tautan pembayaran untuk order <b>%s</b> sudah tidak berlaku. Silakan daftar ulang untuk melanjutkan registrasi.</p>",
		name, orderID,
	)
	go SendEmail(name, email, subject, body)
}
