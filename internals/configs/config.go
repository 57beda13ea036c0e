package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	JWTSecret string

	// Midtrans
	MidtransServerKey     string
	MidtransClientKey     string
	UseMidtransProduction bool

	// Paid registration
	RegistrationFeeIDR int
	PaymentExpiryHours int
	OrderIDPrefix      string
	PaymentPageBaseURL string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	JWTSecret = GetEnv("JWT_SECRET")

	MidtransServerKey = GetEnv("MIDTRANS_SERVER_KEY")
	MidtransClientKey = GetEnv("MIDTRANS_CLIENT_KEY")
	UseMidtransProduction = GetEnvBool("MIDTRANS_PRODUCTION", false)

	RegistrationFeeIDR = GetEnvInt("REGISTRATION_FEE_IDR", 500000)
	PaymentExpiryHours = GetEnvInt("PAYMENT_EXPIRY_HOURS", 24)
	OrderIDPrefix = GetEnv("ORDER_ID_PREFIX", "ARS")
	PaymentPageBaseURL = GetEnv("PAYMENT_PAGE_BASE_URL", "http://localhost:3000/payments")

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET belum diset!")
	}
	if MidtransServerKey == "" {
		log.Println("❌ MIDTRANS_SERVER_KEY belum diset!")
	} else {
		log.Println("✅ MIDTRANS_SERVER_KEY berhasil dimuat.")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
		log.Printf("⚠️ %s bukan angka valid, pakai default %d", key, def)
	}
	return def
}

func GetEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
		log.Printf("⚠️ %s bukan boolean valid, pakai default %v", key, def)
	}
	return def
}
