package controller

import (
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"arsitekku_backend/internals/configs"
	txdto "arsitekku_backend/internals/features/finance/transactions/dto"
	txservice "arsitekku_backend/internals/features/finance/transactions/service"
	"arsitekku_backend/internals/features/users/architects/dto"
	"arsitekku_backend/internals/features/users/architects/model"
	helper "arsitekku_backend/internals/helpers"
)

type ArchitectController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Store     *txservice.TransactionStore
	Gateway   *txservice.MidtransGateway
}

func NewArchitectController(db *gorm.DB, gateway *txservice.MidtransGateway) *ArchitectController {
	return &ArchitectController{
		DB:        db,
		Validator: validator.New(),
		Store:     &txservice.TransactionStore{DB: db},
		Gateway:   gateway,
	}
}

// POST /api/architects/register
// Membuat akun arsitek (unpaid) + transaksi registrasi (pending) dalam satu
// alur. Registrasi TIDAK pernah gagal gara-gara gateway down — token Snap
// tinggal di-backfill dari halaman pembayaran.
func (h *ArchitectController) Register(c *fiber.Ctx) error {
	var req dto.RegisterArchitectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "hash password failed")
	}

	arch := &model.Architect{
		ArchitectName:        strings.TrimSpace(req.Name),
		ArchitectEmail:       strings.ToLower(strings.TrimSpace(req.Email)),
		ArchitectPhone:       strings.TrimSpace(req.Phone),
		ArchitectCity:        strings.TrimSpace(req.City),
		ArchitectPassword:    string(hashed),
		ArchitectSpecialties: pq.StringArray(req.Specialties),
		ArchitectStatus:      model.ArchitectStatusUnpaid,
	}
	if err := h.DB.WithContext(c.UserContext()).Create(arch).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return fiber.NewError(fiber.StatusConflict, "email sudah terdaftar")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "create architect failed: "+err.Error())
	}

	// transaksi registrasi — nominal tetap dari konfigurasi, bukan input client
	now := time.Now()
	orderID := txservice.GenerateOrderID(configs.OrderIDPrefix)
	paymentToken := txservice.GeneratePaymentToken()
	expiredAt := txservice.ExpiryDate(now, configs.PaymentExpiryHours)

	trx, err := h.Store.Create(c.UserContext(), arch.ArchitectID, orderID, paymentToken, configs.RegistrationFeeIDR, expiredAt)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "create transaction failed: "+err.Error())
	}

	// best-effort: gateway gagal bukan alasan membatalkan registrasi
	gwToken, redirectURL, gwErr := h.Gateway.CreateTransaction(trx, txservice.CustomerInput{
		Name:  arch.ArchitectName,
		Email: arch.ArchitectEmail,
		Phone: arch.ArchitectPhone,
	})
	if gwErr != nil {
		log.Printf("[MIDTRANS] create transaction order_id=%s gagal: %v", orderID, gwErr)
	} else {
		if err := h.Store.AttachGatewayToken(c.UserContext(), orderID, gwToken, redirectURL); err != nil {
			log.Printf("[MIDTRANS] simpan token order_id=%s gagal: %v", orderID, err)
		}
		trx.TransactionGatewayToken = &gwToken
		trx.TransactionRedirectURL = &redirectURL
	}

	return helper.JsonCreated(c, "registrasi diterima, silakan selesaikan pembayaran", fiber.Map{
		"architect":   dto.FromModel(arch),
		"transaction": txdto.FromModel(trx),
		"payment_url": configs.PaymentPageBaseURL + "/" + paymentToken,
	})
}
