package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */
/* Selaras dengan ENUM di PostgreSQL: architect_status */

const (
	ArchitectStatusUnpaid = "unpaid"
	ArchitectStatusActive = "active"
	ArchitectStatusBanned = "banned"
)

/* ===================== Model ===================== */

type Architect struct {
	ArchitectID uuid.UUID `gorm:"column:architect_id;type:uuid;default:gen_random_uuid();primaryKey" json:"architect_id"`

	ArchitectName  string `gorm:"column:architect_name;type:varchar(100);not null" json:"architect_name"`
	ArchitectEmail string `gorm:"column:architect_email;type:varchar(120);uniqueIndex;not null" json:"architect_email"`
	ArchitectPhone string `gorm:"column:architect_phone;type:varchar(20)" json:"architect_phone"`
	ArchitectCity  string `gorm:"column:architect_city;type:varchar(60)" json:"architect_city"`

	// hash bcrypt, tidak pernah ikut response
	ArchitectPassword string `gorm:"column:architect_password;not null" json:"-"`

	ArchitectSpecialties pq.StringArray `gorm:"column:architect_specialties;type:text[]" json:"architect_specialties,omitempty"`

	// unpaid → active lewat pembayaran registrasi; banned hanya lewat aksi admin
	ArchitectStatus string `gorm:"column:architect_status;type:varchar(16);not null;default:'unpaid';index" json:"architect_status"`

	CreatedAt time.Time      `gorm:"column:architect_created_at;autoCreateTime" json:"architect_created_at"`
	UpdatedAt time.Time      `gorm:"column:architect_updated_at;autoUpdateTime" json:"architect_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:architect_deleted_at;index" json:"architect_deleted_at,omitempty"`
}

func (Architect) TableName() string { return "architects" }

/* ===================== Helpers ===================== */

func (a *Architect) IsActive() bool { return a.ArchitectStatus == ArchitectStatusActive }
func (a *Architect) IsBanned() bool { return a.ArchitectStatus == ArchitectStatusBanned }
