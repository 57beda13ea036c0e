package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"arsitekku_backend/internals/features/users/architects/model"
)

var (
	ErrArchitectNotFound = errors.New("architect not found")

	// akun banned tidak boleh diaktifkan diam-diam oleh webhook nyasar
	ErrArchitectBanned = errors.New("architect is banned")
)

type ArchitectService struct {
	DB *gorm.DB
}

func (s *ArchitectService) FindByID(ctx context.Context, id uuid.UUID) (*model.Architect, error) {
	var arch model.Architect
	if err := s.DB.WithContext(ctx).
		First(&arch, "architect_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArchitectNotFound
		}
		return nil, err
	}
	return &arch, nil
}

func (s *ArchitectService) FindByEmail(ctx context.Context, email string) (*model.Architect, error) {
	var arch model.Architect
	if err := s.DB.WithContext(ctx).
		First(&arch, "architect_email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArchitectNotFound
		}
		return nil, err
	}
	return &arch, nil
}

// Activate: unpaid → active, sebagai conditional update. Idempoten — akun yang
// sudah active adalah no-op (webhook delivery at-least-once); akun banned
// ditolak dan dicatat, tidak pernah diaktifkan ulang.
func (s *ArchitectService) Activate(ctx context.Context, id uuid.UUID) (*model.Architect, error) {
	res := s.DB.WithContext(ctx).Model(&model.Architect{}).
		Where("architect_id = ? AND architect_status = ?", id, model.ArchitectStatusUnpaid).
		Update("architect_status", model.ArchitectStatusActive)
	if res.Error != nil {
		return nil, res.Error
	}

	arch, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if res.RowsAffected == 0 && arch.IsBanned() {
		log.Printf("[ACTIVATION] arsitek %s berstatus banned, aktivasi ditolak", id)
		return nil, ErrArchitectBanned
	}
	return arch, nil
}
