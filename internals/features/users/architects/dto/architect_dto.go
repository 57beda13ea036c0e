package dto

import (
	"time"

	"github.com/google/uuid"

	"arsitekku_backend/internals/features/users/architects/model"
)

type RegisterArchitectRequest struct {
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Email       string   `json:"email" validate:"required,email,max=120"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
	Phone       string   `json:"phone" validate:"omitempty,max=20"`
	City        string   `json:"city" validate:"omitempty,max=60"`
	Specialties []string `json:"specialties" validate:"omitempty,max=10,dive,max=40"`
}

type ArchitectResponse struct {
	ArchitectID uuid.UUID `json:"architect_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	City        string    `json:"city,omitempty"`
	Specialties []string  `json:"specialties,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func FromModel(a *model.Architect) ArchitectResponse {
	return ArchitectResponse{
		ArchitectID: a.ArchitectID,
		Name:        a.ArchitectName,
		Email:       a.ArchitectEmail,
		Phone:       a.ArchitectPhone,
		City:        a.ArchitectCity,
		Specialties: []string(a.ArchitectSpecialties),
		Status:      a.ArchitectStatus,
		CreatedAt:   a.CreatedAt,
	}
}
