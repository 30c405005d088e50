package organizations

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcastellanos/orghub-backend/pkg/db/models"
)

// OrganizationDTO is the transport shape for an organization.
type OrganizationDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	LogoURL   string    `json:"logo_url"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromModel converts the persistence model to the external DTO.
func FromModel(o *models.Organization) *OrganizationDTO {
	if o == nil {
		return nil
	}

	return &OrganizationDTO{
		ID:        o.ID,
		Name:      o.Name,
		LogoURL:   o.LogoURL,
		OwnerID:   o.OwnerID,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
