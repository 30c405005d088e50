package joinrequests

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcastellanos/orghub-backend/pkg/db/models"
)

// JoinRequestDTO is the transport shape for a pending join request.
type JoinRequestDTO struct {
	ID        uuid.UUID `json:"id"`
	OrgID     uuid.UUID `json:"org_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingRequestDTO mixes the request with applicant metadata for reviewers.
type PendingRequestDTO struct {
	ID        uuid.UUID `json:"id"`
	OrgID     uuid.UUID `json:"org_id"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(r *models.JoinRequest) *JoinRequestDTO {
	if r == nil {
		return nil
	}

	return &JoinRequestDTO{
		ID:        r.ID,
		OrgID:     r.OrgID,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
	}
}

type pendingRequestRow struct {
	models.JoinRequest
	Email     string `gorm:"column:email"`
	FirstName string `gorm:"column:first_name"`
	LastName  string `gorm:"column:last_name"`
}

func pendingRequestsFromRows(rows []pendingRequestRow) []PendingRequestDTO {
	out := make([]PendingRequestDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, PendingRequestDTO{
			ID:        row.ID,
			OrgID:     row.OrgID,
			UserID:    row.UserID,
			Email:     row.Email,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			CreatedAt: row.CreatedAt,
		})
	}
	return out
}
