package deliverymen

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

// SubmitInput is a courier application.
type SubmitInput struct {
	Phone       string            `json:"phone" validate:"required"`
	Address     string            `json:"address" validate:"required"`
	WorkArea    string            `json:"workArea" validate:"required"`
	Age         int               `json:"age" validate:"required,min=16,max=100"`
	Profession  string            `json:"profession" validate:"required"`
	VehicleType enums.VehicleType `json:"vehicleType"`
	Experience  int               `json:"experience" validate:"min=0"`
}

// DecisionInput carries the admin's verdict.
type DecisionInput struct {
	Status enums.RequestStatus `json:"status" validate:"required,oneof=approved rejected"`
}

// Applicant is the account behind an application.
type Applicant struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName,omitempty"`
	Email    string    `json:"email,omitempty"`
}

// RequestDTO is the wire shape of a courier application.
type RequestDTO struct {
	ID          uuid.UUID           `json:"id"`
	User        Applicant           `json:"user"`
	Phone       string              `json:"phone"`
	Address     string              `json:"address"`
	WorkArea    string              `json:"workArea"`
	Age         int                 `json:"age"`
	Profession  string              `json:"profession"`
	VehicleType enums.VehicleType   `json:"vehicleType"`
	Experience  int                 `json:"experience"`
	Status      enums.RequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func FromModel(r *models.DeliveryManRequest) RequestDTO {
	return RequestDTO{
		ID:          r.ID,
		User:        Applicant{ID: r.UserID},
		Phone:       r.Phone,
		Address:     r.Address,
		WorkArea:    r.WorkArea,
		Age:         r.Age,
		Profession:  r.Profession,
		VehicleType: r.VehicleType,
		Experience:  r.Experience,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromRow(row requestRow) RequestDTO {
	dto := FromModel(&row.DeliveryManRequest)
	if row.FullName != nil {
		dto.User.FullName = *row.FullName
	}
	if row.Email != nil {
		dto.User.Email = *row.Email
	}
	return dto
}
