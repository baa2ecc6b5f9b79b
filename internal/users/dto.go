package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
)

// UserDTO is the transport shape of an account.
type UserDTO struct {
	ID            uuid.UUID      `json:"id"`
	FullName      string         `json:"fullName"`
	Email         string         `json:"email"`
	Role          enums.UserRole `json:"role"`
	Phone         *string        `json:"phone,omitempty"`
	Address       *string        `json:"address,omitempty"`
	DeliveredCoin int            `json:"deliveredCoin"`
	Shop          *uuid.UUID     `json:"shop,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	FullName string
	Email    string
	Role     enums.UserRole
	Phone    *string
	Address  *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Role:          u.Role,
		Phone:         u.Phone,
		Address:       u.Address,
		DeliveredCoin: u.DeliveredCoin,
		Shop:          u.ShopID,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if !role.IsValid() {
		role = enums.UserRoleUser
	}
	return &models.User{
		ID:       uuid.New(),
		FullName: strings.TrimSpace(c.FullName),
		Email:    strings.ToLower(strings.TrimSpace(c.Email)),
		Role:     role,
		Phone:    c.Phone,
		Address:  c.Address,
	}
}
