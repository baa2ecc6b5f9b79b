package enums

import "fmt"

// UserRole gates which routes an account can reach.
type UserRole string

const (
	UserRoleUser        UserRole = "user"
	UserRoleShopOwner   UserRole = "shop-owner"
	UserRoleAdmin       UserRole = "admin"
	UserRoleDeliveryMan UserRole = "delivery-man"
)

var validUserRoles = []UserRole{
	UserRoleUser,
	UserRoleShopOwner,
	UserRoleAdmin,
	UserRoleDeliveryMan,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff is true for platform admins and couriers.
func (r UserRole) IsStaff() bool {
	return r == UserRoleAdmin || r == UserRoleDeliveryMan
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

// RequestStatus tracks a courier application review.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) String() string {
	return string(s)
}

// IsDecision reports whether the value is a terminal review outcome.
func (s RequestStatus) IsDecision() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

func ParseRequestStatus(value string) (RequestStatus, error) {
	switch RequestStatus(value) {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return RequestStatus(value), nil
	}
	return "", fmt.Errorf("invalid request status %q", value)
}

// VehicleType is how a courier travels.
type VehicleType string

const (
	VehicleBicycle    VehicleType = "bicycle"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleCar        VehicleType = "car"
	VehicleWalking    VehicleType = "walking"
)

var validVehicleTypes = []VehicleType{
	VehicleBicycle,
	VehicleMotorcycle,
	VehicleCar,
	VehicleWalking,
}

func (v VehicleType) String() string {
	return string(v)
}

func (v VehicleType) IsValid() bool {
	for _, candidate := range validVehicleTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

func ParseVehicleType(value string) (VehicleType, error) {
	for _, candidate := range validVehicleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle type %q", value)
}
