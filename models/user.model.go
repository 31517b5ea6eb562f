package models

// Roles a user can hold
const (
	RoleDonor     = "donor"
	RoleVolunteer = "volunteer"
	RoleAdmin     = "admin"
)

// Account statuses
const (
	UserStatusActive  = "active"
	UserStatusPending = "pending"
	UserStatusBlocked = "blocked"
)

var (
	UserRoles    = []string{RoleDonor, RoleVolunteer, RoleAdmin}
	UserStatuses = []string{UserStatusActive, UserStatusPending, UserStatusBlocked}
)

// User documents are stored as submitted at registration, so only the
// fields the API reads or writes have names here.
const (
	UserFieldEmail      = "email"
	UserFieldPassword   = "password"
	UserFieldRole       = "role"
	UserFieldStatus     = "status"
	UserFieldBloodGroup = "bloodGroup"
	UserFieldDistrict   = "district"
	UserFieldUpazila    = "upazila"
)

// AdminUserUpdate is the body of an administrative role/status change.
// Either field may be omitted, but not both.
type AdminUserUpdate struct {
	Role   string `json:"role" validate:"omitempty,oneof=donor volunteer admin"`
	Status string `json:"status" validate:"omitempty,oneof=active pending blocked"`
}

// LoginInput is the body of a login request
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
