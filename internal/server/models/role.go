package models

// RoleName is one of the fixed authorities an account can hold.
type RoleName string

const (
	RoleUser  RoleName = "ROLE_USER"
	RoleAdmin RoleName = "ROLE_ADMIN"
)

// Role is a row of the roles table.
type Role struct {
	ID   int64
	Name RoleName
}
