package models

import "time"

// SignUpMethodLocal marks accounts registered with a local password.
const SignUpMethodLocal = "local"

// Account is one end user. Exactly one row exists per email.
type Account struct {
	ID       string
	UserName string
	Email    string
	// PasswordHash is nil for federation-only accounts.
	PasswordHash *string
	Role         Role
	// SignUpMethod is SignUpMethodLocal or the identity provider name.
	SignUpMethod string

	AccountNonLocked      bool
	AccountNonExpired     bool
	CredentialsNonExpired bool
	Enabled               bool
	TwoFactorEnabled      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanSignIn reports whether the account flags allow a new session.
func (a *Account) CanSignIn() bool {
	return a.Enabled && a.AccountNonLocked && a.AccountNonExpired
}
