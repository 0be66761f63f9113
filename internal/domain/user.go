package domain

import (
	"context"
	"strings"
)

type Role string

const (
	RoleNone      Role = ""
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

// ParseRole normalizes a backend role string. Unknown values yield RoleNone.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCandidate:
		return RoleCandidate
	case RoleRecruiter, "employer":
		return RoleRecruiter
	default:
		return RoleNone
	}
}

func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleRecruiter
}

// Profile is the persisted user record. It never carries the token.
type Profile struct {
	UserID              string `json:"id" validate:"required"`
	DisplayName         string `json:"name"`
	Email               string `json:"email" validate:"omitempty,email"`
	Role                Role   `json:"role" validate:"valid_role"`
	ProfileCompleteness int    `json:"profile_completeness" validate:"gte=0,lte=100"`
	EmailVerified       bool   `json:"email_verified"`
	CompanyVerified     *bool  `json:"company_verified,omitempty"`
}

// Session is the authenticated identity held in memory.
// A non-nil Session always has a token and a valid role.
type Session struct {
	Profile
	AuthToken string `json:"-"`
}

// ProfilePatch is merged field by field; nil means "keep".
type ProfilePatch struct {
	DisplayName         *string `json:"name,omitempty"`
	Email               *string `json:"email,omitempty" validate:"omitempty,email"`
	ProfileCompleteness *int    `json:"profile_completeness,omitempty" validate:"omitempty,gte=0,lte=100"`
	EmailVerified       *bool   `json:"email_verified,omitempty"`
	CompanyVerified     *bool   `json:"company_verified,omitempty"`
}

// Apply returns p with the patch merged in. p is not modified.
func (patch ProfilePatch) Apply(p Profile) Profile {
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.ProfileCompleteness != nil {
		p.ProfileCompleteness = *patch.ProfileCompleteness
	}
	if patch.EmailVerified != nil {
		p.EmailVerified = *patch.EmailVerified
	}
	if patch.CompanyVerified != nil {
		v := *patch.CompanyVerified
		p.CompanyVerified = &v
	}
	return p
}

// Credentials is what a CredentialStore keeps: a token and a profile, each
// optional on read.
type Credentials struct {
	Token   string
	Profile *Profile
}

// LoginRequest is sent to the backend login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required"`
	Role     Role   `json:"role" binding:"required" validate:"valid_role"`
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token   string  `json:"token" validate:"required"`
	Profile Profile `json:"user"`
}

// CredentialStore persists the token and profile across restarts.
// SessionManager is its only writer.
type CredentialStore interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, token string, profile Profile) error
	Clear(ctx context.Context) error
}

// AuthAPI is the backend authentication boundary.
type AuthAPI interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
}

// TokenSource hands the current bearer token to the backend client.
type TokenSource interface {
	Token() string
}

type SessionUsecase interface {
	TokenSource
	Restore(ctx context.Context) error
	Login(ctx context.Context, profile Profile, token string) error
	Authenticate(ctx context.Context, req LoginRequest) (*Session, error)
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, patch ProfilePatch) (*Session, error)
	Expire(ctx context.Context, err error) bool
	Current() (Session, bool)
	Loading() bool
	RoleOf() Role
	IsRole(role Role) bool
	OnTeardown(fn func(ctx context.Context))
}
