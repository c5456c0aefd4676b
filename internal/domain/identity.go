package domain

import (
	"context"
	"strings"
	"time"
)

// Capability is a named permission an identity may hold
type Capability string

const (
	CapabilityCreatePost      Capability = "post:create"
	CapabilityReviewCandidate Capability = "candidate:review"
)

// ValidCapabilities returns all known capabilities
func ValidCapabilities() []Capability {
	return []Capability{CapabilityCreatePost, CapabilityReviewCandidate}
}

func (c Capability) IsValid() bool {
	for _, valid := range ValidCapabilities() {
		if c == valid {
			return true
		}
	}
	return false
}

type Identity struct {
	ID                string       `json:"id"`
	Email             string       `json:"email"`
	Name              string       `json:"name"`
	PasswordHash      string       `json:"-"`
	IsActive          bool         `json:"is_active"`
	IsStaff           bool         `json:"is_staff"`
	IsSuperuser       bool         `json:"is_superuser"`
	Capabilities      []Capability `json:"capabilities"`
	MustResetPassword bool         `json:"must_reset_password"`
	DateJoined        time.Time    `json:"date_joined"`
	LastLogin         *time.Time   `json:"last_login,omitempty"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// NormalizeEmail is applied before every lookup and before the unique index
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasCapability: inactive identities hold nothing, superusers hold everything
func (i *Identity) HasCapability(c Capability) bool {
	if i == nil || !i.IsActive {
		return false
	}
	if i.IsSuperuser {
		return true
	}
	for _, held := range i.Capabilities {
		if held == c {
			return true
		}
	}
	return false
}

func (i *Identity) FullName() string {
	return strings.TrimSpace(i.Name)
}

// ShortName falls back to the local part of the email
func (i *Identity) ShortName() string {
	if name := i.FullName(); name != "" {
		return name
	}
	local, _, _ := strings.Cut(i.Email, "@")
	return local
}

type RegisterRequest struct {
	Email           string `json:"email" form:"email" validate:"required,email,max=254"`
	Name            string `json:"name" form:"name" validate:"omitempty,max=255,valid_name"`
	Password        string `json:"password" form:"password1" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" form:"password2" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"current_password" form:"current_password" validate:"required"`
	NewPassword        string `json:"new_password" form:"new_password1" validate:"required,min=8,max=72,nefield=CurrentPassword"`
	NewPasswordConfirm string `json:"new_password_confirm" form:"new_password2" validate:"required,eqfield=NewPassword"`
}

type IssueIdentityRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Name  string `json:"name" validate:"omitempty,max=255,valid_name"`
}

// IssuedCredential is returned exactly once to the issuing staff member
type IssuedCredential struct {
	Identity          *Identity `json:"identity"`
	TemporaryPassword string    `json:"temporary_password"`
	EmailSent         bool      `json:"email_sent"`
}

type IdentityRepository interface {
	Create(ctx context.Context, identity *Identity) error
	GetByID(ctx context.Context, id string) (*Identity, error)
	GetByEmail(ctx context.Context, email string) (*Identity, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, mustReset bool) error
	SetCapabilities(ctx context.Context, id string, capabilities []Capability) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]Identity, int64, error)
}

type IdentityUsecase interface {
	Register(ctx context.Context, req RegisterRequest) (*Identity, error)
	Authenticate(ctx context.Context, email, password string) (*Identity, error)
	IssueCandidateIdentity(ctx context.Context, req IssueIdentityRequest) (*IssuedCredential, error)
	CreateSuperuser(ctx context.Context, email, password string) (*Identity, error)
	ChangePassword(ctx context.Context, id string, req ChangePasswordRequest) error
	GetCurrentIdentity(ctx context.Context, id string) (*Identity, error)
	GrantCapability(ctx context.Context, id string, capability Capability) (*Identity, error)
	RevokeCapability(ctx context.Context, id string, capability Capability) (*Identity, error)
	DeleteIdentity(ctx context.Context, id string) error
	ListIdentities(ctx context.Context, page, pageSize int) (*PaginatedResult[Identity], error)
}

type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginatedResult clamps page/pageSize the same way for every listing
func NewPaginatedResult[T any](data []T, total int64, page, pageSize int) *PaginatedResult[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	if data == nil {
		data = []T{}
	}
	return &PaginatedResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// NormalizePage returns a 1-based page and a bounded page size
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
