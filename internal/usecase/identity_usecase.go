package usecase

import (
	"context"
	"time"

	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/apperror"
	"go-intake-backend/pkg/email"
	"go-intake-backend/pkg/logger"
	"go-intake-backend/pkg/metrics"
	"go-intake-backend/pkg/security"

	"github.com/go-playground/validator/v10"
)

const (
	temporaryPasswordLength = 16
	invalidCredentials      = "Invalid email or password"
)

// LoginGuard tracks failed logins; *security.LoginTracker in production
type LoginGuard interface {
	IsBlocked(ctx context.Context, email, ip string) (bool, error)
	RecordFailedAttempt(ctx context.Context, email, ip string) (bool, error)
	ClearAttempts(ctx context.Context, email, ip string) error
}

type identityUsecase struct {
	repo      domain.IdentityRepository
	hasher    *security.PasswordHasher
	validate  *validator.Validate
	guard     LoginGuard
	mailer    email.Sender
	secLog    *security.SecurityLogger
	metrics   *metrics.Metrics
	dummyHash string
	now       func() time.Time
}

// NewIdentityUsecase wires credential management. mailer may be nil when SMTP
// is not configured; issued credentials are then only returned to the caller.
func NewIdentityUsecase(
	repo domain.IdentityRepository,
	hasher *security.PasswordHasher,
	validate *validator.Validate,
	guard LoginGuard,
	mailer email.Sender,
	secLog *security.SecurityLogger,
	m *metrics.Metrics,
) domain.IdentityUsecase {
	// compared against when the email is unknown so response time does not
	// reveal which accounts exist
	dummy, _ := hasher.Hash("not-a-real-password")
	return &identityUsecase{
		repo:      repo,
		hasher:    hasher,
		validate:  validate,
		guard:     guard,
		mailer:    mailer,
		secLog:    secLog,
		metrics:   m,
		dummyHash: dummy,
		now:       time.Now,
	}
}

func (u *identityUsecase) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Identity, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validateInput(u.validate, req, nil); err != nil {
		return nil, err
	}

	hash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	identity := &domain.Identity{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		IsActive:     true,
		Capabilities: []domain.Capability{},
	}
	if err := u.repo.Create(ctx, identity); err != nil {
		return nil, err
	}

	u.secLog.LogSignup(ctx, identity.Email)
	u.metrics.IncIdentityRegistered("signup")
	return identity, nil
}

func (u *identityUsecase) Authenticate(ctx context.Context, rawEmail, password string) (*domain.Identity, error) {
	addr := domain.NormalizeEmail(rawEmail)
	ip := security.MetaFromContext(ctx).IP
	if addr == "" || password == "" {
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	blocked, err := u.guard.IsBlocked(ctx, addr, ip)
	if err != nil {
		logger.Log.Warn("login tracker unavailable", "error", err)
	}
	if blocked {
		u.metrics.IncLogin("blocked")
		return nil, apperror.Unauthorized("Too many failed attempts. Try again later.")
	}

	identity, err := u.repo.GetByEmail(ctx, addr)
	if err != nil && !apperror.IsKind(err, apperror.KindNotFound) {
		return nil, err
	}

	var reason string
	switch {
	case identity == nil:
		u.hasher.Compare(u.dummyHash, password)
		reason = "unknown_email"
	case !u.hasher.Compare(identity.PasswordHash, password):
		reason = "invalid_password"
	case !identity.IsActive:
		reason = "inactive"
	}
	if reason != "" {
		u.failLogin(ctx, addr, ip, reason)
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	now := u.now().UTC()
	if err := u.repo.UpdateLastLogin(ctx, identity.ID, now); err != nil {
		return nil, err
	}
	identity.LastLogin = &now

	if err := u.guard.ClearAttempts(ctx, addr, ip); err != nil {
		logger.Log.Warn("failed to clear login attempts", "error", err)
	}
	u.secLog.LogLoginSuccess(ctx, addr)
	u.metrics.IncLogin("success")
	return identity, nil
}

func (u *identityUsecase) failLogin(ctx context.Context, addr, ip, reason string) {
	u.secLog.LogLoginFailed(ctx, addr, reason)
	u.metrics.IncLogin("failure")
	if _, err := u.guard.RecordFailedAttempt(ctx, addr, ip); err != nil {
		logger.Log.Warn("failed to record login attempt", "error", err)
	}
}

// IssueCandidateIdentity creates an account on a candidate's behalf with a
// random single-use password that must be changed at first login.
func (u *identityUsecase) IssueCandidateIdentity(ctx context.Context, req domain.IssueIdentityRequest) (*domain.IssuedCredential, error) {
	issuer, err := requireStaff(ctx)
	if err != nil {
		return nil, err
	}

	req.Email = domain.NormalizeEmail(req.Email)
	if err := validateInput(u.validate, req, nil); err != nil {
		return nil, err
	}

	temporary, err := security.RandomCredential(temporaryPasswordLength)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	hash, err := u.hasher.Hash(temporary)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	identity := &domain.Identity{
		Email:             req.Email,
		Name:              req.Name,
		PasswordHash:      hash,
		IsActive:          true,
		Capabilities:      []domain.Capability{},
		MustResetPassword: true,
	}
	if err := u.repo.Create(ctx, identity); err != nil {
		return nil, err
	}

	issued := &domain.IssuedCredential{Identity: identity, TemporaryPassword: temporary}
	if u.mailer != nil {
		err := u.mailer.SendCredential(ctx, email.CredentialEmailData{
			To:             identity.Email,
			Name:           identity.Name,
			TemporaryLogin: temporary,
		})
		if err != nil {
			logger.Log.Error("failed to email issued credential", "identity_id", identity.ID, "error", err)
		} else {
			issued.EmailSent = true
		}
	}

	u.secLog.LogCredentialIssued(ctx, issuer.ID, identity.Email)
	u.metrics.IncIdentityRegistered("issued")
	return issued, nil
}

// CreateSuperuser is the CLI bootstrap path; it has no caller identity
func (u *identityUsecase) CreateSuperuser(ctx context.Context, rawEmail, password string) (*domain.Identity, error) {
	req := domain.RegisterRequest{
		Email:           domain.NormalizeEmail(rawEmail),
		Password:        password,
		PasswordConfirm: password,
	}
	if err := validateInput(u.validate, req, nil); err != nil {
		return nil, err
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	identity := &domain.Identity{
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
		Capabilities: domain.ValidCapabilities(),
	}
	if err := u.repo.Create(ctx, identity); err != nil {
		return nil, err
	}
	u.metrics.IncIdentityRegistered("superuser")
	return identity, nil
}

func (u *identityUsecase) ChangePassword(ctx context.Context, id string, req domain.ChangePasswordRequest) error {
	caller, err := currentIdentity(ctx)
	if err != nil {
		return err
	}
	if caller.ID != id {
		return apperror.Forbidden("You can only change your own password")
	}
	if err := validateInput(u.validate, req, nil); err != nil {
		return err
	}

	identity, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !u.hasher.Compare(identity.PasswordHash, req.CurrentPassword) {
		return apperror.FieldError("current_password", "Current password is incorrect")
	}

	hash, err := u.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := u.repo.UpdatePassword(ctx, id, hash, false); err != nil {
		return err
	}

	u.secLog.LogPasswordChanged(ctx, id)
	return nil
}

func (u *identityUsecase) GetCurrentIdentity(ctx context.Context, id string) (*domain.Identity, error) {
	if _, err := requireOwner(ctx, id); err != nil {
		return nil, err
	}
	return u.repo.GetByID(ctx, id)
}

func (u *identityUsecase) GrantCapability(ctx context.Context, id string, capability domain.Capability) (*domain.Identity, error) {
	return u.updateCapabilities(ctx, id, capability, func(held []domain.Capability) []domain.Capability {
		for _, c := range held {
			if c == capability {
				return held
			}
		}
		return append(held, capability)
	})
}

func (u *identityUsecase) RevokeCapability(ctx context.Context, id string, capability domain.Capability) (*domain.Identity, error) {
	return u.updateCapabilities(ctx, id, capability, func(held []domain.Capability) []domain.Capability {
		kept := make([]domain.Capability, 0, len(held))
		for _, c := range held {
			if c != capability {
				kept = append(kept, c)
			}
		}
		return kept
	})
}

func (u *identityUsecase) updateCapabilities(
	ctx context.Context,
	id string,
	capability domain.Capability,
	change func([]domain.Capability) []domain.Capability,
) (*domain.Identity, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if !capability.IsValid() {
		return nil, apperror.FieldError("capability", "Unknown capability")
	}

	identity, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	identity.Capabilities = change(identity.Capabilities)
	if err := u.repo.SetCapabilities(ctx, id, identity.Capabilities); err != nil {
		return nil, err
	}
	return identity, nil
}

func (u *identityUsecase) DeleteIdentity(ctx context.Context, id string) error {
	actor, err := requireSuperuser(ctx)
	if err != nil {
		return err
	}
	if actor.ID == id {
		return apperror.BadRequest("You cannot delete your own account")
	}

	if err := u.repo.Delete(ctx, id); err != nil {
		return err
	}
	u.secLog.LogIdentityDeleted(ctx, actor.ID, id)
	return nil
}

func (u *identityUsecase) ListIdentities(ctx context.Context, page, pageSize int) (*domain.PaginatedResult[domain.Identity], error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	page, pageSize = domain.NormalizePage(page, pageSize)

	identities, total, err := u.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(identities, total, page, pageSize), nil
}

