package usecase

import (
	"context"

	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/apperror"
	"go-intake-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const invalidInputMessage = "Please correct the highlighted fields"

func currentIdentity(ctx context.Context) (*domain.Identity, error) {
	identity := domain.IdentityFromContext(ctx)
	if identity == nil || identity.ID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	return identity, nil
}

// requireOwner is the IDOR guard: the caller acts on their own records
// unless they are staff.
func requireOwner(ctx context.Context, identityID string) (*domain.Identity, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if identity.ID != identityID && !(identity.IsStaff && identity.IsActive) {
		return nil, apperror.Forbidden("You can only access your own records")
	}
	return identity, nil
}

func requireStaff(ctx context.Context) (*domain.Identity, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if !identity.IsActive || !(identity.IsStaff || identity.IsSuperuser) {
		return nil, apperror.Forbidden("Staff access required")
	}
	return identity, nil
}

func requireSuperuser(ctx context.Context) (*domain.Identity, error) {
	identity, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if !identity.IsActive || !identity.IsSuperuser {
		return nil, apperror.Forbidden("Superuser access required")
	}
	return identity, nil
}

// validateInput runs struct tags and merges in the domain rule failures
func validateInput(v *validator.Validate, input interface{}, extra map[string]string) error {
	fields := map[string]string{}
	if err := v.Struct(input); err != nil {
		tagFields := validation.FieldErrors(err)
		if tagFields == nil {
			return apperror.BadRequest("Invalid request payload")
		}
		for k, msg := range tagFields {
			fields[k] = msg
		}
	}
	for k, msg := range extra {
		if _, exists := fields[k]; !exists {
			fields[k] = msg
		}
	}
	if len(fields) > 0 {
		return apperror.Validation(invalidInputMessage, fields)
	}
	return nil
}
