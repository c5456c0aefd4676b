package usecase

import (
	"context"
	"strings"

	"go-intake-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

type academicQualificationUsecase struct {
	repo     domain.AcademicQualificationRepository
	validate *validator.Validate
}

func NewAcademicQualificationUsecase(repo domain.AcademicQualificationRepository, validate *validator.Validate) domain.AcademicQualificationUsecase {
	return &academicQualificationUsecase{repo: repo, validate: validate}
}

func (u *academicQualificationUsecase) Create(ctx context.Context, input domain.AcademicQualificationInput) (*domain.AcademicQualification, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(u.validate, input, nil); err != nil {
		return nil, err
	}

	q := &domain.AcademicQualification{Name: input.Name}
	if err := u.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (u *academicQualificationUsecase) List(ctx context.Context) ([]domain.AcademicQualification, error) {
	return u.repo.List(ctx)
}
