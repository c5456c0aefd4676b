package domain

import (
	"context"
	"time"
)

// AcademicQualification is shared reference data. Personal information rows
// point at it; it is never removed as a side effect of candidate deletion.
type AcademicQualification struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AcademicQualificationInput struct {
	Name string `json:"name" validate:"notblank,max=200,no_emoji"`
}

type AcademicQualificationRepository interface {
	Create(ctx context.Context, q *AcademicQualification) error
	GetByID(ctx context.Context, id int64) (*AcademicQualification, error)
	List(ctx context.Context) ([]AcademicQualification, error)
}

type AcademicQualificationUsecase interface {
	Create(ctx context.Context, input AcademicQualificationInput) (*AcademicQualification, error)
	List(ctx context.Context) ([]AcademicQualification, error)
}
