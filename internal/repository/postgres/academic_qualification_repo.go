package postgres

import (
	"context"

	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgxpool"
)

type academicQualificationRepo struct {
	db *pgxpool.Pool
}

func NewAcademicQualificationRepository(db *pgxpool.Pool) domain.AcademicQualificationRepository {
	return &academicQualificationRepo{db: db}
}

func (r *academicQualificationRepo) Create(ctx context.Context, q *domain.AcademicQualification) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO academic_qualifications (name) VALUES ($1) RETURNING id, created_at, updated_at`,
		q.Name,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if code, _ := pgCode(err); code == pgUniqueViolation {
			return apperror.Conflict("name", "This academic qualification already exists")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *academicQualificationRepo) GetByID(ctx context.Context, id int64) (*domain.AcademicQualification, error) {
	var q domain.AcademicQualification
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM academic_qualifications WHERE id = $1`, id,
	).Scan(&q.ID, &q.Name, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, "Academic qualification not found")
	}
	return &q, nil
}

func (r *academicQualificationRepo) List(ctx context.Context) ([]domain.AcademicQualification, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at, updated_at FROM academic_qualifications ORDER BY id`)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	list := []domain.AcademicQualification{}
	for rows.Next() {
		var q domain.AcademicQualification
		if err := rows.Scan(&q.ID, &q.Name, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, apperror.Internal(err)
		}
		list = append(list, q)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return list, nil
}
