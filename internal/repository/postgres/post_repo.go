package postgres

import (
	"context"

	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/apperror"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postRepo struct {
	db *pgxpool.Pool
}

func NewPostRepository(db *pgxpool.Pool) domain.PostRepository {
	return &postRepo{db: db}
}

func (r *postRepo) Create(ctx context.Context, post *domain.Post) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO posts (author_id, title, description) VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		post.AuthorID, post.Title, post.Description,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if code, _ := pgCode(err); code == pgForeignKeyViolation {
			return apperror.Unauthorized("Author no longer exists")
		}
		return apperror.Internal(err)
	}
	return nil
}

// List returns posts newest first with the author's display name
func (r *postRepo) List(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	query, args, err := psql.
		Select("p.id", "p.author_id", "COALESCE(NULLIF(i.name, ''), split_part(i.email, '@', 1))",
			"p.title", "p.description", "p.created_at", "p.updated_at").
		From("posts p").
		Join("identities i ON i.id = p.author_id").
		OrderBy("p.created_at DESC", "p.id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, apperror.Internal(err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, apperror.Internal(err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return posts, nil
}
