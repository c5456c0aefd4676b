package usecase

import (
	"context"
	"strings"

	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/apperror"
	"go-intake-backend/pkg/metrics"
	"go-intake-backend/pkg/security"

	"github.com/go-playground/validator/v10"
)

type postUsecase struct {
	repo     domain.PostRepository
	validate *validator.Validate
	secLog   *security.SecurityLogger
	metrics  *metrics.Metrics
}

func NewPostUsecase(repo domain.PostRepository, validate *validator.Validate, secLog *security.SecurityLogger, m *metrics.Metrics) domain.PostUsecase {
	return &postUsecase{
		repo:     repo,
		validate: validate,
		secLog:   secLog,
		metrics:  m,
	}
}

// CreatePost stores a post authored by the session identity
func (u *postUsecase) CreatePost(ctx context.Context, input domain.PostInput) (*domain.Post, error) {
	author, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if !author.HasCapability(domain.CapabilityCreatePost) {
		u.secLog.LogPermissionDenied(ctx, author.ID, string(domain.CapabilityCreatePost))
		return nil, apperror.Forbidden("You do not have permission to create posts")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if err := validateInput(u.validate, input, nil); err != nil {
		return nil, err
	}

	post := &domain.Post{
		AuthorID:    author.ID,
		AuthorName:  author.ShortName(),
		Title:       input.Title,
		Description: input.Description,
	}
	if err := u.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	u.metrics.IncPostCreated()
	return post, nil
}

func (u *postUsecase) ListPosts(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return u.repo.List(ctx, limit, offset)
}
