package domain

import (
	"context"
	"time"
)

type Post struct {
	ID          int64     `json:"id"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PostInput has no author field; the author always comes from the session
type PostInput struct {
	Title       string `json:"title" form:"title" validate:"notblank,max=200,no_emoji"`
	Description string `json:"description" form:"description" validate:"notblank,max=10000"`
}

type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	List(ctx context.Context, limit, offset int) ([]Post, error)
}

type PostUsecase interface {
	CreatePost(ctx context.Context, input PostInput) (*Post, error)
	ListPosts(ctx context.Context, limit, offset int) ([]Post, error)
}
