package repositories

import (
	"context"

	"github.com/ivansvit/upgraded-blog/app/models"
)

// NewPost carries the fields of a post to be created. Author is a user name
// or a numeric user id.
type NewPost struct {
	Title    string
	Subtitle string
	Date     string
	Body     string
	Author   string
	ImgURL   string
}

// PostChanges carries the editable fields of an existing post. The publish
// date is not editable.
type PostChanges struct {
	Title    string
	Subtitle string
	Body     string
	Author   string
	ImgURL   string
}

// PostRepository defines the interface for post data access.
// FindByID returns (nil, nil) when the post does not exist.
type PostRepository interface {
	List(ctx context.Context) ([]*models.Post, error)
	FindByID(ctx context.Context, id uint) (*models.Post, error)
	Create(ctx context.Context, post NewPost) (uint, error)
	Update(ctx context.Context, id uint, changes PostChanges) error
	Delete(ctx context.Context, id uint) error
}

// UserRepository defines the interface for user data access.
// The Find methods return (nil, nil) when no user matches.
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash, name string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByName(ctx context.Context, name string) (*models.User, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, text string, authorID, postID uint) (*models.Comment, error)
	List(ctx context.Context) ([]*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
}

var (
	_ PostRepository    = (*GormPostRepository)(nil)
	_ UserRepository    = (*GormUserRepository)(nil)
	_ CommentRepository = (*GormCommentRepository)(nil)
)
