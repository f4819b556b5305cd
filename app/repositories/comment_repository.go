package repositories

import (
	"context"
	"fmt"

	"github.com/ivansvit/upgraded-blog/app/models"

	"gorm.io/gorm"
)

// GormCommentRepository implements CommentRepository using GORM
type GormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new GormCommentRepository
func NewCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Create stores a comment by authorID on postID. Both must exist.
func (r *GormCommentRepository) Create(ctx context.Context, text string, authorID, postID uint) (*models.Comment, error) {
	comment := &models.Comment{Text: text, AuthorID: authorID, PostID: postID}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var author models.User
		res := tx.Where("id = ?", authorID).Limit(1).Find(&author)
		if res.Error != nil {
			return fmt.Errorf("failed to get user %d: %w", authorID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		found, err := exists(tx, &models.Post{}, postID)
		if err != nil {
			return fmt.Errorf("failed to get post %d: %w", postID, err)
		}
		if !found {
			return ErrPostNotFound
		}

		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		comment.Author = &author
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// List returns all comments in id order.
func (r *GormCommentRepository) List(ctx context.Context) ([]*models.Comment, error) {
	comments := make([]*models.Comment, 0)
	if err := r.db.WithContext(ctx).Preload("Author").Order("id asc").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// ListByPost returns the comments of postID, oldest first.
func (r *GormCommentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	comments := make([]*models.Comment, 0)
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("id asc").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of post %d: %w", postID, err)
	}
	return comments, nil
}
