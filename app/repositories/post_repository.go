package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/ivansvit/upgraded-blog/app/models"

	"gorm.io/gorm"
)

// GormPostRepository implements PostRepository using GORM
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new GormPostRepository
func NewPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// List returns every post in id order with its author loaded.
func (r *GormPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	posts := make([]*models.Post, 0)
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("id asc").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// FindByID returns the post with its author and comments, oldest comment
// first.
func (r *GormPostRepository) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Comments.Author").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return &post, nil
}

// Create resolves the author and stores a new post, returning its id.
func (r *GormPostRepository) Create(ctx context.Context, p NewPost) (uint, error) {
	var id uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		author, err := resolveAuthor(tx, p.Author)
		if err != nil {
			return err
		}

		taken, err := titleTaken(tx, p.Title, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateTitle
		}

		post := models.Post{
			Title:    p.Title,
			Subtitle: p.Subtitle,
			Date:     p.Date,
			Body:     p.Body,
			ImgURL:   p.ImgURL,
			AuthorID: author.ID,
		}
		if err := tx.Create(&post).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrDuplicateTitle
			}
			return fmt.Errorf("failed to create post: %w", err)
		}
		id = post.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update overwrites the editable fields of post id. Date is left as is.
func (r *GormPostRepository) Update(ctx context.Context, id uint, c PostChanges) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.Post{}, id)
		if err != nil {
			return fmt.Errorf("failed to get post %d: %w", id, err)
		}
		if !found {
			return ErrPostNotFound
		}

		author, err := resolveAuthor(tx, c.Author)
		if err != nil {
			return err
		}

		taken, err := titleTaken(tx, c.Title, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateTitle
		}

		err = tx.Model(&models.Post{}).Where("id = ?", id).Updates(map[string]interface{}{
			"title":     c.Title,
			"subtitle":  c.Subtitle,
			"body":      c.Body,
			"img_url":   c.ImgURL,
			"author_id": author.ID,
		}).Error
		if err != nil {
			if isUniqueConstraintError(err) {
				return ErrDuplicateTitle
			}
			return fmt.Errorf("failed to update post %d: %w", id, err)
		}
		return nil
	})
}

// Delete removes post id together with its comments.
func (r *GormPostRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments of post %d: %w", id, err)
		}

		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete post %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}
