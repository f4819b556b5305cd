package services

import (
	"context"
	"time"

	"github.com/ivansvit/upgraded-blog/app/models"
	"github.com/ivansvit/upgraded-blog/app/repositories"
)

// PostService handles business logic for blog posts
type PostService struct {
	postRepo repositories.PostRepository
	now      func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		now:      time.Now,
	}
}

// ListPosts returns every post with its author.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.List(ctx)
}

// GetPost retrieves a post by ID with its comments. It returns
// repositories.ErrPostNotFound when there is no such post.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, repositories.ErrPostNotFound
	}
	return post, nil
}

// CreatePost validates the form and publishes a post dated today.
func (s *PostService) CreatePost(ctx context.Context, form models.PostForm) (uint, error) {
	if err := form.Validate(); err != nil {
		return 0, err
	}

	return s.postRepo.Create(ctx, repositories.NewPost{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Date:     s.now().Format(models.DateLayout),
		Body:     form.Body,
		Author:   form.Author,
		ImgURL:   form.ImgURL,
	})
}

// UpdatePost validates the form and overwrites the post. The publish date
// is kept.
func (s *PostService) UpdatePost(ctx context.Context, id uint, form models.PostForm) error {
	if err := form.Validate(); err != nil {
		return err
	}

	return s.postRepo.Update(ctx, id, repositories.PostChanges{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		Author:   form.Author,
		ImgURL:   form.ImgURL,
	})
}

// DeletePost deletes a post and all its comments
func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	return s.postRepo.Delete(ctx, id)
}

// SetClock replaces the clock used to date new posts
func (s *PostService) SetClock(now func() time.Time) {
	s.now = now
}
