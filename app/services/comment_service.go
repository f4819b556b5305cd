package services

import (
	"context"
	"strings"

	"github.com/ivansvit/upgraded-blog/app/models"
	"github.com/ivansvit/upgraded-blog/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo}
}

// AddComment validates the form and stores a comment by authorID on postID.
func (s *CommentService) AddComment(ctx context.Context, postID, authorID uint, form models.CommentForm) (*models.Comment, error) {
	form.Text = strings.TrimSpace(form.Text)
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return s.commentRepo.Create(ctx, form.Text, authorID, postID)
}

// ListComments returns every comment.
func (s *CommentService) ListComments(ctx context.Context) ([]*models.Comment, error) {
	return s.commentRepo.List(ctx)
}

// ListPostComments retrieves all comments for a post
func (s *CommentService) ListPostComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}
