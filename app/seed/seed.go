// Package seed fills an empty database with generated demo content.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ivansvit/upgraded-blog/app/models"
	"github.com/ivansvit/upgraded-blog/app/repositories"
	"github.com/ivansvit/upgraded-blog/app/services"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// maxAttempts bounds retries when generated titles, emails or names collide.
const maxAttempts = 5

// Options controls how much demo content is generated.
type Options struct {
	Users    int
	Posts    int
	Comments int
	// Password is shared by every seeded account.
	Password string
	// Seed makes the output reproducible; 0 picks a random seed.
	Seed     int64
	HashCost int
}

// DefaultOptions returns a small data set suitable for local development.
func DefaultOptions() Options {
	return Options{
		Users:    3,
		Posts:    5,
		Comments: 10,
		Password: "password",
	}
}

// Result summarises what was written.
type Result struct {
	Users    []*models.User
	Posts    []uint
	Comments int
}

// Seeder writes demo users, posts and comments through the services so that
// passwords are hashed and forms validated exactly as for real traffic.
type Seeder struct {
	faker    *gofakeit.Faker
	users    *services.UserService
	posts    *services.PostService
	comments *services.CommentService
	opts     Options
}

// New creates a Seeder writing to db.
func New(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		faker:    gofakeit.New(opts.Seed),
		users:    services.NewUserService(repositories.NewUserRepository(db), opts.HashCost),
		posts:    services.NewPostService(repositories.NewPostRepository(db)),
		comments: services.NewCommentService(repositories.NewCommentRepository(db)),
		opts:     opts,
	}
}

// Run generates the configured number of users, posts and comments.
// Posts and comments are spread over the seeded users.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	if s.opts.Users < 1 && (s.opts.Posts > 0 || s.opts.Comments > 0) {
		return nil, errors.New("seed: posts and comments need at least one user")
	}
	if s.opts.Comments > 0 && s.opts.Posts < 1 {
		return nil, errors.New("seed: comments need at least one post")
	}

	res := &Result{}
	for i := 0; i < s.opts.Users; i++ {
		user, err := s.user(ctx)
		if err != nil {
			return res, err
		}
		res.Users = append(res.Users, user)
	}

	for i := 0; i < s.opts.Posts; i++ {
		author := res.Users[i%len(res.Users)]
		id, err := s.post(ctx, author)
		if err != nil {
			return res, err
		}
		res.Posts = append(res.Posts, id)
	}

	for i := 0; i < s.opts.Comments; i++ {
		author := res.Users[s.faker.Number(0, len(res.Users)-1)]
		postID := res.Posts[s.faker.Number(0, len(res.Posts)-1)]
		form := models.CommentForm{Text: s.faker.Sentence(s.faker.Number(4, 16))}
		if _, err := s.comments.AddComment(ctx, postID, author.ID, form); err != nil {
			return res, fmt.Errorf("seed comment: %w", err)
		}
		res.Comments++
	}
	return res, nil
}

func (s *Seeder) user(ctx context.Context) (*models.User, error) {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var user *models.User
		user, err = s.users.Register(ctx, models.RegisterForm{
			Email:    s.faker.Email(),
			Password: s.opts.Password,
			Name:     s.faker.Name(),
		})
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateEmail) && !errors.Is(err, repositories.ErrDuplicateName) {
			break
		}
	}
	return nil, fmt.Errorf("seed user: %w", err)
}

func (s *Seeder) post(ctx context.Context, author *models.User) (uint, error) {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var id uint
		id, err = s.posts.CreatePost(ctx, models.PostForm{
			Title:    strings.TrimSuffix(s.faker.Sentence(s.faker.Number(3, 7)), "."),
			Subtitle: s.faker.Sentence(s.faker.Number(6, 12)),
			Author:   author.Name,
			ImgURL:   s.faker.ImageURL(1200, 600),
			Body:     s.body(),
		})
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateTitle) {
			break
		}
	}
	return 0, fmt.Errorf("seed post: %w", err)
}

func (s *Seeder) body() string {
	var b strings.Builder
	for i := s.faker.Number(2, 5); i > 0; i-- {
		b.WriteString("<p>")
		b.WriteString(s.faker.Paragraph(1, s.faker.Number(3, 6), 12, " "))
		b.WriteString("</p>\n")
	}
	return b.String()
}
