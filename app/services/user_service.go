package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ivansvit/upgraded-blog/app/models"
	"github.com/ivansvit/upgraded-blog/app/repositories"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService registers and authenticates users
type UserService struct {
	userRepo repositories.UserRepository
	hashCost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewUserService creates a UserService hashing passwords at cost. A cost of
// 0 selects bcrypt.DefaultCost.
func NewUserService(userRepo repositories.UserRepository, cost int) *UserService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserService{userRepo: userRepo, hashCost: cost}
}

// Register validates the form, hashes the password and creates the user.
// It fails with repositories.ErrDuplicateEmail or ErrDuplicateName.
func (s *UserService) Register(ctx context.Context, form models.RegisterForm) (*models.User, error) {
	form.Email = normalizeEmail(form.Email)
	form.Name = strings.TrimSpace(form.Name)
	if err := form.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.Create(ctx, form.Email, string(hash), form.Name)
}

// Authenticate returns the user matching the credentials. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, form models.LoginForm) (*models.User, error) {
	form.Email = normalizeEmail(form.Email)
	if err := form.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, form.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Spend the same time as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(form.Password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser returns the user with id, or nil when there is none.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *UserService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.hashCost)
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
