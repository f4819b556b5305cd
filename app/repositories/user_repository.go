package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ivansvit/upgraded-blog/app/models"

	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new GormUserRepository
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts a user. Uniqueness of email and name is enforced by the
// unique indexes, so of two concurrent registrations only one succeeds.
func (r *GormUserRepository) Create(ctx context.Context, email, passwordHash, name string) (*models.User, error) {
	user := &models.User{
		Email:    email,
		Password: passwordHash,
		Name:     name,
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, duplicateUserError(err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// duplicateUserError names the violated index. Both sqlite
// ("users.email") and postgres ("idx_users_email") mention the column.
func duplicateUserError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "name") && !strings.Contains(msg, "email") {
		return ErrDuplicateName
	}
	return ErrDuplicateEmail
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *GormUserRepository) FindByName(ctx context.Context, name string) (*models.User, error) {
	return r.findOne(ctx, "name = ?", name)
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
