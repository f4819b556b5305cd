package repositories

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ivansvit/upgraded-blog/app/models"

	"gorm.io/gorm"
)

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrAuthorNotFound = errors.New("author not found")
	ErrDuplicateTitle = errors.New("a post with this title already exists")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateName  = errors.New("name already taken")
)

// isUniqueConstraintError reports whether err is a unique index violation
// from sqlite or postgres.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// resolveAuthor finds the user named by identifier, trying the display name
// first and then a numeric id.
func resolveAuthor(tx *gorm.DB, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrAuthorNotFound
	}

	var user models.User
	res := tx.Where("name = ?", identifier).Limit(1).Find(&user)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to look up author: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return &user, nil
	}

	id, err := strconv.ParseUint(identifier, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrAuthorNotFound
	}
	res = tx.Where("id = ?", id).Limit(1).Find(&user)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to look up author: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrAuthorNotFound
	}
	return &user, nil
}

// titleTaken reports whether a post other than excludeID already uses title.
func titleTaken(tx *gorm.DB, title string, excludeID uint) (bool, error) {
	q := tx.Model(&models.Post{}).Where("title = ?", title)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check title: %w", err)
	}
	return count > 0, nil
}

// exists reports whether a row of model with the given id exists.
func exists(tx *gorm.DB, model interface{}, id uint) (bool, error) {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
