package services

import (
	"context"
	"testing"

	"github.com/ivansvit/upgraded-blog/app/models"
	"github.com/ivansvit/upgraded-blog/app/repositories"
	"github.com/ivansvit/upgraded-blog/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService(t *testing.T) {
	store := mock.NewStore()
	service := NewUserService(store.Users(), bcrypt.MinCost)
	ctx := context.Background()

	t.Run("register hashes password", func(t *testing.T) {
		user, err := service.Register(ctx, models.RegisterForm{Email: " A@X.com ", Password: "pw1234", Name: "Alice"})
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", user.Email)
		assert.NotEqual(t, "pw1234", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("pw1234")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := service.Register(ctx, models.RegisterForm{Email: "a@x.com", Password: "pw1234", Name: "Other"})
		assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := service.Register(ctx, models.RegisterForm{Email: "other@x.com", Password: "pw1234", Name: "Alice"})
		assert.ErrorIs(t, err, repositories.ErrDuplicateName)
	})

	t.Run("invalid form", func(t *testing.T) {
		_, err := service.Register(ctx, models.RegisterForm{Email: "bad", Password: "pw", Name: ""})
		var fields models.FieldErrors
		require.ErrorAs(t, err, &fields)
		assert.Len(t, fields, 3)
	})

	t.Run("authenticate", func(t *testing.T) {
		user, err := service.Authenticate(ctx, models.LoginForm{Email: "a@x.com", Password: "pw1234"})
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Name)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, wrongPassword := service.Authenticate(ctx, models.LoginForm{Email: "a@x.com", Password: "nope"})
		_, unknownEmail := service.Authenticate(ctx, models.LoginForm{Email: "ghost@x.com", Password: "pw1234"})

		assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	})

	t.Run("get user", func(t *testing.T) {
		user, err := service.GetUser(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Name)

		user, err = service.GetUser(ctx, 42)
		assert.NoError(t, err)
		assert.Nil(t, user)
	})
}
