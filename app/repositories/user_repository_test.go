package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice, err := repo.Create(ctx, "a@x.com", "hash", "Alice")
	require.NoError(t, err)
	assert.NotZero(t, alice.ID)

	t.Run("find by email", func(t *testing.T) {
		user, err := repo.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, alice.ID, user.ID)
		assert.Equal(t, "hash", user.Password)
	})

	t.Run("find by id and name", func(t *testing.T) {
		user, err := repo.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Name)

		user, err = repo.FindByName(ctx, "Alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, user.ID)
	})

	t.Run("absent user", func(t *testing.T) {
		user, err := repo.FindByEmail(ctx, "nobody@x.com")
		assert.NoError(t, err)
		assert.Nil(t, user)

		user, err = repo.FindByID(ctx, 999)
		assert.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.Create(ctx, "a@x.com", "hash", "Someone Else")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := repo.Create(ctx, "other@x.com", "hash", "Alice")
		assert.ErrorIs(t, err, ErrDuplicateName)
	})
}

func TestUserRepositoryConcurrentRegistration(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, "race@x.com", "hash", fmt.Sprintf("Racer %d", i))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	}
	assert.Equal(t, 1, succeeded)
}

func TestUserRepositoryDatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WithArgs("a@x.com", 1).
		WillReturnError(errors.New("connection timeout"))

	user, err := repo.FindByEmail(context.Background(), "a@x.com")
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}
