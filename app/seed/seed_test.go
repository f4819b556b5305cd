package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ivansvit/upgraded-blog/app/database"
	"github.com/ivansvit/upgraded-blog/app/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "blog.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })
	return db
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Seed = 42
	opts.HashCost = bcrypt.MinCost
	return opts
}

func TestSeederRun(t *testing.T) {
	db := newTestDB(t)
	opts := testOptions()

	res, err := New(db, opts).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Users, opts.Users)
	assert.Len(t, res.Posts, opts.Posts)
	assert.Equal(t, opts.Comments, res.Comments)

	var users, posts, comments int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Post{}).Count(&posts)
	db.Model(&models.Comment{}).Count(&comments)
	assert.EqualValues(t, opts.Users, users)
	assert.EqualValues(t, opts.Posts, posts)
	assert.EqualValues(t, opts.Comments, comments)

	var stored models.User
	require.NoError(t, db.First(&stored, res.Users[0].ID).Error)
	assert.NotEqual(t, opts.Password, stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(opts.Password)))

	var post models.Post
	require.NoError(t, db.First(&post, res.Posts[0]).Error)
	assert.Equal(t, res.Users[0].ID, post.AuthorID)
	assert.Contains(t, post.Body, "<p>")
	assert.NotEmpty(t, post.Date)
}

func TestSeederReproducible(t *testing.T) {
	first, err := New(newTestDB(t), testOptions()).Run(context.Background())
	require.NoError(t, err)
	second, err := New(newTestDB(t), testOptions()).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, second.Users, len(first.Users))
	for i := range first.Users {
		assert.Equal(t, first.Users[i].Email, second.Users[i].Email)
		assert.Equal(t, first.Users[i].Name, second.Users[i].Name)
	}
}

func TestSeederRunTwice(t *testing.T) {
	db := newTestDB(t)
	opts := testOptions()

	_, err := New(db, opts).Run(context.Background())
	require.NoError(t, err)

	opts.Seed = 7
	_, err = New(db, opts).Run(context.Background())
	require.NoError(t, err)

	var posts int64
	db.Model(&models.Post{}).Count(&posts)
	assert.EqualValues(t, 2*opts.Posts, posts)
}

func TestSeederInvalidOptions(t *testing.T) {
	db := newTestDB(t)

	_, err := New(db, Options{Posts: 1}).Run(context.Background())
	assert.Error(t, err)

	_, err = New(db, Options{Users: 1, Comments: 1, Password: "password", HashCost: bcrypt.MinCost}).Run(context.Background())
	assert.Error(t, err)
}
