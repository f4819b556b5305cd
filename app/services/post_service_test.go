package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ivansvit/upgraded-blog/app/models"
	"github.com/ivansvit/upgraded-blog/app/repositories"
	"github.com/ivansvit/upgraded-blog/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(title string) models.PostForm {
	return models.PostForm{
		Title:    title,
		Subtitle: "Subtitle",
		Author:   "Alice",
		ImgURL:   "https://example.com/img.jpg",
		Body:     "<p>Body</p>",
	}
}

func TestPostService(t *testing.T) {
	store := mock.NewStore()
	ctx := context.Background()
	_, err := store.Users().Create(ctx, "a@x.com", "hash", "Alice")
	require.NoError(t, err)
	_, err = store.Users().Create(ctx, "b@x.com", "hash", "Bob")
	require.NoError(t, err)

	service := NewPostService(store.Posts())
	service.SetClock(func() time.Time { return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC) })

	var id uint
	t.Run("create post", func(t *testing.T) {
		id, err = service.CreatePost(ctx, postForm("T1"))
		require.NoError(t, err)
		assert.NotZero(t, id)
	})

	t.Run("get post", func(t *testing.T) {
		post, err := service.GetPost(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "T1", post.Title)
		assert.Equal(t, "Subtitle", post.Subtitle)
		assert.Equal(t, "<p>Body</p>", post.Body)
		assert.Equal(t, "March 01, 2024", post.Date)
		assert.Equal(t, "Alice", post.AuthorName())
	})

	t.Run("invalid form", func(t *testing.T) {
		form := postForm("")
		_, err := service.CreatePost(ctx, form)
		var fields models.FieldErrors
		require.ErrorAs(t, err, &fields)
		assert.Contains(t, fields, "title")
	})

	t.Run("duplicate title", func(t *testing.T) {
		_, err := service.CreatePost(ctx, postForm("T1"))
		assert.ErrorIs(t, err, repositories.ErrDuplicateTitle)
	})

	t.Run("unknown author", func(t *testing.T) {
		form := postForm("T2")
		form.Author = "Nobody"
		_, err := service.CreatePost(ctx, form)
		assert.ErrorIs(t, err, repositories.ErrAuthorNotFound)
	})

	t.Run("update post keeps date", func(t *testing.T) {
		service.SetClock(func() time.Time { return time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC) })

		form := postForm("Updated Title")
		form.Author = "Bob"
		require.NoError(t, service.UpdatePost(ctx, id, form))

		post, err := service.GetPost(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Updated Title", post.Title)
		assert.Equal(t, "Bob", post.AuthorName())
		assert.Equal(t, "March 01, 2024", post.Date)
	})

	t.Run("update missing post", func(t *testing.T) {
		err := service.UpdatePost(ctx, 999, postForm("X"))
		assert.ErrorIs(t, err, repositories.ErrPostNotFound)
	})

	t.Run("delete post", func(t *testing.T) {
		require.NoError(t, service.DeletePost(ctx, id))

		_, err := service.GetPost(ctx, id)
		assert.ErrorIs(t, err, repositories.ErrPostNotFound)

		assert.ErrorIs(t, service.DeletePost(ctx, id), repositories.ErrPostNotFound)
	})

	t.Run("list posts", func(t *testing.T) {
		posts, err := service.ListPosts(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})
}

func TestPostServiceStorageError(t *testing.T) {
	store := mock.NewStore()
	store.FailWith(errors.New("disk full"))
	service := NewPostService(store.Posts())

	_, err := service.ListPosts(context.Background())
	assert.EqualError(t, err, "disk full")

	_, err = service.GetPost(context.Background(), 1)
	assert.EqualError(t, err, "disk full")
}
