package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ivansvit/upgraded-blog/app/auth"
	"github.com/ivansvit/upgraded-blog/app/models"
	"github.com/ivansvit/upgraded-blog/app/repositories"
	"github.com/ivansvit/upgraded-blog/app/services"
)

// PostController handles HTTP requests for blog posts and their comments
type PostController struct {
	*Renderer
	postService    *services.PostService
	commentService *services.CommentService
}

// NewPostController creates a new PostController
func NewPostController(rd *Renderer, postService *services.PostService, commentService *services.CommentService) *PostController {
	return &PostController{
		Renderer:       rd,
		postService:    postService,
		commentService: commentService,
	}
}

// SetService sets the post service for testing
func (pc *PostController) SetService(service *services.PostService) {
	pc.postService = service
}

// Index lists all posts on the home page
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListPosts(r.Context())
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.render(w, r, "index", http.StatusOK, viewData{Posts: posts})
}

// Show displays a single post with its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		pc.notFound(w, r)
		return
	}

	post, err := pc.postService.GetPost(r.Context(), id)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.render(w, r, "post", http.StatusOK, viewData{Post: post, Form: models.CommentForm{}})
}

// AddComment stores a comment from the logged in user and returns to the
// post. Anonymous visitors are sent to the login page.
func (pc *PostController) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		pc.notFound(w, r)
		return
	}

	identity := auth.IdentityFromContext(r.Context())
	if !identity.Authenticated() {
		pc.flashRedirect(w, r, "/login", msgLoginToComment)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := models.CommentForm{Text: r.PostFormValue("text")}

	_, err := pc.commentService.AddComment(r.Context(), id, identity.UserID, form)
	if fields, ok := fieldErrors(err); ok {
		post, perr := pc.postService.GetPost(r.Context(), id)
		if perr != nil {
			pc.sendError(w, r, perr)
			return
		}
		pc.render(w, r, "post", http.StatusUnprocessableEntity, viewData{Post: post, Form: form, Errors: fields})
		return
	}
	if errors.Is(err, repositories.ErrUserNotFound) {
		// The account behind the session is gone.
		pc.flashRedirect(w, r, "/login", msgLoginToComment)
		return
	}
	if err != nil {
		pc.sendError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d", id), http.StatusSeeOther)
}

// New displays the form for creating a new post
func (pc *PostController) New(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, "make-post", http.StatusOK, viewData{Form: models.PostForm{}})
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := parsePostForm(w, r)
	if !ok {
		return
	}

	_, err := pc.postService.CreatePost(r.Context(), form)
	if err != nil {
		pc.renderPostFormError(w, r, form, false, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Edit displays the post form prefilled with an existing post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "post_id")
	if !ok {
		pc.notFound(w, r)
		return
	}

	post, err := pc.postService.GetPost(r.Context(), id)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.render(w, r, "make-post", http.StatusOK, viewData{Form: post.ToForm(), IsEdit: true})
}

// Update handles editing an existing post
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "post_id")
	if !ok {
		pc.notFound(w, r)
		return
	}
	form, ok := parsePostForm(w, r)
	if !ok {
		return
	}

	if err := pc.postService.UpdatePost(r.Context(), id, form); err != nil {
		pc.renderPostFormError(w, r, form, true, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/post/%d", id), http.StatusSeeOther)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "post_id")
	if !ok {
		pc.notFound(w, r)
		return
	}

	if err := pc.postService.DeletePost(r.Context(), id); err != nil {
		pc.sendError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (pc *PostController) renderPostFormError(w http.ResponseWriter, r *http.Request, form models.PostForm, isEdit bool, err error) {
	data := viewData{Form: form, IsEdit: isEdit}

	if fields, ok := fieldErrors(err); ok {
		data.Errors = fields
		pc.render(w, r, "make-post", http.StatusUnprocessableEntity, data)
		return
	}

	switch {
	case errors.Is(err, repositories.ErrDuplicateTitle):
		data.Errors = models.FieldErrors{"title": msgDuplicateTitle}
		pc.render(w, r, "make-post", http.StatusConflict, data)
	case errors.Is(err, repositories.ErrAuthorNotFound):
		data.Errors = models.FieldErrors{"author": msgUnknownAuthor}
		pc.render(w, r, "make-post", http.StatusUnprocessableEntity, data)
	default:
		pc.sendError(w, r, err)
	}
}

func parsePostForm(w http.ResponseWriter, r *http.Request) (models.PostForm, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return models.PostForm{}, false
	}
	return models.PostForm{
		Title:    r.PostFormValue("title"),
		Subtitle: r.PostFormValue("subtitle"),
		Author:   r.PostFormValue("author"),
		ImgURL:   r.PostFormValue("img_url"),
		Body:     r.PostFormValue("body"),
	}, true
}
