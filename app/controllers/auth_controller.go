package controllers

import (
	"errors"
	"net/http"

	"github.com/ivansvit/upgraded-blog/app/models"
	"github.com/ivansvit/upgraded-blog/app/repositories"
	"github.com/ivansvit/upgraded-blog/app/services"
	"github.com/ivansvit/upgraded-blog/app/sessions"
)

// AuthController handles registration, login and logout
type AuthController struct {
	*Renderer
	userService *services.UserService
	store       *sessions.Store
}

// NewAuthController creates a new AuthController
func NewAuthController(rd *Renderer, userService *services.UserService, store *sessions.Store) *AuthController {
	return &AuthController{
		Renderer:    rd,
		userService: userService,
		store:       store,
	}
}

// RegisterForm displays the registration form
func (ac *AuthController) RegisterForm(w http.ResponseWriter, r *http.Request) {
	ac.render(w, r, "register", http.StatusOK, viewData{Form: models.RegisterForm{}})
}

// Register creates an account and logs it in
func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := models.RegisterForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Name:     r.PostFormValue("name"),
	}
	// Never echo the password back.
	redisplay := models.RegisterForm{Email: form.Email, Name: form.Name}

	user, err := ac.userService.Register(r.Context(), form)
	if fields, ok := fieldErrors(err); ok {
		ac.render(w, r, "register", http.StatusUnprocessableEntity, viewData{Form: redisplay, Errors: fields})
		return
	}
	switch {
	case errors.Is(err, repositories.ErrDuplicateEmail):
		ac.session(r).AddFlash(msgEmailTaken)
		ac.render(w, r, "register", http.StatusConflict, viewData{Form: redisplay})
		return
	case errors.Is(err, repositories.ErrDuplicateName):
		ac.render(w, r, "register", http.StatusConflict, viewData{
			Form:   redisplay,
			Errors: models.FieldErrors{"name": msgNameTaken},
		})
		return
	case err != nil:
		ac.sendError(w, r, err)
		return
	}

	ac.logIn(w, r, user)
}

// LoginForm displays the login form
func (ac *AuthController) LoginForm(w http.ResponseWriter, r *http.Request) {
	ac.render(w, r, "login", http.StatusOK, viewData{Form: models.LoginForm{}})
}

// Login authenticates a user by email and password
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := models.LoginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	redisplay := models.LoginForm{Email: form.Email}

	user, err := ac.userService.Authenticate(r.Context(), form)
	if fields, ok := fieldErrors(err); ok {
		ac.render(w, r, "login", http.StatusUnprocessableEntity, viewData{Form: redisplay, Errors: fields})
		return
	}
	if errors.Is(err, services.ErrInvalidCredentials) {
		ac.session(r).AddFlash(msgInvalidLogin)
		ac.render(w, r, "login", http.StatusUnauthorized, viewData{Form: redisplay})
		return
	}
	if err != nil {
		ac.sendError(w, r, err)
		return
	}

	ac.logIn(w, r, user)
}

// Logout destroys the session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := ac.store.Destroy(w, ac.session(r)); err != nil {
		ac.log.Error().Err(err).Msg("Failed to destroy session")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// logIn binds the session to user under a new session id and goes home.
func (ac *AuthController) logIn(w http.ResponseWriter, r *http.Request, user *models.User) {
	sess := ac.session(r)
	sess.Login(user.ID)
	if err := ac.store.Renew(w, sess); err != nil {
		ac.sendError(w, r, err)
		return
	}
	ac.log.Info().Uint("user_id", user.ID).Msg("User logged in")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
