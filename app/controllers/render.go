package controllers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/ivansvit/upgraded-blog/app/auth"
	"github.com/ivansvit/upgraded-blog/app/models"
	"github.com/ivansvit/upgraded-blog/app/repositories"
	"github.com/ivansvit/upgraded-blog/app/services"
	"github.com/ivansvit/upgraded-blog/app/sessions"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	msgLoginToComment = "You need to login or register to comment."
	msgEmailTaken     = "You've already signed up with that email, log in instead!"
	msgNameTaken      = "That name is already taken, please choose another."
	msgInvalidLogin   = "Invalid email or password."
	msgDuplicateTitle = "A post with this title already exists."
	msgUnknownAuthor  = "No user with that name or id."
	msgFeedbackFailed = "Sorry, your message could not be sent. Please try again later."
	msgFeedbackSent   = "Successfully sent your message!"
	msgContactLabel   = "Contact Me"
	msgPostNotFound   = "The post you are looking for does not exist."
	msgInternalError  = "Something went wrong on our side. Please try again later."
)

// viewData is the value every page template executes against.
type viewData struct {
	LoggedIn bool
	IsAdmin  bool
	Flashes  []string

	Posts   []*models.Post
	Post    *models.Post
	Form    interface{}
	Errors  models.FieldErrors
	Message string
	Label   string
	IsEdit  bool
}

// Renderer executes page templates with the request's session state.
type Renderer struct {
	templates map[string]*template.Template
	sessions  *sessions.Store
	policy    auth.Policy
	log       zerolog.Logger
}

// NewRenderer creates a Renderer. policy decides whether admin links show.
func NewRenderer(templates map[string]*template.Template, store *sessions.Store, policy auth.Policy, log zerolog.Logger) *Renderer {
	return &Renderer{
		templates: templates,
		sessions:  store,
		policy:    policy,
		log:       log,
	}
}

// session returns the request's session, or a fresh one when the sessions
// middleware did not run.
func (rd *Renderer) session(r *http.Request) *sessions.Session {
	if sess := sessions.FromContext(r.Context()); sess != nil {
		return sess
	}
	return rd.sessions.New()
}

// saveSession persists sess and logs failures. It must run before the
// response header is written.
func (rd *Renderer) saveSession(w http.ResponseWriter, sess *sessions.Session) {
	if err := rd.sessions.Save(w, sess); err != nil {
		rd.log.Error().Err(err).Msg("Failed to save session")
	}
}

// flashRedirect queues msg for the next page and redirects to url.
func (rd *Renderer) flashRedirect(w http.ResponseWriter, r *http.Request, url, msg string) {
	sess := rd.session(r)
	sess.AddFlash(msg)
	rd.saveSession(w, sess)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (rd *Renderer) render(w http.ResponseWriter, r *http.Request, page string, status int, data viewData) {
	tmpl, ok := rd.templates[page]
	if !ok {
		rd.log.Error().Str("page", page).Msg("Template not found")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := auth.IdentityFromContext(r.Context())
	data.LoggedIn = id.Authenticated()
	data.IsAdmin = data.LoggedIn && rd.policy.Allows(id)

	sess := rd.session(r)
	data.Flashes = sess.PopFlashes()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.log.Error().Err(err).Str("page", page).Msg("Template error")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if sess.Dirty() {
		rd.saveSession(w, sess)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (rd *Renderer) notFound(w http.ResponseWriter, r *http.Request) {
	rd.render(w, r, "error", http.StatusNotFound, viewData{Label: "Not Found", Message: msgPostNotFound})
}

// sendError renders the error page for err. Unexpected errors are logged
// and reported as 500 without detail.
func (rd *Renderer) sendError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repositories.ErrPostNotFound):
		rd.notFound(w, r)
	case errors.Is(err, services.ErrFeedbackNotDelivered):
		rd.log.Error().Err(err).Msg("Feedback relay failed")
		rd.render(w, r, "error", http.StatusBadGateway, viewData{Label: "Bad Gateway", Message: msgFeedbackFailed})
	default:
		rd.log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		rd.render(w, r, "error", http.StatusInternalServerError, viewData{Label: "Internal Server Error", Message: msgInternalError})
	}
}

// parseID reads a positive numeric route variable.
func parseID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// fieldErrors returns err as FieldErrors when it is a validation failure.
func fieldErrors(err error) (models.FieldErrors, bool) {
	var fields models.FieldErrors
	if errors.As(err, &fields) {
		return fields, true
	}
	return nil, false
}
