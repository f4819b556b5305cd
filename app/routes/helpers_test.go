package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ivansvit/upgraded-blog/app/auth"
	"github.com/ivansvit/upgraded-blog/app/database"
	"github.com/ivansvit/upgraded-blog/app/mailer"
	"github.com/ivansvit/upgraded-blog/app/sessions"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// outbox records messages handed to the mailer.
type outbox struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (o *outbox) Send(ctx context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) messages() []mailer.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]mailer.Message(nil), o.sent...)
}

type testApp struct {
	router *mux.Router
	db     *gorm.DB
	outbox *outbox
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "blog.db"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })

	store, err := sessions.Open(sessions.Options{InMemory: true, Secret: "test-secret", TTL: time.Hour}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	box := &outbox{}
	router, err := SetupRoutes(Dependencies{
		DB:          db,
		Sessions:    store,
		Mailer:      box,
		Policy:      auth.NewAdminIDs(1),
		Log:         zerolog.Nop(),
		MailFrom:    "blog@example.com",
		MailTo:      "owner@example.com",
		MailTimeout: time.Second,
		HashCost:    bcrypt.MinCost,
	})
	require.NoError(t, err)

	return &testApp{router: router, db: db, outbox: box}
}

// client is a browser stand-in that keeps the session cookie between
// requests.
type client struct {
	t       *testing.T
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) client(t *testing.T) *client {
	return &client{t: t, app: a, cookies: make(map[string]*http.Cookie)}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.app.router.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) register(email, password, name string) *httptest.ResponseRecorder {
	return c.post("/register", url.Values{"email": {email}, "password": {password}, "name": {name}})
}

func (c *client) login(email, password string) *httptest.ResponseRecorder {
	return c.post("/login", url.Values{"email": {email}, "password": {password}})
}

func postValues(title, author string) url.Values {
	return url.Values{
		"title":    {title},
		"subtitle": {"Subtitle of " + title},
		"author":   {author},
		"img_url":  {"https://example.com/cover.jpg"},
		"body":     {"<p>Body of " + title + "</p>"},
	}
}
