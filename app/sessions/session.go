// Package sessions keeps login state and flash messages in badger. The
// browser only holds a signed token naming the session record.
package sessions

import (
	"context"
	"time"

	"github.com/ivansvit/upgraded-blog/app/auth"
)

// Session is the server-side state of one browser.
type Session struct {
	ID      string    `json:"-"`
	UserID  uint      `json:"user_id,omitempty"`
	Flashes []string  `json:"flashes,omitempty"`
	Created time.Time `json:"created"`

	dirty bool
}

// Identity returns the principal the session is logged in as.
func (s *Session) Identity() auth.Identity {
	return auth.Identity{UserID: s.UserID}
}

// Login marks the session as belonging to userID. Callers should rotate the
// session id with Store.Renew afterwards.
func (s *Session) Login(userID uint) {
	s.UserID = userID
	s.dirty = true
}

// AddFlash queues a message for the next rendered page.
func (s *Session) AddFlash(msg string) {
	s.Flashes = append(s.Flashes, msg)
	s.dirty = true
}

// PopFlashes returns and clears the queued messages.
func (s *Session) PopFlashes() []string {
	if len(s.Flashes) == 0 {
		return nil
	}
	flashes := s.Flashes
	s.Flashes = nil
	s.dirty = true
	return flashes
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool {
	return s.dirty
}

type sessionKey struct{}

// NewContext returns a copy of ctx carrying sess.
func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// FromContext returns the session stored by Store.Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey{}).(*Session)
	return sess
}
